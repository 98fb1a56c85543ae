package view

import (
	"bytes"
	"html/template"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderToastsFragment(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	toasts := []notify.Toast{{
		ID:        "t1",
		Kind:      notify.KindError,
		Message:   "<b>Error loading chart data</b>",
		Icon:      notify.KindError.Icon(),
		Phase:     notify.PhaseVisible,
		CreatedAt: time.Date(2025, 3, 1, 9, 15, 30, 0, time.UTC),
	}}
	require.NoError(t, engine.RenderFragment(&buf, "partials/toasts.html", toasts))

	out := buf.String()
	assert.Contains(t, out, `class="toast toast-error toast-visible"`)
	assert.Contains(t, out, `title="09:15:30"`)
	assert.Contains(t, out, `<i class="icon icon-alert" aria-hidden="true"></i>`)
	assert.Contains(t, out, "&lt;b&gt;Error loading chart data&lt;/b&gt;", "messages are escaped")
}

func TestRenderChartsFragmentKeepsSVG(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	data := struct{ Trend, Ratio, Classes template.HTML }{
		Trend: `<svg id="t"></svg>`,
	}
	require.NoError(t, engine.RenderFragment(&buf, "partials/charts.html", data))
	assert.Contains(t, buf.String(), `<figure class="chart-card glass-card" id="trendChart"><svg id="t"></svg></figure>`)
}

func TestNilEngine(t *testing.T) {
	var engine *Engine
	assert.Error(t, engine.Render(httptest.NewRecorder(), "pages/dashboard.html", TemplateData{}))
	assert.Error(t, engine.RenderFragment(&bytes.Buffer{}, "partials/toasts.html", nil))
}
