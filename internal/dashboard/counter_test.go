package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
	"github.com/odyssey-erp/attendance-dashboard/web"
)

func TestIconsAreStyledLocally(t *testing.T) {
	raw, err := web.Static.ReadFile("static/css/dashboard.css")
	require.NoError(t, err)
	css := string(raw)

	icons := []string{notify.KindSuccess.Icon(), notify.KindError.Icon()}
	for _, slot := range kpiSlots {
		icons = append(icons, slot.icon)
	}
	for _, icon := range icons {
		assert.Contains(t, css, "."+icon+"::before", "icon %s has a glyph rule", icon)
	}

	for _, c := range newCounters() {
		assert.NotEmpty(t, c.Icon)
	}
}
