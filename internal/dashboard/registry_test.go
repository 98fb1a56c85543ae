package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
)

func TestRegistryOpensIndependentPages(t *testing.T) {
	svc := sampleService()
	reg := NewRegistry(RegistryParams{Service: svc})

	first := reg.Open()
	second := reg.Open()
	require.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, reg.Len())

	first.Orchestrator.Start(context.Background())
	_, err := first.Orchestrator.Observe(context.Background(), SectionDashboard)
	require.NoError(t, err)
	assert.True(t, first.Trend.Drawn())
	assert.False(t, second.Trend.Drawn())

	got, ok := reg.Get(first.ID)
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistryEvictsIdlePages(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	reg := NewRegistry(RegistryParams{Service: sampleService(), TTL: time.Minute, Now: func() time.Time { return now }})

	page := reg.Open()
	now = now.Add(30 * time.Second)
	_, ok := reg.Get(page.ID)
	require.True(t, ok, "access extends lifetime")

	now = now.Add(45 * time.Second)
	_, ok = reg.Get(page.ID)
	require.True(t, ok)

	reg.Open()
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, reg.Sweep())
	assert.Equal(t, 0, reg.Len())

	_, ok = reg.Get(page.ID)
	assert.False(t, ok)
}

func TestRegistryUsesContainerFactory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := sampleService()
	svc.kpiErr = assert.AnError
	center := notify.NewCenter(time.Second, notify.WithClock(nil, func(time.Duration, func()) {}))
	reg := NewRegistry(RegistryParams{
		Service:  svc,
		Notifier: center,
		Containers: func(pageID string) notify.Container {
			return notify.NewRedisContainer(client, pageID, time.Minute)
		},
	})

	page := reg.Open()
	page.Orchestrator.Start(context.Background())

	toasts, err := page.Toasts.List(context.Background())
	require.NoError(t, err)
	require.Len(t, toasts, 1)
	assert.Equal(t, KPIErrorMessage, toasts[0].Message)
	assert.True(t, mr.Exists("dashboard:toasts:"+page.ID))
}

type gaugeRecorder struct{ values []int }

func (g *gaugeRecorder) SetActivePages(n int) { g.values = append(g.values, n) }

func TestRegistryReportsActivePages(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	gauge := &gaugeRecorder{}
	reg := NewRegistry(RegistryParams{Service: sampleService(), TTL: time.Minute, Gauge: gauge, Now: func() time.Time { return now }})

	reg.Open()
	reg.Open()
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, reg.Sweep())
	assert.Equal(t, 0, reg.Sweep())
	assert.Equal(t, []int{1, 2, 0}, gauge.values)
}
