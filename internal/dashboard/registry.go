package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/attendance-dashboard/internal/charts"
	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
)

// DefaultPageTTL bounds how long an idle page keeps its state.
const DefaultPageTTL = 30 * time.Minute

// Chart canvas sizes.
const (
	TrendWidth, TrendHeight     = 720, 280
	RatioWidth, RatioHeight     = 360, 300
	ClassesWidth, ClassesHeight = 720, 280
)

// ContainerFactory creates the toast container of a page.
type ContainerFactory func(pageID string) notify.Container

// Page is the server-side state of one page load.
type Page struct {
	ID           string
	Orchestrator *Orchestrator
	Toasts       notify.Container
	Trend        *charts.SVGCanvas
	Ratio        *charts.SVGCanvas
	Classes      *charts.SVGCanvas

	expires time.Time
}

// PageGauge receives the number of live pages after every change.
type PageGauge interface {
	SetActivePages(n int)
}

// RegistryParams groups the dependencies shared by every page.
type RegistryParams struct {
	Service     Service
	Notifier    notify.Notifier
	Animator    Animator
	Logger      *slog.Logger
	TTL         time.Duration
	Containers  ContainerFactory
	ImpactStats []ImpactSource
	Gauge       PageGauge
	Now         func() time.Time
}

// Registry tracks live pages. Every page load gets its own orchestrator, so
// reloading starts over and re-fetches everything.
type Registry struct {
	params RegistryParams

	mu    sync.Mutex
	pages map[string]*Page
}

// NewRegistry constructs a Registry.
func NewRegistry(params RegistryParams) *Registry {
	if params.TTL <= 0 {
		params.TTL = DefaultPageTTL
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	if params.Containers == nil {
		params.Containers = func(string) notify.Container { return notify.NewMemoryContainer() }
	}
	return &Registry{params: params, pages: make(map[string]*Page)}
}

// Open registers a new page. The caller starts its orchestrator.
func (r *Registry) Open() *Page {
	id := uuid.NewString()
	toasts := r.params.Containers(id)
	page := &Page{
		ID:      id,
		Toasts:  toasts,
		Trend:   charts.NewSVGCanvas("trendChart", TrendWidth, TrendHeight),
		Ratio:   charts.NewSVGCanvas("ratioChart", RatioWidth, RatioHeight),
		Classes: charts.NewSVGCanvas("classChart", ClassesWidth, ClassesHeight),
	}
	page.Orchestrator = New(Params{
		Service: r.params.Service,
		Canvases: Canvases{
			Trend:   page.Trend,
			Ratio:   page.Ratio,
			Classes: page.Classes,
		},
		Toasts:      toasts,
		Notifier:    r.params.Notifier,
		Animator:    r.params.Animator,
		Logger:      r.params.Logger.With(slog.String("page_id", id)),
		ImpactStats: r.params.ImpactStats,
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked()
	page.expires = r.params.Now().Add(r.params.TTL)
	r.pages[id] = page
	r.reportLocked()
	return page
}

// Get returns a live page and extends its lifetime.
func (r *Registry) Get(id string) (*Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page, ok := r.pages[id]
	if !ok {
		return nil, false
	}
	now := r.params.Now()
	if !now.Before(page.expires) {
		delete(r.pages, id)
		r.reportLocked()
		return nil, false
	}
	page.expires = now.Add(r.params.TTL)
	return page, true
}

// Len returns the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Sweep drops expired pages and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked()
}

// Run sweeps on every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.params.Logger.Debug("evicted idle pages", slog.Int("count", n))
			}
		}
	}
}

func (r *Registry) evictLocked() int {
	now := r.params.Now()
	removed := 0
	for id, page := range r.pages {
		if !now.Before(page.expires) {
			delete(r.pages, id)
			removed++
		}
	}
	if removed > 0 {
		r.reportLocked()
	}
	return removed
}

func (r *Registry) reportLocked() {
	if r.params.Gauge != nil {
		r.params.Gauge.SetActivePages(len(r.pages))
	}
}
