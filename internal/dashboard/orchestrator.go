// Package dashboard sequences one page load: the entrance timeline, the KPI
// counters, the lazily loaded charts and the business impact sweep.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/attendance-dashboard/internal/apiclient"
	"github.com/odyssey-erp/attendance-dashboard/internal/attendance"
	"github.com/odyssey-erp/attendance-dashboard/internal/charts"
	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
)

// Scroll targets.
const (
	SectionProblem   = "problem-statement"
	SectionPipeline  = "pipeline"
	SectionDashboard = "analytical-dashboard"
)

// Notification texts raised by the orchestrator.
const (
	KPIErrorMessage   = "Error loading KPI data"
	ChartErrorMessage = "Error loading chart data"
)

// ErrUnknownTarget is returned when an observation names nothing on the page.
var ErrUnknownTarget = errors.New("dashboard: unknown scroll target")

// Service is the subset of the endpoint façade the orchestrator needs.
type Service interface {
	GetKPIs(ctx context.Context) (attendance.KPISnapshot, error)
	GetMonthlyTrend(ctx context.Context) ([]attendance.TrendPoint, error)
	GetStatusRatio(ctx context.Context) ([]attendance.StatusRatio, error)
	GetClassDistribution(ctx context.Context) ([]attendance.ClassDistribution, error)
}

// Canvases are the chart drawing surfaces. Missing canvases are skipped.
type Canvases struct {
	Trend   charts.Canvas
	Ratio   charts.Canvas
	Classes charts.Canvas
}

// Params groups the dependencies of an Orchestrator.
type Params struct {
	Service  Service
	Canvases Canvases
	// Toasts is the page's notification container.
	Toasts   notify.Container
	Notifier notify.Notifier
	// Animator is optional; without it counters jump to their final value.
	Animator    Animator
	Logger      *slog.Logger
	ImpactStats []ImpactSource
}

// Orchestrator holds the state of one page load. All of its triggers are
// one-shot, so a fresh page load needs a fresh Orchestrator.
type Orchestrator struct {
	service  Service
	canvases Canvases
	toasts   notify.Container
	notifier notify.Notifier
	animator Animator
	logger   *slog.Logger

	entrance []Cue
	counters []*Counter
	impacts  []*Impact
	sections map[string]*Trigger

	chartsTrigger Trigger

	mu             sync.Mutex
	started        bool
	kpiErr         error
	chartsRendered bool
	chartsErr      error
}

// New builds the orchestrator for one page load.
func New(params Params) *Orchestrator {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stats := params.ImpactStats
	if stats == nil {
		stats = DefaultImpactStats
	}
	return &Orchestrator{
		service:  params.Service,
		canvases: params.Canvases,
		toasts:   params.Toasts,
		notifier: params.Notifier,
		animator: params.Animator,
		logger:   logger,
		entrance: EntranceTimeline.Resolve(),
		counters: newCounters(),
		impacts:  newImpacts(stats),
		sections: map[string]*Trigger{
			SectionProblem:   {},
			SectionPipeline:  {},
			SectionDashboard: {},
		},
	}
}

// Start runs the page-ready sequence once and returns after every phase it
// began has settled. A failing KPI fetch is logged and notified but never
// stops the remaining phases.
func (o *Orchestrator) Start(ctx context.Context) {
	if load := o.begin(ctx); load != nil {
		load()
	}
}

// Launch runs the part of the page-ready sequence that needs no backend and
// leaves the fetches to a goroutine, so the page can render with its counters
// still pending. The fetches are detached from ctx's cancellation. The
// returned channel is closed once they settled.
func (o *Orchestrator) Launch(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	load := o.begin(context.WithoutCancel(ctx))
	if load == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		load()
	}()
	return done
}

// begin arms the impact sweep, the chart trigger and the sections, and
// returns the backend phases still to run. It returns nil after the first call.
func (o *Orchestrator) begin(ctx context.Context) func() {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.mu.Unlock()

	ctx = o.withToasts(ctx)

	o.sweepImpacts()
	chartsDue := o.chartsTrigger.Arm()
	for _, t := range o.sections {
		t.Arm()
	}

	return func() {
		if err := o.loadCounters(ctx); err != nil {
			o.mu.Lock()
			o.kpiErr = err
			o.mu.Unlock()
			o.logger.Error("failed to load KPIs", slog.Any("error", err))
			o.notify(ctx, KPIErrorMessage, notify.KindError)
		}
		if chartsDue {
			_ = o.loadCharts(ctx)
		}
	}
}

func (o *Orchestrator) loadCounters(ctx context.Context) error {
	if o.service == nil {
		return fmt.Errorf("dashboard: no service configured")
	}
	kpis, err := o.service.GetKPIs(ctx)
	if err != nil {
		return err
	}
	for i, c := range o.counters {
		c.setTarget(kpiSlots[i].value(kpis).Float())
		if c.trigger.Arm() {
			c.play(o.animator)
		}
	}
	return nil
}

// sweepImpacts zeroes every figure with a leading integer and arms its
// counter. It has no data dependency and cannot fail.
func (o *Orchestrator) sweepImpacts() {
	for _, impact := range o.impacts {
		if impact.reset() && impact.trigger.Arm() {
			impact.play(o.animator)
		}
	}
}

// Observe reports that target scrolled into view. It returns whether a
// trigger fired. For the dashboard section a chart load failure is returned
// after it has been logged and notified.
func (o *Orchestrator) Observe(ctx context.Context, target string) (bool, error) {
	ctx = o.withToasts(ctx)

	if section, ok := o.sections[target]; ok {
		fired := section.Observe()
		if target != SectionDashboard {
			return fired, nil
		}
		if !o.chartsTrigger.Observe() {
			return fired, nil
		}
		return true, o.loadCharts(ctx)
	}
	for _, c := range o.counters {
		if c.Slot == target {
			if !c.trigger.Observe() {
				return false, nil
			}
			c.play(o.animator)
			return true, nil
		}
	}
	for _, impact := range o.impacts {
		if impact.Source.ID == target {
			if !impact.trigger.Observe() {
				return false, nil
			}
			impact.play(o.animator)
			return true, nil
		}
	}
	return false, ErrUnknownTarget
}

// loadCharts fetches the three chart datasets concurrently and draws them
// only when all three arrived.
func (o *Orchestrator) loadCharts(ctx context.Context) error {
	o.mu.Lock()
	if o.chartsRendered {
		o.mu.Unlock()
		return nil
	}
	o.chartsRendered = true
	o.mu.Unlock()

	err := o.fetchAndDraw(ctx)
	if err != nil {
		o.mu.Lock()
		o.chartsErr = err
		o.mu.Unlock()
		o.logger.Error("failed to load chart data", slog.Any("error", err))
		o.notify(ctx, ChartErrorMessage, notify.KindError)
	}
	return err
}

func (o *Orchestrator) fetchAndDraw(ctx context.Context) error {
	if o.service == nil {
		return fmt.Errorf("dashboard: no service configured")
	}
	// Individual request failures are folded into the single chart error toast.
	fetchCtx := apiclient.Quiet(ctx)

	var (
		trend   []attendance.TrendPoint
		ratio   []attendance.StatusRatio
		classes []attendance.ClassDistribution
		group   errgroup.Group
	)
	group.Go(func() error {
		var err error
		trend, err = o.service.GetMonthlyTrend(fetchCtx)
		return err
	})
	group.Go(func() error {
		var err error
		ratio, err = o.service.GetStatusRatio(fetchCtx)
		return err
	})
	group.Go(func() error {
		var err error
		classes, err = o.service.GetClassDistribution(fetchCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return err
	}

	if err := charts.RenderTrend(o.canvases.Trend, trend); err != nil {
		return err
	}
	if err := charts.RenderRatio(o.canvases.Ratio, ratio); err != nil {
		return err
	}
	return charts.RenderDistribution(o.canvases.Classes, classes)
}

func (o *Orchestrator) withToasts(ctx context.Context) context.Context {
	if o.toasts == nil {
		return ctx
	}
	return notify.ContextWithContainer(ctx, o.toasts)
}

func (o *Orchestrator) notify(ctx context.Context, message string, kind notify.Kind) {
	if o.notifier != nil {
		o.notifier.Notify(ctx, message, kind)
	}
}

// Entrance returns the resolved entrance timeline.
func (o *Orchestrator) Entrance() []Cue {
	cues := make([]Cue, len(o.entrance))
	copy(cues, o.entrance)
	return cues
}

// Counters snapshots the KPI counters in page order.
func (o *Orchestrator) Counters() []CounterView {
	views := make([]CounterView, 0, len(o.counters))
	for _, c := range o.counters {
		views = append(views, c.View())
	}
	return views
}

// Impacts snapshots the business impact figures in page order.
func (o *Orchestrator) Impacts() []ImpactView {
	views := make([]ImpactView, 0, len(o.impacts))
	for _, i := range o.impacts {
		views = append(views, i.View())
	}
	return views
}

// Counter returns the snapshot of one KPI slot.
func (o *Orchestrator) Counter(slot string) (CounterView, bool) {
	for _, c := range o.counters {
		if c.Slot == slot {
			return c.View(), true
		}
	}
	return CounterView{}, false
}

// Impact returns the snapshot of one impact figure.
func (o *Orchestrator) Impact(id string) (ImpactView, bool) {
	for _, i := range o.impacts {
		if i.Source.ID == id {
			return i.View(), true
		}
	}
	return ImpactView{}, false
}

// SectionState returns the trigger state of a scroll-animated section.
func (o *Orchestrator) SectionState(section string) TriggerState {
	if t, ok := o.sections[section]; ok {
		return t.State()
	}
	return Pending
}

// ChartsState returns the chart trigger state and the load error, if any.
func (o *Orchestrator) ChartsState() (TriggerState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.chartsTrigger.State(), o.chartsErr
}

// KPIError returns the KPI load failure, if any.
func (o *Orchestrator) KPIError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.kpiErr
}
