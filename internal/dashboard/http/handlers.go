package dashboardhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/attendance-dashboard/internal/apiclient"
	"github.com/odyssey-erp/attendance-dashboard/internal/attendance"
	"github.com/odyssey-erp/attendance-dashboard/internal/dashboard"
	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
	"github.com/odyssey-erp/attendance-dashboard/internal/platform/httpx"
	"github.com/odyssey-erp/attendance-dashboard/internal/view"
)

// Pages opens and looks up page state.
type Pages interface {
	Open() *dashboard.Page
	Get(id string) (*dashboard.Page, bool)
}

// StudentService is the student part of the endpoint façade.
type StudentService interface {
	GetStudents(ctx context.Context, classID, yearID string, limit int) ([]attendance.Student, error)
	AddStudent(ctx context.Context, payload any) (apiclient.RawEnvelope, error)
	UpdateStudent(ctx context.Context, id string, payload any) (apiclient.RawEnvelope, error)
	DeleteStudent(ctx context.Context, id string) (apiclient.RawEnvelope, error)
}

// BusyIndicator reports whether backend calls are in flight.
type BusyIndicator interface {
	Active() bool
}

// Handler serves the dashboard page and its fragments.
type Handler struct {
	logger    *slog.Logger
	pages     Pages
	students  StudentService
	templates *view.Engine
	busy      BusyIndicator
	validate  *validator.Validate
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, pages Pages, students StudentService, templates *view.Engine, busy BusyIndicator) *Handler {
	return &Handler{
		logger:    logger,
		pages:     pages,
		students:  students,
		templates: templates,
		busy:      busy,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

type counterCard struct {
	dashboard.CounterView
	Cue dashboard.Cue
}

type pageView struct {
	PageID      string
	TitleCue    dashboard.Cue
	SubtitleCue dashboard.Cue
	Counters    []counterCard
	Impacts     []dashboard.ImpactView
	Sections    []string
	KPIFailed   bool
	Charts      *chartsView
}

type chartsView struct {
	Trend   template.HTML
	Ratio   template.HTML
	Classes template.HTML
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	page := h.pages.Open()
	page.Orchestrator.Launch(r.Context())

	vm := buildPageView(page)
	toasts, err := page.Toasts.List(r.Context())
	if err != nil {
		h.logError("list toasts", err)
	}
	data := view.TemplateData{
		Title:       "Attendance Analytics",
		PageID:      page.ID,
		Toasts:      toasts,
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func buildPageView(page *dashboard.Page) pageView {
	o := page.Orchestrator
	vm := pageView{
		PageID:   page.ID,
		Impacts:  o.Impacts(),
		Sections: []string{dashboard.SectionProblem, dashboard.SectionPipeline, dashboard.SectionDashboard},
	}
	var cards []dashboard.Cue
	for _, cue := range o.Entrance() {
		switch cue.Selector {
		case "hero-title":
			vm.TitleCue = cue
		case "hero-subtitle":
			vm.SubtitleCue = cue
		case "kpi-card":
			cards = append(cards, cue)
		}
	}
	for i, counter := range o.Counters() {
		card := counterCard{CounterView: counter}
		if i < len(cards) {
			card.Cue = cards[i]
		}
		vm.Counters = append(vm.Counters, card)
	}
	vm.KPIFailed = o.KPIError() != nil
	if page.Trend.Drawn() {
		vm.Charts = chartsFor(page)
	}
	return vm
}

func chartsFor(page *dashboard.Page) *chartsView {
	return &chartsView{
		Trend:   page.Trend.HTML(),
		Ratio:   page.Ratio.HTML(),
		Classes: page.Classes.HTML(),
	}
}

func (h *Handler) handleObserve(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pages.Get(chi.URLParam(r, "pageID"))
	if !ok {
		httpx.RespondError(w, fmt.Errorf("page: %w", httpx.ErrNotFound))
		return
	}
	target := strings.TrimSpace(chi.URLParam(r, "target"))

	fired, err := page.Orchestrator.Observe(r.Context(), target)
	switch {
	case errors.Is(err, dashboard.ErrUnknownTarget):
		httpx.RespondError(w, fmt.Errorf("target %q: %w", target, httpx.ErrNotFound))
		return
	case err != nil:
		h.logError("load charts", err)
		httpx.RespondError(w, fmt.Errorf("%w: chart data unavailable", httpx.ErrUpstream))
		return
	}

	if counter, ok := page.Orchestrator.Counter(target); ok {
		switch {
		case page.Orchestrator.KPIError() != nil:
			httpx.NoContent(w)
		case len(counter.Frames) == 0:
			// KPIs still loading. The observation is remembered, ask again.
			httpx.JSON(w, http.StatusAccepted, counter)
		default:
			httpx.JSON(w, http.StatusOK, counter)
		}
		return
	}

	if !fired {
		httpx.NoContent(w)
		return
	}

	if target == dashboard.SectionDashboard {
		if !page.Trend.Drawn() {
			httpx.NoContent(w)
			return
		}
		var buf bytes.Buffer
		if err := h.templates.RenderFragment(&buf, "partials/charts.html", chartsFor(page)); err != nil {
			h.handleServerError(w, "render charts", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			h.logError("write charts", err)
		}
		return
	}
	if impact, ok := page.Orchestrator.Impact(target); ok {
		httpx.JSON(w, http.StatusOK, impact)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"target": target,
		"state":  page.Orchestrator.SectionState(target).String(),
	})
}

type toastFeed struct {
	Toasts []notify.Toast `json:"toasts"`
	Busy   bool           `json:"busy"`
}

func (h *Handler) handleToasts(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pages.Get(chi.URLParam(r, "pageID"))
	if !ok {
		httpx.RespondError(w, fmt.Errorf("page: %w", httpx.ErrNotFound))
		return
	}
	toasts, err := page.Toasts.List(r.Context())
	if err != nil {
		h.logError("list toasts", err)
		httpx.RespondError(w, err)
		return
	}
	if toasts == nil {
		toasts = []notify.Toast{}
	}
	feed := toastFeed{Toasts: toasts}
	if h.busy != nil {
		feed.Busy = h.busy.Active()
	}
	httpx.JSON(w, http.StatusOK, feed)
}

type studentQuery struct {
	ClassID string `validate:"required,max=64"`
	YearID  string `validate:"required,max=64"`
	Limit   int    `validate:"gte=0,lte=500"`
}

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := studentQuery{
		ClassID: strings.TrimSpace(q.Get("class_id")),
		YearID:  strings.TrimSpace(q.Get("year_id")),
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: limit must be a number", httpx.ErrValidation))
			return
		}
		query.Limit = limit
	}
	if err := h.validate.Struct(query); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	students, err := h.students.GetStudents(h.pageContext(r), query.ClassID, query.YearID, query.Limit)
	if err != nil {
		h.respondUpstream(w, "list students", err)
		return
	}
	if students == nil {
		students = []attendance.Student{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"students": students})
}

func (h *Handler) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	env, err := h.students.AddStudent(h.pageContext(r), payload)
	if err != nil {
		h.respondUpstream(w, "add student", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, env)
}

func (h *Handler) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	var payload json.RawMessage
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	env, err := h.students.UpdateStudent(h.pageContext(r), id, payload)
	if err != nil {
		h.respondUpstream(w, "update student", err)
		return
	}
	httpx.JSON(w, http.StatusOK, env)
}

func (h *Handler) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	env, err := h.students.DeleteStudent(h.pageContext(r), id)
	if err != nil {
		h.respondUpstream(w, "delete student", err)
		return
	}
	httpx.JSON(w, http.StatusOK, env)
}

// pageContext routes notifications raised while serving r to the page named
// by the page_id query parameter.
func (h *Handler) pageContext(r *http.Request) context.Context {
	ctx := r.Context()
	id := strings.TrimSpace(r.URL.Query().Get("page_id"))
	if id == "" {
		return ctx
	}
	if page, ok := h.pages.Get(id); ok {
		return notify.ContextWithContainer(ctx, page.Toasts)
	}
	return ctx
}

func (h *Handler) respondUpstream(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	message := apiclient.FallbackMessage
	var reqErr *apiclient.RequestError
	if errors.As(err, &reqErr) {
		message = reqErr.Error()
	}
	httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUpstream, message))
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
