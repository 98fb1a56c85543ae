package dashboardhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/attendance-dashboard/internal/apiclient"
	"github.com/odyssey-erp/attendance-dashboard/internal/attendance"
	"github.com/odyssey-erp/attendance-dashboard/internal/dashboard"
	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
	"github.com/odyssey-erp/attendance-dashboard/internal/view"
)

type stubService struct {
	ratioErr error
	students []attendance.Student

	lastClass, lastYear string
	lastLimit           int
}

func (s *stubService) GetKPIs(context.Context) (attendance.KPISnapshot, error) {
	return attendance.KPISnapshot{TotalStudents: 1200, AvgAttendance: 82.4, RiskCount: 15, HighestAttendance: 98.2, TotalRecords: 30000}, nil
}

func (s *stubService) GetMonthlyTrend(context.Context) ([]attendance.TrendPoint, error) {
	return []attendance.TrendPoint{{Month: 8, Year: 2024, AvgAttendancePct: 92}}, nil
}

func (s *stubService) GetStatusRatio(context.Context) ([]attendance.StatusRatio, error) {
	return []attendance.StatusRatio{{Status: "P", Percentage: 90}, {Status: "A", Percentage: 10}}, s.ratioErr
}

func (s *stubService) GetClassDistribution(context.Context) ([]attendance.ClassDistribution, error) {
	return []attendance.ClassDistribution{{ClassName: "10-A", AttendancePct: 88}}, nil
}

func (s *stubService) GetStudents(_ context.Context, classID, yearID string, limit int) ([]attendance.Student, error) {
	s.lastClass, s.lastYear, s.lastLimit = classID, yearID, limit
	return s.students, nil
}

func (s *stubService) AddStudent(context.Context, any) (apiclient.RawEnvelope, error) {
	return apiclient.RawEnvelope{Success: true, Data: json.RawMessage(`{"id":9}`)}, nil
}

func (s *stubService) UpdateStudent(context.Context, string, any) (apiclient.RawEnvelope, error) {
	return apiclient.RawEnvelope{Success: true}, nil
}

func (s *stubService) DeleteStudent(context.Context, string) (apiclient.RawEnvelope, error) {
	return apiclient.RawEnvelope{}, &apiclient.RequestError{Endpoint: "/students/1", Status: http.StatusNotFound, Message: "Student not found"}
}

func quietCenter() *notify.Center {
	return notify.NewCenter(time.Minute, notify.WithClock(nil, func(time.Duration, func()) {}))
}

func newTestRouter(t *testing.T, svc dashboard.Service, students StudentService) (http.Handler, *dashboard.Registry) {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	registry := dashboard.NewRegistry(dashboard.RegistryParams{Service: svc, Notifier: quietCenter()})
	handler := NewHandler(nil, registry, students, templates, &apiclient.Busy{})
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, registry
}

func serve(h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPageRendersDashboard(t *testing.T) {
	svc := &stubService{}
	router, registry := newTestRouter(t, svc, svc)

	rr := serve(router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, registry.Len())

	body := rr.Body.String()
	assert.Contains(t, body, `id="kpi-1"`)
	assert.Contains(t, body, "Total Students")
	assert.Contains(t, body, "0<small>hrs</small>")
	assert.Contains(t, body, `id="analytical-dashboard"`)
	assert.Contains(t, body, "animation-delay:0.80s")
	assert.Contains(t, body, `id="toast-container"`)
	assert.NotContains(t, body, "<svg", "charts load lazily")
}

// slowKPIs holds the KPI response until release is closed.
type slowKPIs struct {
	*stubService
	release chan struct{}
}

func (s *slowKPIs) GetKPIs(ctx context.Context) (attendance.KPISnapshot, error) {
	select {
	case <-s.release:
	case <-ctx.Done():
		return attendance.KPISnapshot{}, ctx.Err()
	}
	return s.stubService.GetKPIs(ctx)
}

func TestPageRendersWhileKPIsLoad(t *testing.T) {
	svc := &slowKPIs{stubService: &stubService{}, release: make(chan struct{})}
	router, _ := newTestRouter(t, svc, svc.stubService)

	served := make(chan *httptest.ResponseRecorder, 1)
	go func() { served <- serve(router, http.MethodGet, "/", "") }()

	var rr *httptest.ResponseRecorder
	select {
	case rr = <-served:
	case <-time.After(2 * time.Second):
		close(svc.release)
		t.Fatal("page waited on the KPI backend")
	}
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `data-observe="kpi-1">0</p>`)
	assert.Contains(t, body, "0<small>hrs</small>")

	match := regexp.MustCompile(`data-page-id="([^"]+)"`).FindStringSubmatch(body)
	require.Len(t, match, 2)
	observe := "/pages/" + match[1] + "/observe/kpi-1"

	rr = serve(router, http.MethodPost, observe, "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	var counter dashboard.CounterView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counter))
	assert.Equal(t, "pending", counter.State)

	close(svc.release)
	require.Eventually(t, func() bool {
		rr = serve(router, http.MethodPost, observe, "")
		return rr.Code == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counter))
	assert.Equal(t, "fired", counter.State)
	assert.Equal(t, "1,200", counter.Display)
}

func TestObserveCounterAfterKPIFailure(t *testing.T) {
	svc := &slowKPIs{stubService: &stubService{}, release: make(chan struct{})}
	router, registry := newTestRouter(t, svc, svc.stubService)
	page := registry.Open()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page.Orchestrator.Start(ctx)
	require.Error(t, page.Orchestrator.KPIError())

	rr := serve(router, http.MethodPost, "/pages/"+page.ID+"/observe/kpi-1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestObserveDashboardReturnsChartsOnce(t *testing.T) {
	svc := &stubService{}
	router, registry := newTestRouter(t, svc, svc)
	page := registry.Open()
	page.Orchestrator.Start(context.Background())

	rr := serve(router, http.MethodPost, "/pages/"+page.ID+"/observe/analytical-dashboard", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rr.Body.String(), `id="trendChart"`)
	assert.Contains(t, rr.Body.String(), "8/2024")
	assert.Equal(t, 3, strings.Count(rr.Body.String(), "<svg"))

	rr = serve(router, http.MethodPost, "/pages/"+page.ID+"/observe/analytical-dashboard", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestObserveChartFailureSurfacesOneToast(t *testing.T) {
	svc := &stubService{ratioErr: errors.New("ratio down")}
	router, registry := newTestRouter(t, svc, svc)
	page := registry.Open()
	page.Orchestrator.Start(context.Background())

	rr := serve(router, http.MethodPost, "/pages/"+page.ID+"/observe/analytical-dashboard", "")
	require.Equal(t, http.StatusBadGateway, rr.Code)

	rr = serve(router, http.MethodGet, "/pages/"+page.ID+"/toasts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var feed toastFeed
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &feed))
	require.Len(t, feed.Toasts, 1)
	assert.Equal(t, dashboard.ChartErrorMessage, feed.Toasts[0].Message)
	assert.Equal(t, notify.KindError, feed.Toasts[0].Kind)
	assert.False(t, feed.Busy)

	rr = serve(router, http.MethodPost, "/pages/"+page.ID+"/observe/analytical-dashboard", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestObserveCounter(t *testing.T) {
	svc := &stubService{}
	router, registry := newTestRouter(t, svc, svc)
	page := registry.Open()
	page.Orchestrator.Start(context.Background())

	rr := serve(router, http.MethodPost, "/pages/"+page.ID+"/observe/kpi-5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var counter dashboard.CounterView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counter))
	assert.Equal(t, "kpi-5", counter.Slot)
	assert.Equal(t, "30,000", counter.Display)
	assert.Equal(t, 30000.0, counter.Target)

	rr = serve(router, http.MethodPost, "/pages/"+page.ID+"/observe/pipeline", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"fired"`)
}

func TestObserveUnknownPageOrTarget(t *testing.T) {
	svc := &stubService{}
	router, registry := newTestRouter(t, svc, svc)

	rr := serve(router, http.MethodPost, "/pages/missing/observe/kpi-1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	page := registry.Open()
	rr = serve(router, http.MethodPost, "/pages/"+page.ID+"/observe/footer", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestListStudents(t *testing.T) {
	svc := &stubService{students: []attendance.Student{{"id": "1", "name": "Ayu"}}}
	router, _ := newTestRouter(t, svc, svc)

	rr := serve(router, http.MethodGet, "/students?class_id=10A&year_id=2024", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Ayu"`)
	assert.Equal(t, "10A", svc.lastClass)
	assert.Equal(t, "2024", svc.lastYear)
	assert.Equal(t, 0, svc.lastLimit, "the façade applies the default limit")
}

func TestListStudentsValidation(t *testing.T) {
	svc := &stubService{}
	router, _ := newTestRouter(t, svc, svc)

	rr := serve(router, http.MethodGet, "/students?year_id=2024", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(router, http.MethodGet, "/students?class_id=1&year_id=2024&limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(router, http.MethodGet, "/students?class_id=1&year_id=2024&limit=9000", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateStudent(t *testing.T) {
	svc := &stubService{}
	router, _ := newTestRouter(t, svc, svc)

	rr := serve(router, http.MethodPost, "/students", `{"name":"Budi"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":9}}`, rr.Body.String())

	rr = serve(router, http.MethodPost, "/students", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteStudentFailureMapsToBadGateway(t *testing.T) {
	svc := &stubService{}
	router, _ := newTestRouter(t, svc, svc)

	rr := serve(router, http.MethodPost, "/students/1/delete", "")
	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "Student not found")
}

func TestDeleteStudentThroughBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/api/students/7":
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"Student not found"}`))
		}
	}))
	t.Cleanup(backend.Close)

	center := quietCenter()
	client := apiclient.NewClient(apiclient.Params{BaseURL: backend.URL + "/api", Notifier: center})
	service := attendance.NewService(client, center)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	registry := dashboard.NewRegistry(dashboard.RegistryParams{Service: service, Notifier: center})
	router := chi.NewRouter()
	NewHandler(nil, registry, service, templates, client.Busy()).MountRoutes(router)

	page := registry.Open()

	rr := serve(router, http.MethodPost, "/students/7/delete?page_id="+page.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(router, http.MethodDelete, "/students/8?page_id="+page.ID, "")
	require.Equal(t, http.StatusBadGateway, rr.Code)

	toasts, err := page.Toasts.List(context.Background())
	require.NoError(t, err)
	require.Len(t, toasts, 2)
	assert.Equal(t, attendance.DeletedMessage, toasts[0].Message)
	assert.Equal(t, notify.KindSuccess, toasts[0].Kind)
	assert.Equal(t, "Student not found", toasts[1].Message)
	assert.Equal(t, notify.KindError, toasts[1].Kind)
	assert.False(t, client.Busy().Active())
}
