package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
)

type captured struct {
	method      string
	path        string
	query       string
	body        string
	contentType string
	custom      string
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	kinds    []notify.Kind
}

func (r *recordingNotifier) Notify(_ context.Context, message string, kind notify.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	r.kinds = append(r.kinds, kind)
}

type recordingRecorder struct {
	mu       sync.Mutex
	routes   []string
	outcomes []string
	inflight []int
}

func (r *recordingRecorder) ObserveAPIRequest(route, method, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, method+" "+route)
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingRecorder) SetAPIInFlight(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight = append(r.inflight, n)
}

func newBackend(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.body = string(body)
		got.contentType = r.Header.Get("Content-Type")
		got.custom = r.Header.Get("X-Trace")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestResolveBaseURL(t *testing.T) {
	cases := []struct {
		host   string
		port   int
		origin string
		want   string
	}{
		{"localhost", 3000, "", "http://localhost:3000/api"},
		{"127.0.0.1:8080", 4000, "", "http://localhost:4000/api"},
		{"[::1]:8080", 0, "", "http://localhost:3000/api"},
		{"::1", 3000, "", "http://localhost:3000/api"},
		{"dashboard.school.id", 3000, "", "/api"},
		{"dashboard.school.id", 3000, "https://api.school.id/", "https://api.school.id/api"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveBaseURL(tc.host, tc.port, tc.origin), tc.host)
	}
}

func TestRequestSuccessReturnsEnvelope(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, `{"success":true,"data":{"id":1}}`)
	client := NewClient(Params{BaseURL: srv.URL + "/api/"})

	env, err := client.Get(context.Background(), "/analytics/kpi")
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"id":1}`, string(env.Data))
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/analytics/kpi", got.path)
	assert.Equal(t, "application/json", got.contentType)
	assert.False(t, client.Busy().Active())
}

func TestRequestBodyEncoding(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, `{"success":true}`)
	client := NewClient(Params{BaseURL: srv.URL})

	_, err := client.Post(context.Background(), "/students", `{"name":"Ayu"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ayu"}`, got.body, "string bodies are sent unmodified")

	_, err = client.Post(context.Background(), "/students", "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", got.body, "string bodies are never re-serialized")

	_, err = client.Put(context.Background(), "/students/3", map[string]any{"name": "Budi"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got.method)
	assert.JSONEq(t, `{"name":"Budi"}`, got.body)

	_, err = client.Delete(context.Background(), "/students/3")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Empty(t, got.body)
}

func TestRequestHeadersOverrideContentType(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, `{"success":true}`)
	client := NewClient(Params{BaseURL: srv.URL})

	_, err := client.Request(context.Background(), "/students", Options{
		Method:  "post",
		Headers: map[string]string{"Content-Type": "text/plain", "X-Trace": "abc"},
		Body:    "raw",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "text/plain", got.contentType)
	assert.Equal(t, "abc", got.custom)
}

func TestRequestFailures(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		response string
		message  string
		app      bool
	}{
		{"envelope error", http.StatusOK, `{"success":false,"error":"Invalid class"}`, "Invalid class", true},
		{"fallback message", http.StatusOK, `{"success":false}`, FallbackMessage, true},
		{"non-2xx with success", http.StatusInternalServerError, `{"success":true}`, FallbackMessage, true},
		{"non-2xx with error", http.StatusNotFound, `{"success":false,"error":"Student not found"}`, "Student not found", true},
		{"malformed json", http.StatusOK, `<html>`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newBackend(t, tc.status, tc.response)
			notifier := &recordingNotifier{}
			client := NewClient(Params{BaseURL: srv.URL, Notifier: notifier})

			_, err := client.Get(context.Background(), "/analytics/kpi")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRequestFailed)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, "/analytics/kpi", reqErr.Endpoint)
			assert.Equal(t, tc.app, reqErr.Application())
			if tc.message != "" {
				assert.Equal(t, tc.message, err.Error())
			}

			require.Len(t, notifier.messages, 1)
			assert.Equal(t, err.Error(), notifier.messages[0])
			assert.Equal(t, notify.KindError, notifier.kinds[0])
			assert.Equal(t, 0, client.Busy().InFlight())
		})
	}
}

func TestRequestTransportFailure(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"success":true}`)
	srv.Close()
	notifier := &recordingNotifier{}
	client := NewClient(Params{BaseURL: srv.URL, Notifier: notifier})

	_, err := client.Get(context.Background(), "/analytics/kpi")
	require.Error(t, err)
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.False(t, reqErr.Application())
	assert.Len(t, notifier.messages, 1)
	assert.False(t, client.Busy().Active())
}

func TestQuietSuppressesNotification(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"success":false,"error":"nope"}`)
	notifier := &recordingNotifier{}
	client := NewClient(Params{BaseURL: srv.URL, Notifier: notifier})

	_, err := client.Get(Quiet(context.Background()), "/analytics/ratio")
	require.Error(t, err)
	assert.Empty(t, notifier.messages)
}

type monthPoint struct {
	Month int `json:"month" validate:"min=1,max=12"`
}

func TestFetchDecodesPayload(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"success":true,"data":[{"month":8},{"month":9}]}`)
	client := NewClient(Params{BaseURL: srv.URL})

	points, err := Fetch[[]monthPoint](context.Background(), client, "/analytics/monthly")
	require.NoError(t, err)
	assert.Equal(t, []monthPoint{{Month: 8}, {Month: 9}}, points)
}

func TestFetchRejectsInvalidPayload(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"success":true,"data":[{"month":13}]}`)
	notifier := &recordingNotifier{}
	client := NewClient(Params{BaseURL: srv.URL, Notifier: notifier})

	_, err := Fetch[[]monthPoint](context.Background(), client, "/analytics/monthly")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Len(t, notifier.messages, 1)
}

func TestFetchMissingDataYieldsZero(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"success":true,"data":null}`)
	client := NewClient(Params{BaseURL: srv.URL})

	points, err := Fetch[[]monthPoint](context.Background(), client, "/analytics/monthly")
	require.NoError(t, err)
	assert.Nil(t, points)
}

func TestRecorderReceivesRouteAndInFlight(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"success":true}`)
	rec := &recordingRecorder{}
	client := NewClient(Params{BaseURL: srv.URL, Recorder: rec})

	_, err := client.Delete(context.Background(), "/students/42")
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "/students/class/7A/year/2024?limit=50")
	require.NoError(t, err)

	assert.Equal(t, []string{"DELETE /students/:id", "GET /students/class/:id/year/:id"}, rec.routes)
	assert.Equal(t, []string{"success", "success"}, rec.outcomes)
	assert.Equal(t, []int{1, 0, 1, 0}, rec.inflight)
}

func TestBusyStaysActiveWhileRequestsOverlap(t *testing.T) {
	var b Busy
	var transitions []bool
	b.OnChange(func(active bool, _ int) { transitions = append(transitions, active) })

	first := b.Acquire()
	second := b.Acquire()
	first()
	assert.True(t, b.Active(), "one request still in flight")
	first()
	assert.Equal(t, 1, b.InFlight(), "release is idempotent")
	second()
	assert.False(t, b.Active())
	assert.Equal(t, []bool{true, true, true, false}, transitions)
}

func TestBusyReleasedWhenBackendHangsUpMidway(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(Params{BaseURL: srv.URL})

	done := make(chan error, 1)
	go func() {
		_, err := client.Get(context.Background(), "/analytics/kpi")
		done <- err
	}()
	require.Eventually(t, client.Busy().Active, time.Second, 5*time.Millisecond)
	close(release)
	require.NoError(t, <-done)
	assert.False(t, client.Busy().Active())
}
