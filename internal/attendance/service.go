// Package attendance exposes one typed call per backend operation.
package attendance

import (
	"context"
	"fmt"
	"net/url"

	"github.com/odyssey-erp/attendance-dashboard/internal/apiclient"
	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
)

// DefaultStudentLimit caps student listings when no limit is given.
const DefaultStudentLimit = 50

// DeletedMessage is shown after a successful student deletion.
const DeletedMessage = "Student deleted successfully"

// Service wraps the backend endpoints. Identifiers are passed through
// unchecked; rejecting them is up to the backend.
type Service struct {
	client   *apiclient.Client
	notifier notify.Notifier
}

// NewService wires the request client with the notifier used for success toasts.
func NewService(client *apiclient.Client, notifier notify.Notifier) *Service {
	return &Service{client: client, notifier: notifier}
}

// GetKPIs loads the KPI snapshot.
func (s *Service) GetKPIs(ctx context.Context) (KPISnapshot, error) {
	return apiclient.Fetch[KPISnapshot](ctx, s.client, "/analytics/kpi")
}

// GetMonthlyTrend loads the chronological monthly attendance series.
func (s *Service) GetMonthlyTrend(ctx context.Context) ([]TrendPoint, error) {
	return apiclient.Fetch[[]TrendPoint](ctx, s.client, "/analytics/monthly")
}

// GetStatusRatio loads the present/absent/excused split.
func (s *Service) GetStatusRatio(ctx context.Context) ([]StatusRatio, error) {
	return apiclient.Fetch[[]StatusRatio](ctx, s.client, "/analytics/ratio")
}

// GetClassDistribution loads the per-class attendance percentages.
func (s *Service) GetClassDistribution(ctx context.Context) ([]ClassDistribution, error) {
	return apiclient.Fetch[[]ClassDistribution](ctx, s.client, "/analytics/classes")
}

// GetStudents lists the students of a class in a year.
func (s *Service) GetStudents(ctx context.Context, classID, yearID string, limit int) ([]Student, error) {
	if limit <= 0 {
		limit = DefaultStudentLimit
	}
	endpoint := fmt.Sprintf("/students/class/%s/year/%s?limit=%d", url.PathEscape(classID), url.PathEscape(yearID), limit)
	return apiclient.Fetch[[]Student](ctx, s.client, endpoint)
}

// AddStudent creates a student and returns the full envelope.
func (s *Service) AddStudent(ctx context.Context, payload any) (apiclient.RawEnvelope, error) {
	return s.client.Post(ctx, "/students", payload)
}

// UpdateStudent replaces a student record and returns the full envelope.
func (s *Service) UpdateStudent(ctx context.Context, id string, payload any) (apiclient.RawEnvelope, error) {
	return s.client.Put(ctx, "/students/"+url.PathEscape(id), payload)
}

// DeleteStudent deletes a student and confirms it with a success toast.
func (s *Service) DeleteStudent(ctx context.Context, id string) (apiclient.RawEnvelope, error) {
	env, err := s.client.Delete(ctx, "/students/"+url.PathEscape(id))
	if err != nil {
		return env, err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, DeletedMessage, notify.KindSuccess)
	}
	return env, nil
}
