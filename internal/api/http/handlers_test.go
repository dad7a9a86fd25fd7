package apihttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	analytics "maintenance-kpi/internal/analytics/application"
	"maintenance-kpi/internal/analytics/domain/statistic"
	"maintenance-kpi/internal/audit"
	"maintenance-kpi/internal/auth"
	"maintenance-kpi/internal/failure"
	maintapp "maintenance-kpi/internal/maintenance/application"
	maintenance "maintenance-kpi/internal/maintenance/domain"
	"maintenance-kpi/internal/maintenance/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

var (
	testNow = time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	testDue = time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC)
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubReports struct {
	err     error
	calls   int
	periods int
}

func (s *stubReports) record(periods int) error {
	s.calls++
	s.periods = periods
	return s.err
}

func (s *stubReports) StockCompliance(context.Context) (statistic.Compliance, error) {
	return statistic.Compliance{Percentage: 75, CompliantCount: 3, TotalCount: 4}, s.record(0)
}

func (s *stubReports) InventoryTurnover(_ context.Context, periods int) (statistic.Turnover, error) {
	return statistic.Turnover{AverageInventory: 10}, s.record(periods)
}

func (s *stubReports) PreventiveReactive(_ context.Context, periods int, _ statistic.Granularity) ([]statistic.MixPoint, error) {
	return nil, s.record(periods)
}

func (s *stubReports) MTBF(context.Context, string) (statistic.MTBFStats, error) {
	return statistic.MTBFStats{AverageDays: 15, IntervalCount: 2}, s.record(0)
}

func (s *stubReports) AverageMaintenanceDuration(context.Context, string) (statistic.DurationStats, error) {
	return statistic.DurationStats{AverageDays: 2, TotalDays: 4, SampleCount: 2}, s.record(0)
}

func (s *stubReports) OrderFinancials(_ context.Context, periods int) ([]statistic.FinancialPoint, error) {
	point := statistic.FinancialPoint{Period: "2024-03"}
	point.Delivered = decimal.RequireFromString("120.50")
	return []statistic.FinancialPoint{point}, s.record(periods)
}

func (s *stubReports) OrderCancellationRatio(context.Context) (statistic.CancellationRatio, error) {
	return statistic.CancellationRatio{Percentage: 30, CancelledCount: 3, TotalCount: 10}, s.record(0)
}

func (s *stubReports) SupplierPriceComparison(context.Context) (statistic.PriceComparison, error) {
	return statistic.PriceComparison{}, s.record(0)
}

func (s *stubReports) Dashboard(_ context.Context, periods int) (*analytics.Dashboard, error) {
	if err := s.record(periods); err != nil {
		return nil, err
	}
	return &analytics.Dashboard{
		GeneratedAt:     testNow,
		Periods:         periods,
		StockCompliance: statistic.Compliance{Percentage: 75, CompliantCount: 3, TotalCount: 4},
	}, nil
}

func newTestRouter(t *testing.T, reports KPIReports, store *memory.Store, auditLog audit.Logger) http.Handler {
	t.Helper()
	kpi, err := NewKPIHandler(reports, auditLog, quietLogger(), WithDefaultPeriods(4))
	if err != nil {
		t.Fatalf("kpi handler: %v", err)
	}
	statuses, err := maintapp.NewStatusService(store, maintapp.WithStatusClock(fixedClock{now: testNow}))
	if err != nil {
		t.Fatalf("status service: %v", err)
	}
	completion, err := maintapp.NewCompletionService(store, quietLogger(), maintapp.WithCompletionClock(fixedClock{now: testNow}))
	if err != nil {
		t.Fatalf("completion service: %v", err)
	}
	schedules, err := NewScheduleHandler(statuses, completion, auditLog, quietLogger())
	if err != nil {
		t.Fatalf("schedule handler: %v", err)
	}
	return NewRouter(kpi, schedules)
}

func scheduleStore() *memory.Store {
	due := testDue
	upcoming := testNow.AddDate(0, 0, 20)
	store := memory.NewStore()
	store.PutSchedule(maintenance.Schedule{ID: "s1", Name: "Belt check", FrequencyDays: 30, NextDue: &due})
	store.PutSchedule(maintenance.Schedule{ID: "s2", Name: "Filter swap", FrequencyDays: 60, NextDue: &upcoming})
	return store
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestKPI_PeriodsDefaultAndParse(t *testing.T) {
	reports := &stubReports{}
	router := newTestRouter(t, reports, scheduleStore(), nil)

	resp := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/kpi/inventory-turnover", nil))
	if resp.Code != http.StatusOK || reports.periods != 4 {
		t.Fatalf("expected default periods 4, got code=%d periods=%d", resp.Code, reports.periods)
	}

	resp = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/kpi/order-financials?periods=12", nil))
	if resp.Code != http.StatusOK || reports.periods != 12 {
		t.Fatalf("expected periods 12, got code=%d periods=%d", resp.Code, reports.periods)
	}
	if !strings.Contains(resp.Body.String(), `"delivered":"120.5"`) {
		t.Fatalf("expected decimal total in body, got %s", resp.Body.String())
	}

	calls := reports.calls
	resp = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/kpi/inventory-turnover?periods=abc", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if reports.calls != calls {
		t.Fatalf("expected no report call for invalid periods")
	}
}

func TestKPI_InvalidUnit(t *testing.T) {
	reports := &stubReports{}
	router := newTestRouter(t, reports, scheduleStore(), nil)
	resp := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/kpi/maintenance-mix?unit=year", nil))
	if resp.Code != http.StatusBadRequest || reports.calls != 0 {
		t.Fatalf("expected 400 without a report call, got %d calls=%d", resp.Code, reports.calls)
	}
}

func TestKPI_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", fmt.Errorf("bad periods: %w", failure.ErrInvalidArgument), http.StatusBadRequest},
		{"not found", fmt.Errorf("equipment: %w", failure.ErrNotFound), http.StatusNotFound},
		{"unavailable", failure.Unavailable(context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, &stubReports{err: tc.err}, scheduleStore(), nil)
			resp := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/kpi/stock-compliance", nil))
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
		})
	}
}

func TestKPI_NoDataIsOK(t *testing.T) {
	router := newTestRouter(t, &stubReports{err: statistic.ErrTooFewBreakdowns}, scheduleStore(), nil)
	resp := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/kpi/mtbf?equipment_id=eq-1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body noDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.NoData {
		t.Fatalf("expected no_data flag, got %+v", body)
	}
}

func TestKPI_ExportXLSXAudited(t *testing.T) {
	auditLog := audit.NewMemoryLog()
	router := newTestRouter(t, &stubReports{}, scheduleStore(), auditLog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/kpi/export.xlsx?periods=3", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.RoleOperator, "planner-1"))
	resp := serve(router, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if resp.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}
	entries := auditLog.Entries()
	if len(entries) != 1 || entries[0].Action != audit.ActionKPIExport || entries[0].Actor != "planner-1" {
		t.Fatalf("unexpected audit entries %+v", entries)
	}
}

func TestSchedules_Status(t *testing.T) {
	router := newTestRouter(t, &stubReports{}, scheduleStore(), nil)
	resp := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/schedules/status", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body statusesDTO
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Schedules) != 2 || body.Schedules[0].ScheduleID != "s1" || body.Schedules[0].Status != maintenance.StatusOverdue {
		t.Fatalf("unexpected schedules %+v", body.Schedules)
	}
	if body.Counts[maintenance.StatusOverdue] != 1 || body.Counts[maintenance.StatusUpcoming] != 1 {
		t.Fatalf("unexpected counts %v", body.Counts)
	}
}

func TestSchedules_CompleteAdvancesAndAudits(t *testing.T) {
	store := scheduleStore()
	auditLog := audit.NewMemoryLog()
	router := newTestRouter(t, &stubReports{}, store, auditLog)

	body := `{"expected_next_due":"` + testDue.Format(time.RFC3339) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules/s1/complete", strings.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.RoleOperator, "tech-7"))
	req.Header.Set("X-Forwarded-For", "10.2.3.4")
	resp := serve(router, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got scheduleDTO
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := testNow.AddDate(0, 0, 30)
	if got.NextDue == nil || !got.NextDue.Equal(want) {
		t.Fatalf("expected next due %s, got %v", want, got.NextDue)
	}

	events, _ := store.ListEvents(context.Background(), maintenance.EventFilter{})
	if len(events) != 1 || events[0].CreatedBy != "tech-7" {
		t.Fatalf("expected one event by tech-7, got %+v", events)
	}
	entries := auditLog.Entries()
	if len(entries) != 1 || entries[0].ResourceID != "s1" || entries[0].Outcome != "success" || entries[0].IP != "10.2.3.4" {
		t.Fatalf("unexpected audit entries %+v", entries)
	}
}

func TestSchedules_CompleteErrors(t *testing.T) {
	stale := testDue.AddDate(0, 0, -1).Format(time.RFC3339)
	cases := []struct {
		name    string
		path    string
		body    string
		status  int
		outcome string
	}{
		{"stale precondition", "/api/v1/schedules/s1/complete", `{"expected_next_due":"` + stale + `"}`, http.StatusConflict, "conflict"},
		{"unknown schedule", "/api/v1/schedules/missing/complete", "", http.StatusNotFound, "not_found"},
		{"bad json", "/api/v1/schedules/s1/complete", `{"when":1}`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auditLog := audit.NewMemoryLog()
			router := newTestRouter(t, &stubReports{}, scheduleStore(), auditLog)
			resp := serve(router, httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body)))
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
			entries := auditLog.Entries()
			if tc.outcome == "" {
				if len(entries) != 0 {
					t.Fatalf("expected no audit entry for rejected body, got %+v", entries)
				}
				return
			}
			if len(entries) != 1 || entries[0].Outcome != tc.outcome {
				t.Fatalf("unexpected audit entries %+v", entries)
			}
		})
	}
}
