package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"maintenance-kpi/internal/audit"
	"maintenance-kpi/internal/auth"
	"maintenance-kpi/internal/eventing"
	"maintenance-kpi/internal/failure"
	maintapp "maintenance-kpi/internal/maintenance/application"
	maintenance "maintenance-kpi/internal/maintenance/domain"
	"maintenance-kpi/internal/observability/metrics"
)

// ScheduleStatuses lists derived schedule statuses.
type ScheduleStatuses interface {
	Statuses(ctx context.Context) ([]maintenance.ScheduleStatus, error)
}

// ScheduleCompleter completes a schedule.
type ScheduleCompleter interface {
	Complete(ctx context.Context, scheduleID string, opts maintapp.CompleteOptions) (*maintenance.Schedule, error)
}

// ScheduleHandler serves schedule status and completion endpoints.
type ScheduleHandler struct {
	statuses    ScheduleStatuses
	completer   ScheduleCompleter
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewScheduleHandler constructs a ScheduleHandler. auditLogger may be nil.
func NewScheduleHandler(statuses ScheduleStatuses, completer ScheduleCompleter, auditLogger audit.Logger, logger *log.Logger) (*ScheduleHandler, error) {
	if statuses == nil {
		return nil, errors.New("schedule handler: nil statuses")
	}
	if completer == nil {
		return nil, errors.New("schedule handler: nil completer")
	}
	return &ScheduleHandler{statuses: statuses, completer: completer, auditLogger: auditLogger, logger: logger}, nil
}

// Routes registers the schedule endpoints on r.
func (h *ScheduleHandler) Routes(r chi.Router) {
	r.Get("/status", h.Statuses)
	r.Post("/{id}/complete", h.Complete)
}

// Statuses handles GET /api/v1/schedules/status.
func (h *ScheduleHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statuses.Statuses(r.Context())
	if err != nil {
		writeError(w, h.logger, "schedule statuses", err)
		return
	}
	out := statusesDTO{
		Schedules: make([]scheduleStatusDTO, 0, len(statuses)),
		Counts:    maintapp.CountByStatus(statuses),
	}
	for _, s := range statuses {
		out.Schedules = append(out.Schedules, scheduleStatusDTO{
			ScheduleID:   s.ScheduleID,
			Name:         s.Name,
			Status:       s.Status,
			DaysUntilDue: s.DaysUntilDue,
			NextDue:      s.NextDue,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type completeRequest struct {
	ExpectedNextDue *time.Time `json:"expected_next_due"`
	CompletedBy     string     `json:"completed_by"`
}

// Complete handles POST /api/v1/schedules/{id}/complete. The body is
// optional; expected_next_due turns the call into a conditional completion.
func (h *ScheduleHandler) Complete(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "id")

	var req completeRequest
	if r.Body != nil {
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, h.logger, "complete schedule", fmt.Errorf("invalid json: %w", failure.ErrInvalidArgument))
			return
		}
	}

	completedBy := auth.SubjectFromContext(r.Context())
	if completedBy == "" {
		completedBy = req.CompletedBy
	}
	ctx := r.Context()
	if requestID := middleware.GetReqID(ctx); requestID != "" {
		ctx = eventing.WithCorrelationID(ctx, requestID)
	}
	schedule, err := h.completer.Complete(ctx, scheduleID, maintapp.CompleteOptions{
		ExpectedNextDue: req.ExpectedNextDue,
		CompletedBy:     completedBy,
	})
	h.logAudit(r, scheduleID, req, err)
	if err != nil {
		writeError(w, h.logger, "complete schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(schedule))
}

func (h *ScheduleHandler) logAudit(r *http.Request, scheduleID string, req completeRequest, err error) {
	if h.auditLogger == nil {
		return
	}
	meta := map[string]any{}
	if req.ExpectedNextDue != nil {
		meta["expected_next_due"] = req.ExpectedNextDue.UTC().Format(time.RFC3339)
	}
	if err != nil {
		meta["error"] = err.Error()
	}
	payload, _ := json.Marshal(meta)
	entry := audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       audit.ActionScheduleComplete,
		ResourceType: "maintenance_schedule",
		ResourceID:   scheduleID,
		Outcome:      metrics.ResultOf(err),
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if logErr := h.auditLogger.Log(r.Context(), entry); logErr != nil {
		metrics.IncAuditWriteError()
		if h.logger != nil {
			h.logger.Printf("audit write error: action=%s resource=%s err=%v", entry.Action, scheduleID, logErr)
		}
	}
}
