package rest

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
	noticesvc "github.com/davidleathers/takedown-compliance-engine/internal/service/notice"
)

const maxBodySize = 1 << 20 // 1MB

// NoticeService is the compliance engine surface the handlers depend on.
type NoticeService interface {
	SubmitNotice(ctx context.Context, req noticesvc.SubmitNoticeRequest) (*notice.TakedownNotice, error)
	GetNoticeStatus(ctx context.Context, ticketID string) (*noticesvc.StatusResult, error)
	SubmitCounterNotice(ctx context.Context, ticketID string, elements notice.StatutoryElements) (*notice.CounterNotice, error)
	TakeAction(ctx context.Context, ticketID string, action noticesvc.ContentAction, operatorID uuid.UUID) error
	OpenCounterNoticeWindow(ctx context.Context, ticketID string, operatorID uuid.UUID) error
	AdminResolve(ctx context.Context, ticketID string, outcome noticesvc.ResolutionOutcome, operatorID uuid.UUID) error
	Withdraw(ctx context.Context, ticketID string) error
	Escalate(ctx context.Context, ticketID string, to notice.Priority, operatorID uuid.UUID) error
	ListOverdueNotices(ctx context.Context) ([]*notice.TakedownNotice, error)
	GetAuditTrail(ctx context.Context, ticketID string) ([]*audit.Event, error)
}

// Metrics receives request-level compliance metrics.
type Metrics interface {
	RecordIntake(ctx context.Context, jurisdiction, priority string, durationMS float64)
	RecordResolution(ctx context.Context, outcome string)
	RecordCounterNotice(ctx context.Context)
	SetOverdueNotices(count int64)
}

// Handler serves the notice REST API.
type Handler struct {
	notices  NoticeService
	validate *validator.Validate
	logger   *slog.Logger
	metrics  Metrics
}

func NewHandler(notices NoticeService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		notices:  notices,
		validate: validator.New(),
		logger:   logger,
	}
}

// WithMetrics attaches a metrics sink. Without one the handlers skip
// instrumentation.
func (h *Handler) WithMetrics(m Metrics) *Handler {
	h.metrics = m
	return h
}

// SubmitNotice handles POST /api/v1/notices. Any structurally valid request
// gets a ticket; statutory gaps are reported back, not refused.
func (h *Handler) SubmitNotice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SubmitNoticeRequest
	if !h.decode(w, r, &req) {
		return
	}

	contentType := notice.ContentType(req.ContentType)
	if req.ContentType == "" {
		contentType = notice.ContentTypeUnknown
	}

	n, err := h.notices.SubmitNotice(r.Context(), noticesvc.SubmitNoticeRequest{
		ContentRef:   req.ContentRef,
		ContentType:  contentType,
		Elements:     req.elements(),
		Jurisdiction: notice.Jurisdiction(req.Jurisdiction),
		TrustLevel:   notice.TrustLevel(req.TrustLevel),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordIntake(r.Context(), string(n.Jurisdiction), string(n.Priority),
			float64(time.Since(start))/float64(time.Millisecond))
	}

	h.writeJSON(w, http.StatusCreated, SubmitNoticeResponse{
		TicketID:        n.TicketID,
		Status:          string(n.Status),
		Priority:        string(n.Priority),
		SLADeadline:     n.SLADeadline,
		MissingElements: n.MissingElements,
	})
}

// GetNoticeStatus handles GET /api/v1/notices/{ticketID}.
func (h *Handler) GetNoticeStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.notices.GetNoticeStatus(r.Context(), r.PathValue("ticketID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, NoticeStatusResponse{
		TicketID:        status.TicketID,
		Status:          string(status.Status),
		Priority:        string(status.Priority),
		SLADeadline:     status.SLADeadline,
		IsOverdue:       status.IsOverdue,
		CounterDeadline: status.CounterNoticeDeadline,
		MissingElements: status.MissingElements,
	})
}

// SubmitCounterNotice handles POST /api/v1/notices/{ticketID}/counter-notice.
func (h *Handler) SubmitCounterNotice(w http.ResponseWriter, r *http.Request) {
	var req CounterNoticeRequest
	if !h.decode(w, r, &req) {
		return
	}

	cn, err := h.notices.SubmitCounterNotice(r.Context(), r.PathValue("ticketID"), req.elements())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordCounterNotice(r.Context())
	}

	h.writeJSON(w, http.StatusCreated, CounterNoticeResponse{
		ID:          cn.ID.String(),
		TicketID:    cn.TicketID,
		SubmittedAt: cn.SubmittedAt,
		Deadline:    cn.Deadline,
	})
}

// TakeAction handles POST /api/v1/notices/{ticketID}/action.
func (h *Handler) TakeAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.notices.TakeAction(r.Context(), r.PathValue("ticketID"),
		noticesvc.ContentAction(req.Action), h.operatorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OpenCounterNoticeWindow handles POST /api/v1/notices/{ticketID}/window.
func (h *Handler) OpenCounterNoticeWindow(w http.ResponseWriter, r *http.Request) {
	err := h.notices.OpenCounterNoticeWindow(r.Context(), r.PathValue("ticketID"), h.operatorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resolve handles POST /api/v1/notices/{ticketID}/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.notices.AdminResolve(r.Context(), r.PathValue("ticketID"),
		noticesvc.ResolutionOutcome(req.Outcome), h.operatorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordResolution(r.Context(), req.Outcome)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Withdraw handles POST /api/v1/notices/{ticketID}/withdraw.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	if err := h.notices.Withdraw(r.Context(), r.PathValue("ticketID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Escalate handles POST /api/v1/notices/{ticketID}/escalate.
func (h *Handler) Escalate(w http.ResponseWriter, r *http.Request) {
	var req EscalateRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.notices.Escalate(r.Context(), r.PathValue("ticketID"),
		notice.Priority(req.Priority), h.operatorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListOverdue handles GET /api/v1/notices/overdue.
func (h *Handler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	overdue, err := h.notices.ListOverdueNotices(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.SetOverdueNotices(int64(len(overdue)))
	}

	out := make([]OverdueNoticeResponse, 0, len(overdue))
	for _, n := range overdue {
		out = append(out, OverdueNoticeResponse{
			TicketID:     n.TicketID,
			Status:       string(n.Status),
			Priority:     string(n.Priority),
			Jurisdiction: string(n.Jurisdiction),
			SLADeadline:  n.SLADeadline,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// GetAuditTrail handles GET /api/v1/notices/{ticketID}/audit.
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	events, err := h.notices.GetAuditTrail(r.Context(), r.PathValue("ticketID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		resp := AuditEventResponse{
			ID:          e.ID.String(),
			ActionType:  string(e.ActionType),
			IsAutomated: e.IsAutomated,
			OccurredAt:  e.Timestamp,
			Details:     e.Details,
		}
		if e.PerformedBy != nil {
			performedBy := e.PerformedBy.String()
			resp.PerformedBy = &performedBy
		}
		out = append(out, resp)
	}
	h.writeJSON(w, http.StatusOK, out)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads, parses and validates the request body. It writes the error
// response itself and reports whether the handler should proceed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeErrorBody(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeErrorBody(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return false
	}
	return true
}

func (h *Handler) operatorID(r *http.Request) uuid.UUID {
	if claims := claimsFromContext(r.Context()); claims != nil {
		return claims.UserID
	}
	return uuid.Nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.GetStatusCode(err)
	code := "INTERNAL_ERROR"
	message := "An internal error occurred"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}
	if status >= 500 {
		h.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"path", r.URL.Path,
		)
		// Do not leak internals.
		message = "An internal error occurred"
	}
	writeErrorBody(w, status, code, message)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}
