package rest

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/auth"
)

// RouterConfig carries the knobs for route construction.
type RouterConfig struct {
	IntakeRateLimit int
	IntakeRateBurst int
	Logger          *slog.Logger
}

// NewRouter wires the notice API. Intake, status lookup, counter-notice and
// withdrawal are public surfaces; enforcement and resolution require an
// operator token, resolution and escalation require the admin role.
func NewRouter(handler *Handler, authSvc *auth.Service, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.IntakeRateLimit <= 0 {
		cfg.IntakeRateLimit = 100
	}
	if cfg.IntakeRateBurst <= 0 {
		cfg.IntakeRateBurst = 2 * cfg.IntakeRateLimit
	}

	mux := http.NewServeMux()

	intakeLimit := RateLimitMiddleware(cfg.IntakeRateLimit, cfg.IntakeRateBurst)
	operator := AuthMiddleware(authSvc, false)
	admin := AuthMiddleware(authSvc, true)

	// Public claimant and infringer surfaces.
	mux.Handle("POST /api/v1/notices", intakeLimit(http.HandlerFunc(handler.SubmitNotice)))
	mux.Handle("GET /api/v1/notices/{ticketID}", http.HandlerFunc(handler.GetNoticeStatus))
	mux.Handle("POST /api/v1/notices/{ticketID}/counter-notice", intakeLimit(http.HandlerFunc(handler.SubmitCounterNotice)))
	mux.Handle("POST /api/v1/notices/{ticketID}/withdraw", intakeLimit(http.HandlerFunc(handler.Withdraw)))

	// Operator surfaces.
	mux.Handle("POST /api/v1/notices/{ticketID}/action", operator(http.HandlerFunc(handler.TakeAction)))
	mux.Handle("POST /api/v1/notices/{ticketID}/window", operator(http.HandlerFunc(handler.OpenCounterNoticeWindow)))
	mux.Handle("GET /api/v1/notices/{ticketID}/audit", operator(http.HandlerFunc(handler.GetAuditTrail)))

	// Admin surfaces.
	mux.Handle("POST /api/v1/notices/{ticketID}/resolve", admin(http.HandlerFunc(handler.Resolve)))
	mux.Handle("POST /api/v1/notices/{ticketID}/escalate", admin(http.HandlerFunc(handler.Escalate)))
	mux.Handle("GET /api/v1/notices/overdue", admin(http.HandlerFunc(handler.ListOverdue)))

	mux.Handle("GET /healthz", http.HandlerFunc(handler.Healthz))
	mux.Handle("GET /metrics", promhttp.Handler())

	return Chain(mux,
		RequestIDMiddleware(),
		LoggingMiddleware(cfg.Logger),
		RecoveryMiddleware(cfg.Logger),
	)
}
