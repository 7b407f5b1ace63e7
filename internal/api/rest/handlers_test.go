package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/auth"
	noticesvc "github.com/davidleathers/takedown-compliance-engine/internal/service/notice"
	"github.com/davidleathers/takedown-compliance-engine/internal/testutil/fixtures"
)

type stubNoticeService struct {
	notice       *notice.TakedownNotice
	status       *noticesvc.StatusResult
	counter      *notice.CounterNotice
	overdue      []*notice.TakedownNotice
	events       []*audit.Event
	err          error
	lastAction   noticesvc.ContentAction
	lastOutcome  noticesvc.ResolutionOutcome
	lastOperator uuid.UUID
}

func (s *stubNoticeService) SubmitNotice(ctx context.Context, req noticesvc.SubmitNoticeRequest) (*notice.TakedownNotice, error) {
	return s.notice, s.err
}

func (s *stubNoticeService) GetNoticeStatus(ctx context.Context, ticketID string) (*noticesvc.StatusResult, error) {
	return s.status, s.err
}

func (s *stubNoticeService) SubmitCounterNotice(ctx context.Context, ticketID string, elements notice.StatutoryElements) (*notice.CounterNotice, error) {
	return s.counter, s.err
}

func (s *stubNoticeService) TakeAction(ctx context.Context, ticketID string, action noticesvc.ContentAction, operatorID uuid.UUID) error {
	s.lastAction = action
	s.lastOperator = operatorID
	return s.err
}

func (s *stubNoticeService) OpenCounterNoticeWindow(ctx context.Context, ticketID string, operatorID uuid.UUID) error {
	s.lastOperator = operatorID
	return s.err
}

func (s *stubNoticeService) AdminResolve(ctx context.Context, ticketID string, outcome noticesvc.ResolutionOutcome, operatorID uuid.UUID) error {
	s.lastOutcome = outcome
	s.lastOperator = operatorID
	return s.err
}

func (s *stubNoticeService) Withdraw(ctx context.Context, ticketID string) error {
	return s.err
}

func (s *stubNoticeService) Escalate(ctx context.Context, ticketID string, to notice.Priority, operatorID uuid.UUID) error {
	s.lastOperator = operatorID
	return s.err
}

func (s *stubNoticeService) ListOverdueNotices(ctx context.Context) ([]*notice.TakedownNotice, error) {
	return s.overdue, s.err
}

func (s *stubNoticeService) GetAuditTrail(ctx context.Context, ticketID string) ([]*audit.Event, error) {
	return s.events, s.err
}

type testEnv struct {
	svc    *stubNoticeService
	auth   *auth.Service
	server http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	authSvc, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)

	svc := &stubNoticeService{}
	handler := NewHandler(svc, slog.Default())
	router := NewRouter(handler, authSvc, RouterConfig{
		IntakeRateLimit: 1000,
		IntakeRateBurst: 1000,
	})
	return &testEnv{svc: svc, auth: authSvc, server: router}
}

func (e *testEnv) token(t *testing.T, role string) string {
	t.Helper()
	token, err := e.auth.GenerateToken(uuid.New(), "operator@example.com", role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func intakeRequest() map[string]interface{} {
	return map[string]interface{}{
		"content_ref":              "content/tracks/12345",
		"content_type":             "audio",
		"jurisdiction":             "US",
		"claimant_name":            "Harbor Lane Publishing",
		"claimant_address":         "400 Fifth Ave, New York, NY 10018",
		"claimant_email":           "legal@harborlane.example",
		"work_title":               "Midnight Transit",
		"infringement_description": "Full track uploaded without license",
		"good_faith_belief":        true,
		"accuracy_statement":       true,
		"perjury_statement":        true,
		"signature":                "/s/ Dana Whitfield",
	}
}

func TestSubmitNotice_Returns201WithTicket(t *testing.T) {
	env := newTestEnv(t)
	env.svc.notice = fixtures.NewNoticeBuilder(t).Build()

	rec := env.do(t, http.MethodPost, "/api/v1/notices", "", intakeRequest())

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp SubmitNoticeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, env.svc.notice.TicketID, resp.TicketID)
	assert.Equal(t, "submitted", resp.Status)
}

func TestSubmitNotice_IncompleteElementsStillTicketed(t *testing.T) {
	env := newTestEnv(t)
	n := fixtures.NewNoticeBuilder(t).Build()
	n.MissingElements = []string{"signature", "perjury_statement"}
	env.svc.notice = n

	body := intakeRequest()
	delete(body, "signature")
	body["perjury_statement"] = false

	rec := env.do(t, http.MethodPost, "/api/v1/notices", "", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp SubmitNoticeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"signature", "perjury_statement"}, resp.MissingElements)
}

func TestSubmitNotice_UnknownJurisdictionStillIssuesTicket(t *testing.T) {
	env := newTestEnv(t)
	n := fixtures.NewNoticeBuilder(t).WithJurisdiction("BR").Build()
	env.svc.notice = n

	body := intakeRequest()
	body["jurisdiction"] = "BR"

	rec := env.do(t, http.MethodPost, "/api/v1/notices", "", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp SubmitNoticeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, n.TicketID, resp.TicketID)
}

func TestSubmitNotice_RejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notices", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNoticeStatus(t *testing.T) {
	env := newTestEnv(t)
	deadline := time.Now().UTC().Add(72 * time.Hour)
	env.svc.status = &noticesvc.StatusResult{
		TicketID:    "TDN-2025-A1B2C3",
		Status:      notice.StatusTriage,
		Priority:    notice.PriorityNormal,
		SLADeadline: deadline,
		IsOverdue:   false,
	}

	rec := env.do(t, http.MethodGet, "/api/v1/notices/TDN-2025-A1B2C3", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp NoticeStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TDN-2025-A1B2C3", resp.TicketID)
	assert.Equal(t, "triage", resp.Status)
	assert.False(t, resp.IsOverdue)
}

func TestGetNoticeStatus_UnknownTicketIs404(t *testing.T) {
	env := newTestEnv(t)
	env.svc.err = errors.ErrNoticeNotFound

	rec := env.do(t, http.MethodGet, "/api/v1/notices/TDN-2025-ZZZZZZ", "", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "RESOURCE_NOT_FOUND", resp.Error.Code)
}

func TestSubmitCounterNotice(t *testing.T) {
	env := newTestEnv(t)
	parent := fixtures.NewNoticeBuilder(t).Build()
	parent.Status = notice.StatusNotified
	cn, err := notice.NewCounterNotice(notice.RealClock{}, parent, fixtures.CompleteStatutoryElements(), 10)
	require.NoError(t, err)
	env.svc.counter = cn

	body := map[string]interface{}{
		"claimant_name": "Sam Orta",
		"statement":     "I hold a valid license for this material",
		"signature":     "/s/ Sam Orta",
	}
	rec := env.do(t, http.MethodPost, "/api/v1/notices/"+parent.TicketID+"/counter-notice", "", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp CounterNoticeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, parent.TicketID, resp.TicketID)
	assert.False(t, resp.Deadline.IsZero())
}

func TestSubmitCounterNotice_TransitionRejectedIs422(t *testing.T) {
	env := newTestEnv(t)
	env.svc.err = errors.NewTransitionError("COUNTER_NOTICE_REJECTED",
		"counter-notice is not permitted in status triage")

	body := map[string]interface{}{
		"claimant_name": "Sam Orta",
		"signature":     "/s/ Sam Orta",
	}
	rec := env.do(t, http.MethodPost, "/api/v1/notices/TDN-2025-A1B2C3/counter-notice", "", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestResolve_RequiresAdminToken(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]interface{}{"outcome": "upheld"}
	path := "/api/v1/notices/TDN-2025-A1B2C3/resolve"

	rec := env.do(t, http.MethodPost, path, "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, path, env.token(t, auth.RoleOperator), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, path, env.token(t, auth.RoleAdmin), body)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, noticesvc.OutcomeUpheld, env.svc.lastOutcome)
	assert.NotEqual(t, uuid.Nil, env.svc.lastOperator)
}

func TestResolve_RejectsUnknownOutcome(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]interface{}{"outcome": "maybe"}

	rec := env.do(t, http.MethodPost, "/api/v1/notices/TDN-2025-A1B2C3/resolve",
		env.token(t, auth.RoleAdmin), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTakeAction_RequiresOperatorToken(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]interface{}{"action": "disable"}
	path := "/api/v1/notices/TDN-2025-A1B2C3/action"

	rec := env.do(t, http.MethodPost, path, "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, path, env.token(t, auth.RoleOperator), body)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, noticesvc.ContentActionDisable, env.svc.lastAction)
}

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/notices/TDN-2025-A1B2C3/withdraw", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEscalate_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]interface{}{"priority": "urgent"}
	path := "/api/v1/notices/TDN-2025-A1B2C3/escalate"

	rec := env.do(t, http.MethodPost, path, env.token(t, auth.RoleOperator), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, path, env.token(t, auth.RoleAdmin), body)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListOverdue_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	overdue := fixtures.NewNoticeBuilder(t).Build()
	env.svc.overdue = []*notice.TakedownNotice{overdue}

	rec := env.do(t, http.MethodGet, "/api/v1/notices/overdue", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/notices/overdue", env.token(t, auth.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp []OverdueNoticeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, overdue.TicketID, resp[0].TicketID)
}

func TestGetAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	n := fixtures.NewNoticeBuilder(t).Build()
	event, err := audit.NewSystemEvent(n.ID, audit.ActionNoticeReceived, map[string]interface{}{
		"ticket_id": n.TicketID,
	})
	require.NoError(t, err)
	env.svc.events = []*audit.Event{event}

	rec := env.do(t, http.MethodGet, "/api/v1/notices/"+n.TicketID+"/audit",
		env.token(t, auth.RoleOperator), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []AuditEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "notice_received", resp[0].ActionType)
	assert.True(t, resp[0].IsAutomated)
	assert.Nil(t, resp[0].PerformedBy)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIntakeRateLimit(t *testing.T) {
	authSvc, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)
	svc := &stubNoticeService{notice: fixtures.NewNoticeBuilder(t).Build()}
	router := NewRouter(NewHandler(svc, slog.Default()), authSvc, RouterConfig{
		IntakeRateLimit: 1,
		IntakeRateBurst: 2,
	})

	statuses := make(map[int]int)
	for i := 0; i < 5; i++ {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(intakeRequest()))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notices", &buf)
		req.Header.Set("X-Real-IP", "203.0.113.7")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		statuses[rec.Code]++
	}

	assert.Equal(t, 2, statuses[http.StatusCreated], fmt.Sprintf("statuses: %v", statuses))
	assert.Equal(t, 3, statuses[http.StatusTooManyRequests])
}
