package notice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/fingerprint"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/infringer"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
	"github.com/davidleathers/takedown-compliance-engine/internal/service/assessment"
)

type memNoticeRepo struct {
	byTicket  map[string]*notice.TakedownNotice
	saveErrs  []error
	saveCalls int
	updateErr error
}

func newMemNoticeRepo() *memNoticeRepo {
	return &memNoticeRepo{byTicket: make(map[string]*notice.TakedownNotice)}
}

func (r *memNoticeRepo) Save(ctx context.Context, n *notice.TakedownNotice) error {
	r.saveCalls++
	if len(r.saveErrs) > 0 {
		err := r.saveErrs[0]
		r.saveErrs = r.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	r.byTicket[n.TicketID] = n
	return nil
}

func (r *memNoticeRepo) Update(ctx context.Context, n *notice.TakedownNotice) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	n.Version++
	r.byTicket[n.TicketID] = n
	return nil
}

func (r *memNoticeRepo) GetByID(ctx context.Context, id uuid.UUID) (*notice.TakedownNotice, error) {
	for _, n := range r.byTicket {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, errors.ErrNoticeNotFound
}

func (r *memNoticeRepo) GetByTicketID(ctx context.Context, ticketID string) (*notice.TakedownNotice, error) {
	n, ok := r.byTicket[ticketID]
	if !ok {
		return nil, errors.ErrNoticeNotFound
	}
	return n, nil
}

func (r *memNoticeRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*notice.TakedownNotice, error) {
	var out []*notice.TakedownNotice
	for _, n := range r.byTicket {
		if !n.Status.IsTerminal() && n.SLADeadline.Before(asOf) {
			out = append(out, n)
		}
	}
	return out, nil
}

type memCounterRepo struct {
	saved []*notice.CounterNotice
}

func (r *memCounterRepo) Save(ctx context.Context, cn *notice.CounterNotice) error {
	r.saved = append(r.saved, cn)
	return nil
}

func (r *memCounterRepo) GetByNoticeID(ctx context.Context, noticeID uuid.UUID) (*notice.CounterNotice, error) {
	for _, cn := range r.saved {
		if cn.NoticeID == noticeID {
			return cn, nil
		}
	}
	return nil, errors.ErrCounterNoticeNotFound
}

type memAuditRepo struct {
	events []*audit.Event
}

func (r *memAuditRepo) Save(ctx context.Context, event *audit.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *memAuditRepo) ListByNoticeID(ctx context.Context, noticeID uuid.UUID) ([]*audit.Event, error) {
	var out []*audit.Event
	for _, e := range r.events {
		if e.NoticeID == noticeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memAuditRepo) actions() []audit.ActionType {
	out := make([]audit.ActionType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.ActionType)
	}
	return out
}

func (r *memAuditRepo) has(action audit.ActionType) bool {
	for _, e := range r.events {
		if e.ActionType == action {
			return true
		}
	}
	return false
}

type memInfringerRepo struct {
	records map[uuid.UUID]*infringer.Record
}

func newMemInfringerRepo() *memInfringerRepo {
	return &memInfringerRepo{records: make(map[uuid.UUID]*infringer.Record)}
}

func (r *memInfringerRepo) GetByArtistID(ctx context.Context, artistID uuid.UUID) (*infringer.Record, error) {
	rec, ok := r.records[artistID]
	if !ok {
		return nil, errors.ErrInfringerNotFound
	}
	return rec, nil
}

func (r *memInfringerRepo) Save(ctx context.Context, record *infringer.Record) error {
	r.records[record.ArtistID] = record
	return nil
}

type fakeContentStore struct {
	removed    []string
	disabled   []string
	geoBlocked []string
	reinstated []string
	ownerID    uuid.UUID
	ownerErr   error
}

func (c *fakeContentStore) Remove(ctx context.Context, contentRef string) error {
	c.removed = append(c.removed, contentRef)
	return nil
}

func (c *fakeContentStore) Disable(ctx context.Context, contentRef string) error {
	c.disabled = append(c.disabled, contentRef)
	return nil
}

func (c *fakeContentStore) GeoBlock(ctx context.Context, contentRef string, jurisdiction notice.Jurisdiction) error {
	c.geoBlocked = append(c.geoBlocked, contentRef)
	return nil
}

func (c *fakeContentStore) Reinstate(ctx context.Context, contentRef string) error {
	c.reinstated = append(c.reinstated, contentRef)
	return nil
}

func (c *fakeContentStore) Owner(ctx context.Context, contentRef string) (uuid.UUID, error) {
	if c.ownerErr != nil {
		return uuid.Nil, c.ownerErr
	}
	return c.ownerID, nil
}

type fakeNotifier struct {
	claimant   []string
	infringer  []string
	forwarded  int
	forwardErr error
}

func (n *fakeNotifier) NotifyClaimant(ctx context.Context, tn *notice.TakedownNotice, subject string) error {
	n.claimant = append(n.claimant, subject)
	return nil
}

func (n *fakeNotifier) NotifyInfringer(ctx context.Context, tn *notice.TakedownNotice, subject string) error {
	n.infringer = append(n.infringer, subject)
	return nil
}

func (n *fakeNotifier) ForwardNotice(ctx context.Context, tn *notice.TakedownNotice) error {
	if n.forwardErr != nil {
		return n.forwardErr
	}
	n.forwarded++
	return nil
}

type fakeTrust struct {
	level notice.TrustLevel
	err   error
}

func (t *fakeTrust) TrustLevelFor(ctx context.Context, claimantEmail string) (notice.TrustLevel, error) {
	if t.err != nil {
		return "", t.err
	}
	return t.level, nil
}

type fakeScanner struct {
	calls      int
	err        error
	autoAction bool
}

func (s *fakeScanner) ScanNotice(ctx context.Context, n *notice.TakedownNotice) (*fingerprint.ScanRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &fingerprint.ScanRecord{AutoActionTaken: s.autoAction}, nil
}

type fakeAssessor struct {
	result *assessment.Result
	err    error
}

func (a *fakeAssessor) Assess(ctx context.Context, req assessment.Request) (*assessment.Result, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}
