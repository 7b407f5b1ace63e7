package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
	domainerrors "github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/fingerprint"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/infringer"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
	"github.com/davidleathers/takedown-compliance-engine/internal/testutil/containers"
	"github.com/davidleathers/takedown-compliance-engine/internal/testutil/fixtures"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pg, err := containers.NewPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pg.Terminate(context.Background())
	})

	require.NoError(t, pg.Migrate("../../../migrations"))

	pool, err := pgxpool.New(ctx, pg.ConnectionString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestNoticeRepository_SaveAndGet(t *testing.T) {
	pool := newTestPool(t)
	repo := NewNoticeRepository(pool)
	ctx := context.Background()

	n := fixtures.NewNoticeBuilder(t).Build()
	require.NoError(t, repo.Save(ctx, n))

	got, err := repo.GetByTicketID(ctx, n.TicketID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, n.TicketID, got.TicketID)
	assert.Equal(t, n.Claimant, got.Claimant)
	assert.Equal(t, notice.StatusSubmitted, got.Status)
	assert.Equal(t, notice.FrameworkDMCA512, got.Framework)
	assert.Equal(t, int64(1), got.Version)
	assert.WithinDuration(t, n.SLADeadline, got.SLADeadline, time.Millisecond)

	byID, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.TicketID, byID.TicketID)
}

func TestNoticeRepository_DuplicateTicket(t *testing.T) {
	pool := newTestPool(t)
	repo := NewNoticeRepository(pool)
	ctx := context.Background()

	first := fixtures.NewNoticeBuilder(t).Build()
	require.NoError(t, repo.Save(ctx, first))

	dup := fixtures.NewNoticeBuilder(t).WithTicketID(first.TicketID).Build()
	err := repo.Save(ctx, dup)
	require.ErrorIs(t, err, domainerrors.ErrDuplicateTicket)
}

func TestNoticeRepository_NotFound(t *testing.T) {
	pool := newTestPool(t)
	repo := NewNoticeRepository(pool)
	ctx := context.Background()

	_, err := repo.GetByTicketID(ctx, "TDN-2025-ZZZZZZ")
	require.ErrorIs(t, err, domainerrors.ErrNoticeNotFound)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNoticeNotFound)
}

func TestNoticeRepository_UpdateVersionConflict(t *testing.T) {
	pool := newTestPool(t)
	repo := NewNoticeRepository(pool)
	ctx := context.Background()

	n := fixtures.NewNoticeBuilder(t).Build()
	require.NoError(t, repo.Save(ctx, n))

	// Two readers load the same version.
	a, err := repo.GetByTicketID(ctx, n.TicketID)
	require.NoError(t, err)
	b, err := repo.GetByTicketID(ctx, n.TicketID)
	require.NoError(t, err)

	require.NoError(t, a.Transition(notice.RealClock{}, notice.StatusTriage))
	require.NoError(t, repo.Update(ctx, a))
	assert.Equal(t, int64(2), a.Version)

	require.NoError(t, b.Transition(notice.RealClock{}, notice.StatusTriage))
	err = repo.Update(ctx, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modified concurrently")

	got, err := repo.GetByTicketID(ctx, n.TicketID)
	require.NoError(t, err)
	assert.Equal(t, notice.StatusTriage, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestNoticeRepository_ListOverdue(t *testing.T) {
	pool := newTestPool(t)
	repo := NewNoticeRepository(pool)
	ctx := context.Background()

	overdue := fixtures.NewNoticeBuilder(t).Build()
	overdue.SLADeadline = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, overdue))

	onTime := fixtures.NewNoticeBuilder(t).Build()
	require.NoError(t, repo.Save(ctx, onTime))

	// Terminal notices are never overdue, no matter the deadline.
	resolved := fixtures.NewNoticeBuilder(t).Build()
	resolved.SLADeadline = time.Now().UTC().Add(-time.Hour)
	resolved.Status = notice.StatusResolvedUpheld
	require.NoError(t, repo.Save(ctx, resolved))

	got, err := repo.ListOverdue(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, overdue.TicketID, got[0].TicketID)
}

func TestAuditRepository_AppendAndList(t *testing.T) {
	pool := newTestPool(t)
	notices := NewNoticeRepository(pool)
	repo := NewAuditRepository(pool)
	ctx := context.Background()

	n := fixtures.NewNoticeBuilder(t).Build()
	require.NoError(t, notices.Save(ctx, n))

	received, err := audit.NewSystemEvent(n.ID, audit.ActionNoticeReceived, map[string]interface{}{
		"ticket_id": n.TicketID,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, received))

	operatorID := uuid.New()
	removed, err := audit.NewOperatorEvent(n.ID, audit.ActionContentRemoved, operatorID, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, removed))

	events, err := repo.ListByNoticeID(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionNoticeReceived, events[0].ActionType)
	assert.True(t, events[0].IsAutomated)
	assert.Nil(t, events[0].PerformedBy)
	assert.Equal(t, n.TicketID, events[0].Details["ticket_id"])
	assert.Equal(t, audit.ActionContentRemoved, events[1].ActionType)
	require.NotNil(t, events[1].PerformedBy)
	assert.Equal(t, operatorID, *events[1].PerformedBy)
}

func TestAuditRepository_RowsAreImmutable(t *testing.T) {
	pool := newTestPool(t)
	notices := NewNoticeRepository(pool)
	repo := NewAuditRepository(pool)
	ctx := context.Background()

	n := fixtures.NewNoticeBuilder(t).Build()
	require.NoError(t, notices.Save(ctx, n))

	event, err := audit.NewSystemEvent(n.ID, audit.ActionNoticeReceived, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, event))

	// Direct SQL mutation attempts are swallowed by the table rules.
	_, err = pool.Exec(ctx, `UPDATE audit_events SET action_type = 'tampered' WHERE id = $1`, event.ID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM audit_events WHERE id = $1`, event.ID)
	require.NoError(t, err)

	events, err := repo.ListByNoticeID(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionNoticeReceived, events[0].ActionType)
}

func TestCounterNoticeRepository_SaveAndGet(t *testing.T) {
	pool := newTestPool(t)
	notices := NewNoticeRepository(pool)
	repo := NewCounterNoticeRepository(pool)
	ctx := context.Background()

	parent := fixtures.NewNoticeBuilder(t).Build()
	parent.Status = notice.StatusCounterNoticeWindow
	deadline := time.Now().UTC().Add(14 * 24 * time.Hour)
	parent.CounterNoticeDeadline = &deadline
	require.NoError(t, notices.Save(ctx, parent))

	cn, err := notice.NewCounterNotice(notice.RealClock{}, parent, fixtures.CompleteStatutoryElements(), 10)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, cn))

	got, err := repo.GetByNoticeID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, cn.ID, got.ID)
	assert.Equal(t, parent.TicketID, got.TicketID)
	assert.Equal(t, cn.Elements, got.Elements)

	_, err = repo.GetByNoticeID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrCounterNoticeNotFound)
}

func TestInfringerRepository_Upsert(t *testing.T) {
	pool := newTestPool(t)
	repo := NewInfringerRepository(pool)
	ctx := context.Background()

	artistID := uuid.New()
	_, err := repo.GetByArtistID(ctx, artistID)
	require.ErrorIs(t, err, domainerrors.ErrInfringerNotFound)

	rec, err := infringer.NewRecord(artistID)
	require.NoError(t, err)
	rec.AddStrike(3)
	require.NoError(t, repo.Save(ctx, rec))

	rec.AddStrike(3)
	rec.AddStrike(3)
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByArtistID(ctx, artistID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StrikeCount)
	assert.True(t, got.TerminationEligible)
}

func TestTrustedFlaggerRepository_EnrollAndLookup(t *testing.T) {
	pool := newTestPool(t)
	repo := NewTrustedFlaggerRepository(pool)
	ctx := context.Background()

	level, err := repo.TrustLevelFor(ctx, "unknown@example.com")
	require.NoError(t, err)
	assert.Empty(t, level)

	require.NoError(t, repo.Enroll(ctx, "Legal@HarborLane.example", notice.TrustLevelElevated))

	// Lookups are case-insensitive on the email.
	level, err = repo.TrustLevelFor(ctx, "legal@harborlane.example")
	require.NoError(t, err)
	assert.Equal(t, notice.TrustLevelElevated, level)

	require.NoError(t, repo.Enroll(ctx, "legal@harborlane.example", notice.TrustLevelPremium))
	level, err = repo.TrustLevelFor(ctx, "legal@harborlane.example")
	require.NoError(t, err)
	assert.Equal(t, notice.TrustLevelPremium, level)
}

func TestScanRepository_SaveAndList(t *testing.T) {
	pool := newTestPool(t)
	repo := NewScanRepository(pool)
	ctx := context.Background()

	first, err := fingerprint.NewScanRecord("content/tracks/999", notice.ContentTypeAudio, "audible-magic")
	require.NoError(t, err)
	first.Complete("sha256:aaaa", true, 0.97, true)
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, repo.Save(ctx, first))

	second, err := fingerprint.NewScanRecord("content/tracks/999", notice.ContentTypeAudio, "audible-magic")
	require.NoError(t, err)
	second.Fail()
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.ListByContentID(ctx, "content/tracks/999")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, fingerprint.ScanStatusFailed, got[0].ScanStatus)
	assert.Equal(t, first.ID, got[1].ID)
	assert.True(t, got[1].AutoActionTaken)
	assert.InDelta(t, 0.97, got[1].ConfidenceScore, 1e-9)
}
