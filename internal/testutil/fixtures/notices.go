package fixtures

import (
	"testing"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
	"github.com/stretchr/testify/require"
)

// NoticeBuilder assembles takedown notices for tests. Defaults produce a
// complete US DMCA notice at normal priority.
type NoticeBuilder struct {
	t            *testing.T
	clk          notice.Clock
	ticketID     string
	contentRef   string
	contentType  notice.ContentType
	elements     notice.StatutoryElements
	jurisdiction notice.Jurisdiction
	priority     notice.Priority
	trustLevel   notice.TrustLevel
}

func NewNoticeBuilder(t *testing.T) *NoticeBuilder {
	ticketID, err := notice.GenerateTicketID(notice.RealClock{})
	require.NoError(t, err)

	return &NoticeBuilder{
		t:            t,
		clk:          notice.RealClock{},
		ticketID:     ticketID,
		contentRef:   "content/tracks/12345",
		contentType:  notice.ContentTypeAudio,
		elements:     CompleteStatutoryElements(),
		jurisdiction: notice.JurisdictionUS,
		priority:     notice.PriorityNormal,
		trustLevel:   notice.TrustLevelStandard,
	}
}

func (b *NoticeBuilder) WithClock(clk notice.Clock) *NoticeBuilder {
	b.clk = clk
	return b
}

func (b *NoticeBuilder) WithTicketID(ticketID string) *NoticeBuilder {
	b.ticketID = ticketID
	return b
}

func (b *NoticeBuilder) WithContentRef(ref string) *NoticeBuilder {
	b.contentRef = ref
	return b
}

func (b *NoticeBuilder) WithContentType(ct notice.ContentType) *NoticeBuilder {
	b.contentType = ct
	return b
}

func (b *NoticeBuilder) WithElements(e notice.StatutoryElements) *NoticeBuilder {
	b.elements = e
	return b
}

func (b *NoticeBuilder) WithJurisdiction(j notice.Jurisdiction) *NoticeBuilder {
	b.jurisdiction = j
	return b
}

func (b *NoticeBuilder) WithPriority(p notice.Priority) *NoticeBuilder {
	b.priority = p
	return b
}

func (b *NoticeBuilder) WithTrustLevel(tl notice.TrustLevel) *NoticeBuilder {
	b.trustLevel = tl
	return b
}

func (b *NoticeBuilder) Build() *notice.TakedownNotice {
	n, err := notice.NewTakedownNotice(
		b.clk, b.ticketID, b.contentRef, b.contentType,
		b.elements, b.jurisdiction, b.priority, b.trustLevel,
	)
	require.NoError(b.t, err)
	return n
}

// CompleteStatutoryElements returns elements satisfying all nine DMCA
// requirements.
func CompleteStatutoryElements() notice.StatutoryElements {
	return notice.StatutoryElements{
		ClaimantName:      "Harbor Lane Publishing",
		ClaimantAddress:   "400 Fifth Ave, New York, NY 10018",
		ClaimantEmail:     "legal@harborlane.example",
		WorkTitle:         "Midnight Transit",
		InfringementDesc:  "Full track uploaded without license",
		GoodFaithBelief:   true,
		AccuracyStatement: true,
		PerjuryStatement:  true,
		Signature:         "/s/ Dana Whitfield",
	}
}
