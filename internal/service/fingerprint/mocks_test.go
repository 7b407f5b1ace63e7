package fingerprint

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/fingerprint"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return "mock-provider"
}

func (m *MockProvider) Scan(ctx context.Context, contentRef string, contentType notice.ContentType) (*ProviderResult, error) {
	args := m.Called(ctx, contentRef, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderResult), args.Error(1)
}

type MockScanRepository struct {
	mock.Mock
}

func (m *MockScanRepository) Save(ctx context.Context, record *fingerprint.ScanRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Disable(ctx context.Context, contentRef string) error {
	args := m.Called(ctx, contentRef)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Save(ctx context.Context, event *audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockReviewQueue struct {
	mock.Mock
}

func (m *MockReviewQueue) EnqueueManualReview(ctx context.Context, noticeID uuid.UUID, reason string) error {
	args := m.Called(ctx, noticeID, reason)
	return args.Error(0)
}
