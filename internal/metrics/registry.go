package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the notice-domain instruments.
type Registry struct {
	meter metric.Meter

	// Intake and lifecycle
	NoticeIntakeCounter   metric.Int64Counter
	NoticeResolvedCounter metric.Int64Counter
	CounterNoticeCounter  metric.Int64Counter
	OverdueNotices        metric.Int64ObservableGauge
	IntakeDuration        metric.Float64Histogram

	// Collaborator health
	AssessmentFailOpenCounter metric.Int64Counter
	ScanDuration              metric.Float64Histogram
	ScanFailureCounter        metric.Int64Counter

	mu             sync.RWMutex
	overdueNotices int64
}

// NewRegistry creates the domain metric registry against the global meter
// provider.
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{meter: otel.Meter(meterName)}

	var err error
	r.NoticeIntakeCounter, err = r.meter.Int64Counter(
		"tde.notice.intake_total",
		metric.WithDescription("Total takedown notices received"),
	)
	if err != nil {
		return nil, err
	}

	r.NoticeResolvedCounter, err = r.meter.Int64Counter(
		"tde.notice.resolved_total",
		metric.WithDescription("Total notices resolved by outcome"),
	)
	if err != nil {
		return nil, err
	}

	r.CounterNoticeCounter, err = r.meter.Int64Counter(
		"tde.notice.counter_notice_total",
		metric.WithDescription("Total counter-notices accepted"),
	)
	if err != nil {
		return nil, err
	}

	r.OverdueNotices, err = r.meter.Int64ObservableGauge(
		"tde.notice.overdue",
		metric.WithDescription("Notices currently past their SLA deadline"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.overdueNotices)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	r.IntakeDuration, err = r.meter.Float64Histogram(
		"tde.notice.intake_duration",
		metric.WithDescription("Intake processing duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return nil, err
	}

	r.AssessmentFailOpenCounter, err = r.meter.Int64Counter(
		"tde.assessment.fail_open_total",
		metric.WithDescription("Risk assessments that fell back to the fail-open default"),
	)
	if err != nil {
		return nil, err
	}

	r.ScanDuration, err = r.meter.Float64Histogram(
		"tde.fingerprint.scan_duration",
		metric.WithDescription("Fingerprint scan duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 500, 1000, 5000, 10000),
	)
	if err != nil {
		return nil, err
	}

	r.ScanFailureCounter, err = r.meter.Int64Counter(
		"tde.fingerprint.scan_failure_total",
		metric.WithDescription("Fingerprint scans that failed and routed to manual review"),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// RecordIntake records one accepted notice.
func (r *Registry) RecordIntake(ctx context.Context, jurisdiction, priority string, durationMS float64) {
	attrs := metric.WithAttributes(
		attribute.String("jurisdiction", jurisdiction),
		attribute.String("priority", priority),
	)
	r.NoticeIntakeCounter.Add(ctx, 1, attrs)
	r.IntakeDuration.Record(ctx, durationMS, attrs)
}

// RecordResolution records a final admin disposition.
func (r *Registry) RecordResolution(ctx context.Context, outcome string) {
	r.NoticeResolvedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// RecordCounterNotice records an accepted counter-notice.
func (r *Registry) RecordCounterNotice(ctx context.Context) {
	r.CounterNoticeCounter.Add(ctx, 1)
}

// RecordFailOpen records a risk assessment that degraded to defaults.
func (r *Registry) RecordFailOpen(ctx context.Context) {
	r.AssessmentFailOpenCounter.Add(ctx, 1)
}

// RecordScan records one fingerprint scan attempt.
func (r *Registry) RecordScan(ctx context.Context, durationMS float64, failed bool) {
	r.ScanDuration.Record(ctx, durationMS, metric.WithAttributes(
		attribute.Bool("failed", failed),
	))
	if failed {
		r.ScanFailureCounter.Add(ctx, 1)
	}
}

// SetOverdueNotices publishes the current overdue backlog size.
func (r *Registry) SetOverdueNotices(count int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overdueNotices = count
}
