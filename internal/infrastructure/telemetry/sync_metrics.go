package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Sync outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ChannelSyncMetrics records channel synchronization activity.
type ChannelSyncMetrics struct {
	syncs        *Counter
	transitions  *Counter
	batchBlocked *Counter
	duration     *Histogram
}

// NewChannelSyncMetrics creates the sync instruments on meter.
func NewChannelSyncMetrics(meter metric.Meter) (*ChannelSyncMetrics, error) {
	syncs, err := NewCounter(meter, "channel_sync_total", "Channel synchronization calls", "{call}")
	if err != nil {
		return nil, err
	}
	transitions, err := NewCounter(meter, "channel_sync_transitions_total", "Lifecycle transitions applied by channel synchronization", "{transition}")
	if err != nil {
		return nil, err
	}
	blocked, err := NewCounter(meter, "channel_sync_batch_blocked_total", "Strict batches rejected because of unresolved exceptions", "{batch}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "channel_sync_duration_seconds", "Duration of a channel synchronization call", "s",
		0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5)
	if err != nil {
		return nil, err
	}
	return &ChannelSyncMetrics{
		syncs:        syncs,
		transitions:  transitions,
		batchBlocked: blocked,
		duration:     duration,
	}, nil
}

// RecordSync records one synchronization call.
func (m *ChannelSyncMetrics) RecordSync(ctx context.Context, action string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.syncs.Inc(ctx, AttrAction.String(action), AttrOutcome.String(outcome))
	m.duration.RecordDuration(ctx, d, AttrAction.String(action))
}

// RecordTransition records a lifecycle transition to status.
func (m *ChannelSyncMetrics) RecordTransition(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.transitions.Inc(ctx, AttrToStatus.String(status))
}

// RecordBatchBlocked records a strict batch rejected for unresolved exceptions.
func (m *ChannelSyncMetrics) RecordBatchBlocked(ctx context.Context) {
	if m == nil {
		return
	}
	m.batchBlocked.Inc(ctx)
}
