package audit

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Event is one structured allocation audit event.
type Event struct {
	Action    string
	RequestID string
	OnlusID   string
	PoolID    string
	ResultID  string
	Amount    float64
	Reason    string
	Fields    map[string]interface{}
}

// Sink receives allocation audit events. Implementations are fire-and-forget:
// Record must never fail the operation that emitted the event.
type Sink interface {
	Record(ctx context.Context, event Event)
}

// ZerologSink writes audit events to the structured log.
type ZerologSink struct{}

func (ZerologSink) Record(ctx context.Context, event Event) {
	defer func() {
		recover()
	}()
	entry := log.Info().Str("audit", event.Action)
	if event.RequestID != "" {
		entry = entry.Str("request_id", event.RequestID)
	}
	if event.OnlusID != "" {
		entry = entry.Str("onlus_id", event.OnlusID)
	}
	if event.PoolID != "" {
		entry = entry.Str("pool_id", event.PoolID)
	}
	if event.ResultID != "" {
		entry = entry.Str("result_id", event.ResultID)
	}
	if event.Amount != 0 {
		entry = entry.Float64("amount", event.Amount)
	}
	if event.Reason != "" {
		entry = entry.Str("reason", event.Reason)
	}
	for k, v := range event.Fields {
		entry = entry.Interface(k, v)
	}
	entry.Msg("Allocation event")
}

// NopSink discards events. Used when no sink is wired.
type NopSink struct{}

func (NopSink) Record(_ context.Context, _ Event) {}
