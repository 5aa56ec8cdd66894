package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "rentadmin/internal/app/outbox"
)

// Outbox buffers records and, on Flush, moves them to a published log. It stands in for the
// Mongo outbox and Kafka relay when the service runs without a broker.
type Outbox struct {
	Logger *slog.Logger

	mu        sync.Mutex
	pending   []appoutbox.EventRecord
	published []appoutbox.EventRecord
}

func NewOutbox(logger *slog.Logger) *Outbox {
	return &Outbox{Logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, rec := range o.pending {
		if o.Logger != nil {
			o.Logger.DebugContext(ctx, "event published", "event", rec.Name, "aggregate", rec.Aggregate, "id", rec.ID)
		}
	}
	o.published = append(o.published, o.pending...)
	o.pending = nil
	return nil
}

// Published returns every flushed record in order.
func (o *Outbox) Published() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, len(o.published))
	copy(out, o.published)
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
