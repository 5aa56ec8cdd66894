package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "rentadmin/internal/app/outbox"
	"rentadmin/internal/domain/shared/events"
	"rentadmin/internal/pkg/clock"
)

// Claimed is a record leased to one worker together with its previous attempt count.
type Claimed struct {
	Record   appoutbox.EventRecord
	Attempts int
}

// Source is the durable side of the relay.
type Source interface {
	Claim(ctx context.Context, workerID string) (*Claimed, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker relays outbox records to the broker as CloudEvents. Failed publishes are retried on the
// Backoff schedule; the last step repeats once the schedule is exhausted.
type Worker struct {
	Store       Source
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Clock       clock.Clock
	Logger      *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	id := w.workerID()
	w.logger().Info("outbox relay started", "worker_id", id, "interval", w.interval().String())
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Drain(ctx, id); err != nil {
				return err
			}
		}
	}
}

// Drain relays due records until none are left and returns how many were published.
func (w *Worker) Drain(ctx context.Context, workerID string) (int, error) {
	sent := 0
	for {
		ok, published, err := w.processOnce(ctx, workerID)
		if err != nil || !ok {
			return sent, err
		}
		if published {
			sent++
		}
	}
}

func (w *Worker) processOnce(ctx context.Context, workerID string) (claimed, published bool, err error) {
	c, err := w.Store.Claim(ctx, workerID)
	if err != nil || c == nil {
		return false, false, err
	}
	rec := c.Record
	payload, headers, err := w.formatPayload(rec)
	if err == nil {
		err = w.Producer.Publish(ctx, w.topicFor(rec.Name), rec.Aggregate, payload, headers)
	}
	if err != nil {
		w.logger().Warn("outbox publish failed", "event", rec.Name, "id", rec.ID, "attempts", c.Attempts+1, "err", err)
		return true, false, w.Store.MarkFailed(ctx, rec.ID, w.nextRetry(c.Attempts), err.Error())
	}
	return true, true, w.Store.MarkSent(ctx, rec.ID)
}

func (w *Worker) formatPayload(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            events.Versioned(rec.Name),
		"source":          w.source(),
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if tenant := rec.Tenant(); tenant != "" {
		evt["tenantid"] = tenant
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := make(map[string]string, len(rec.Headers)+1)
	for k, v := range rec.Headers {
		headers[k] = v
	}
	headers[appoutbox.HeaderContentType] = "application/cloudevents+json"
	return payload, headers, nil
}

// topicFor maps "coupon.redeemed" to "<prefix>coupon.events.v1".
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return w.TopicPrefix + base + ".events.v1"
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	now := clock.OrUTC(w.Clock).Now()
	if attempts < len(w.Backoff) {
		return now.Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return now.Add(w.Backoff[len(w.Backoff)-1])
	}
	return now.Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://rentadmin"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")
