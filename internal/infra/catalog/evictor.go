package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/events"
	"rentadmin/internal/infra/inbox"
)

// Evicter drops a cached room.
type Evicter interface {
	Evict(ctx context.Context, id domainrooms.RoomID) error
}

// Topic returns the topic tenant management publishes room events to.
func Topic(prefix string) string {
	return prefix + "room.events.v1"
}

// RoomEvents consumes room.updated and room.rates_changed CloudEvents and evicts the cached room so
// the next quote reads fresh pricing fields.
type RoomEvents struct {
	Cache  Evicter
	Inbox  inbox.Deduper
	Logger *slog.Logger
}

type envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		RoomID   string `json:"room_id"`
		TenantID string `json:"tenant_id"`
	} `json:"data"`
}

func (h *RoomEvents) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt envelope
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("catalog: decode event: %w", err)
	}
	switch evt.Type {
	case events.Versioned(domainrooms.RoomUpdatedEvent{}.EventName()), events.Versioned(domainrooms.RatesChangedEvent{}.EventName()):
	default:
		return nil
	}
	if evt.Data.RoomID == "" {
		return fmt.Errorf("catalog: %s event %s without room_id", evt.Type, evt.ID)
	}
	if h.Inbox != nil && evt.ID != "" {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	if err := h.Cache.Evict(ctx, domainrooms.RoomID(evt.Data.RoomID)); err != nil {
		return err
	}
	h.logger().Debug("room cache evicted", "room_id", evt.Data.RoomID, "tenant_id", evt.Data.TenantID, "event", evt.Type)
	return nil
}

func (h *RoomEvents) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
