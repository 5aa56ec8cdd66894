package catalog

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/infra/inbox"
)

type recordingCache struct {
	evicted []domainrooms.RoomID
}

func (c *recordingCache) Evict(ctx context.Context, id domainrooms.RoomID) error {
	c.evicted = append(c.evicted, id)
	return nil
}

func message(body string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: Topic("dev."), Value: []byte(body)}
}

func TestRoomEvents_EvictsOnRoomChanges(t *testing.T) {
	cache := &recordingCache{}
	h := &RoomEvents{Cache: cache, Inbox: inbox.NewMemory()}

	require.NoError(t, h.Handle(context.Background(), message(`{"id":"e1","type":"room.updated.v1","data":{"room_id":"room-1","tenant_id":"tenant-a"}}`)))
	require.NoError(t, h.Handle(context.Background(), message(`{"id":"e2","type":"room.rates_changed.v1","data":{"room_id":"room-2"}}`)))

	assert.Equal(t, []domainrooms.RoomID{"room-1", "room-2"}, cache.evicted)
}

func TestRoomEvents_SkipsDuplicatesAndOtherTypes(t *testing.T) {
	cache := &recordingCache{}
	h := &RoomEvents{Cache: cache, Inbox: inbox.NewMemory()}
	body := `{"id":"e1","type":"room.updated.v1","data":{"room_id":"room-1"}}`

	require.NoError(t, h.Handle(context.Background(), message(body)))
	require.NoError(t, h.Handle(context.Background(), message(body)))
	require.NoError(t, h.Handle(context.Background(), message(`{"id":"e9","type":"coupon.redeemed.v1","data":{}}`)))

	assert.Len(t, cache.evicted, 1)
}

func TestRoomEvents_RejectsMalformed(t *testing.T) {
	h := &RoomEvents{Cache: &recordingCache{}}
	assert.Error(t, h.Handle(context.Background(), message(`{`)))
	assert.Error(t, h.Handle(context.Background(), message(`{"id":"e1","type":"room.updated.v1","data":{}}`)))
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "room.events.v1", Topic(""))
	assert.Equal(t, "prod.room.events.v1", Topic("prod."))
}
