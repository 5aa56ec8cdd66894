package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "rentadmin/internal/app/outbox"
	"rentadmin/internal/pkg/clock"
)

type fakeSource struct {
	queue  []*Claimed
	sent   []string
	failed map[string]time.Time
}

func (f *fakeSource) Claim(ctx context.Context, workerID string) (*Claimed, error) {
	if len(f.queue) == 0 {
		return nil, nil
	}
	c := f.queue[0]
	f.queue = f.queue[1:]
	return c, nil
}

func (f *fakeSource) MarkSent(ctx context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeSource) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	if f.failed == nil {
		f.failed = map[string]time.Time{}
	}
	f.failed[id] = next
	return nil
}

type published struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type fakeProducer struct {
	out  []published
	fail bool
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.out = append(p.out, published{topic, key, payload, headers})
	return nil
}

func redeemedRecord(id string) *Claimed {
	return &Claimed{Record: appoutbox.EventRecord{
		ID:         id,
		Name:       "coupon.redeemed",
		Payload:    []byte(`{"coupon_id":"c-summer","booking_id":"bk-1"}`),
		OccurredAt: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		Aggregate:  "c-summer",
		Headers:    map[string]string{"content-type": "application/json", "tenant_id": "tenant-a"},
	}}
}

func TestWorker_DrainPublishesCloudEvents(t *testing.T) {
	src := &fakeSource{queue: []*Claimed{redeemedRecord("evt-1"), redeemedRecord("evt-2")}}
	prod := &fakeProducer{}
	w := &Worker{Store: src, Producer: prod, TopicPrefix: "dev."}

	n, err := w.Drain(context.Background(), "worker-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"evt-1", "evt-2"}, src.sent)

	require.Len(t, prod.out, 2)
	msg := prod.out[0]
	assert.Equal(t, "dev.coupon.events.v1", msg.topic)
	assert.Equal(t, "c-summer", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])
	assert.Equal(t, "tenant-a", msg.headers["tenant_id"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &evt))
	assert.Equal(t, "coupon.redeemed.v1", evt["type"])
	assert.Equal(t, "evt-1", evt["id"])
	assert.Equal(t, "app://rentadmin", evt["source"])
	assert.Equal(t, "tenant-a", evt["tenantid"])
	assert.Equal(t, "bk-1", evt["data"].(map[string]any)["booking_id"])
}

func TestWorker_FailureSchedulesRetry(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	first := redeemedRecord("evt-1")
	later := redeemedRecord("evt-2")
	later.Attempts = 5
	src := &fakeSource{queue: []*Claimed{first, later}}
	w := &Worker{
		Store:    src,
		Producer: &fakeProducer{fail: true},
		Backoff:  []time.Duration{time.Second, time.Minute},
		Clock:    clock.NewFixed(now),
	}

	n, err := w.Drain(context.Background(), "worker-1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, src.sent)
	assert.Equal(t, now.Add(time.Second), src.failed["evt-1"])
	assert.Equal(t, now.Add(time.Minute), src.failed["evt-2"])
}

func TestWorker_BadPayloadIsMarkedFailed(t *testing.T) {
	rec := redeemedRecord("evt-1")
	rec.Record.Payload = []byte("not json")
	src := &fakeSource{queue: []*Claimed{rec}}
	prod := &fakeProducer{}
	w := &Worker{Store: src, Producer: prod}

	_, err := w.Drain(context.Background(), "worker-1")
	require.NoError(t, err)
	assert.Empty(t, prod.out)
	assert.Contains(t, src.failed, "evt-1")
}

func TestWorker_RequiresDependencies(t *testing.T) {
	err := (&Worker{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrWorkerNotConfigured)
}
