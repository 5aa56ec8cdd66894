package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/money"
)

const roomNamespace = "rentadmin:room"

// Client is the subset of redis.UniversalClient the room cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewClient builds a single-node or cluster client depending on how many addresses are given.
func NewClient(addrs []string, password string) redis.UniversalClient {
	if len(addrs) > 1 {
		return redis.NewClusterClient(&redis.ClusterOptions{Addrs: addrs, Password: password})
	}
	return redis.NewClient(&redis.Options{Addr: addrs[0], Password: password})
}

// RoomCache is a read-through cache in front of a room repository. Cache failures never fail a
// lookup; the store stays the source of truth.
type RoomCache struct {
	Next   domainrooms.Repository
	Client Client
	TTL    time.Duration
	Logger *slog.Logger
}

func (c *RoomCache) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	key := roomKey(id)
	raw, err := c.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var doc cachedRoom
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil {
			return doc.toRoom(), nil
		}
		c.logger().Warn("room cache entry unreadable", "room_id", id)
	case !errors.Is(err, redis.Nil):
		c.logger().Warn("room cache get failed", "room_id", id, "err", err)
	}

	room, err := c.Next.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(newCachedRoom(room)); err == nil {
		if err := c.Client.Set(ctx, key, payload, c.TTL).Err(); err != nil {
			c.logger().Warn("room cache set failed", "room_id", id, "err", err)
		}
	}
	return room, nil
}

// Save writes through and drops the cached copy.
func (c *RoomCache) Save(ctx context.Context, room *domainrooms.Room) error {
	if err := c.Next.Save(ctx, room); err != nil {
		return err
	}
	return c.Evict(ctx, room.ID)
}

func (c *RoomCache) Evict(ctx context.Context, id domainrooms.RoomID) error {
	return c.Client.Del(ctx, roomKey(id)).Err()
}

func (c *RoomCache) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func roomKey(id domainrooms.RoomID) string {
	return roomNamespace + ":" + string(id)
}

type cachedRoom struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	Name          string    `json:"name"`
	BaseAmount    int64     `json:"base_amount"`
	Currency      string    `json:"currency"`
	MinStayNights int       `json:"min_stay_nights"`
	MaxStayNights *int      `json:"max_stay_nights,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newCachedRoom(r *domainrooms.Room) cachedRoom {
	return cachedRoom{
		ID:            string(r.ID),
		TenantID:      string(r.TenantID),
		Name:          r.Name,
		BaseAmount:    r.BasePricePerNight.Amount,
		Currency:      r.BasePricePerNight.Currency,
		MinStayNights: r.MinStayNights,
		MaxStayNights: r.MaxStayNights,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (d cachedRoom) toRoom() *domainrooms.Room {
	return &domainrooms.Room{
		ID:                domainrooms.RoomID(d.ID),
		TenantID:          domainrooms.TenantID(d.TenantID),
		Name:              d.Name,
		BasePricePerNight: money.Money{Amount: d.BaseAmount, Currency: d.Currency},
		MinStayNights:     d.MinStayNights,
		MaxStayNights:     d.MaxStayNights,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

var _ domainrooms.Repository = (*RoomCache)(nil)
