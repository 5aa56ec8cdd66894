package memory

import (
	"context"
	"sort"
	"sync"

	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
)

// RoomRepository keeps rooms in memory. Reads return copies so callers never share state.
type RoomRepository struct {
	mu    sync.RWMutex
	items map[domainrooms.RoomID]domainrooms.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{items: make(map[domainrooms.RoomID]domainrooms.Room)}
}

// ByID returns a room or domainrooms.ErrRoomNotFound.
func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.items[id]
	if !ok {
		return nil, domainrooms.ErrRoomNotFound
	}
	room.MaxStayNights = copyInt(room.MaxStayNights)
	return &room, nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *room
	stored.MaxStayNights = copyInt(room.MaxStayNights)
	r.items[room.ID] = stored
	return nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// RateRepository keeps seasonal rates grouped by room.
type RateRepository struct {
	mu    sync.RWMutex
	items map[domainrooms.RoomID][]domainrooms.SeasonalRate
}

func NewRateRepository() *RateRepository {
	return &RateRepository{items: make(map[domainrooms.RoomID][]domainrooms.SeasonalRate)}
}

// Overlapping returns the room's rates whose period touches at least one night of stay, ordered
// by id so callers see a stable sequence.
func (r *RateRepository) Overlapping(ctx context.Context, id domainrooms.RoomID, stay daterange.DateRange) ([]domainrooms.SeasonalRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domainrooms.SeasonalRate
	for _, rate := range r.items[id] {
		if rate.Period.Overlaps(stay) {
			out = append(out, rate)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save inserts or replaces a rate by id.
func (r *RateRepository) Save(ctx context.Context, rate domainrooms.SeasonalRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rates := r.items[rate.RoomID]
	for i := range rates {
		if rates[i].ID == rate.ID {
			rates[i] = rate
			return nil
		}
	}
	r.items[rate.RoomID] = append(rates, rate)
	return nil
}

var (
	_ domainrooms.Repository     = (*RoomRepository)(nil)
	_ domainrooms.RateRepository = (*RateRepository)(nil)
)
