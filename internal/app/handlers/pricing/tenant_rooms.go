package pricing

import (
	"context"

	domainrooms "rentadmin/internal/domain/rooms"
)

// tenantRooms hides rooms of other tenants behind ErrRoomNotFound so room ids cannot be probed
// across tenants.
type tenantRooms struct {
	domainrooms.Repository
	tenant domainrooms.TenantID
}

func (r tenantRooms) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	room, err := r.Repository.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room.TenantID != r.tenant {
		return nil, domainrooms.ErrRoomNotFound
	}
	return room, nil
}
