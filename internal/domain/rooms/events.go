package rooms

import "time"

// RoomUpdatedEvent is published by tenant management when a room's pricing fields change.
type RoomUpdatedEvent struct {
	RoomID   RoomID    `json:"room_id"`
	TenantID TenantID  `json:"tenant_id"`
	At       time.Time `json:"at"`
}

func (e RoomUpdatedEvent) EventName() string     { return "room.updated" }
func (e RoomUpdatedEvent) AggregateID() string   { return string(e.RoomID) }
func (e RoomUpdatedEvent) OccurredAt() time.Time { return e.At }
func (e RoomUpdatedEvent) Tenant() string        { return string(e.TenantID) }

// RatesChangedEvent is published when seasonal rates of a room are created, edited or deleted.
type RatesChangedEvent struct {
	RoomID   RoomID    `json:"room_id"`
	TenantID TenantID  `json:"tenant_id"`
	At       time.Time `json:"at"`
}

func (e RatesChangedEvent) EventName() string     { return "room.rates_changed" }
func (e RatesChangedEvent) AggregateID() string   { return string(e.RoomID) }
func (e RatesChangedEvent) OccurredAt() time.Time { return e.At }
func (e RatesChangedEvent) Tenant() string        { return string(e.TenantID) }
