package events

import "time"

// DomainEvent is anything a use case hands to the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Scoped events belong to exactly one tenant.
type Scoped interface {
	DomainEvent
	Tenant() string
}

// TenantOf returns the owning tenant, or "" for events that are not scoped.
func TenantOf(ev DomainEvent) string {
	if s, ok := ev.(Scoped); ok {
		return s.Tenant()
	}
	return ""
}

// Versioned renders the wire type of an event, e.g. "coupon.redeemed.v1".
func Versioned(name string) string {
	return name + ".v1"
}
