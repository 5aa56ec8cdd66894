package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type plain struct{}

func (plain) EventName() string     { return "thing.happened" }
func (plain) AggregateID() string   { return "a-1" }
func (plain) OccurredAt() time.Time { return time.Time{} }

type scoped struct{ plain }

func (scoped) Tenant() string { return "seaside" }

func TestTenantOf(t *testing.T) {
	assert.Equal(t, "", TenantOf(plain{}))
	assert.Equal(t, "seaside", TenantOf(scoped{}))
}

func TestVersioned(t *testing.T) {
	assert.Equal(t, "coupon.redeemed.v1", Versioned("coupon.redeemed"))
}
