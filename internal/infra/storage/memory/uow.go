package memory

import (
	"context"
	"errors"

	"rentadmin/internal/app/uow"
	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	RoomsRepo   domainrooms.Repository
	RatesRepo   domainrooms.RateRepository
	CouponsRepo domaincoupons.Repository
	UsagesRepo  domaincoupons.UsageRepository
	RedeemRepo  domaincoupons.Redeemer
}

// NewFactory binds a single CouponStore to the coupon, usage and redeem ports.
func NewFactory(rooms domainrooms.Repository, rates domainrooms.RateRepository, coupons *CouponStore) Factory {
	return Factory{
		RoomsRepo:   rooms,
		RatesRepo:   rates,
		CouponsRepo: coupons,
		UsagesRepo:  coupons,
		RedeemRepo:  coupons,
	}
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided; Redeem is atomic on
// its own and nothing else writes.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.RoomsRepo == nil || f.RatesRepo == nil || f.CouponsRepo == nil || f.UsagesRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	if !opts.ReadOnly && f.RedeemRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{f: f}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	f Factory
}

func (u *Unit) Rooms() domainrooms.Repository         { return u.f.RoomsRepo }
func (u *Unit) Rates() domainrooms.RateRepository     { return u.f.RatesRepo }
func (u *Unit) Coupons() domaincoupons.Repository     { return u.f.CouponsRepo }
func (u *Unit) Usages() domaincoupons.UsageRepository { return u.f.UsagesRepo }
func (u *Unit) Redeemer() domaincoupons.Redeemer      { return u.f.RedeemRepo }
func (u *Unit) Commit(ctx context.Context) error      { return nil }
func (u *Unit) Rollback(ctx context.Context) error    { return nil }
