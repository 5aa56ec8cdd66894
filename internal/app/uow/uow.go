package uow

import (
	"context"

	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
)

// UnitOfWork exposes the pricing repositories bound to one transaction or snapshot.
type UnitOfWork interface {
	Rooms() domainrooms.Repository
	Rates() domainrooms.RateRepository
	Coupons() domaincoupons.Repository
	Usages() domaincoupons.UsageRepository
	Redeemer() domaincoupons.Redeemer

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries. Price lookups and coupon validation only read.
type TxOptions struct {
	ReadOnly bool
}
