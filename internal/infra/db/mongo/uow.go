package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"rentadmin/internal/app/uow"
	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface. Coupon ports may point at
// another store (Postgres); those stores join their own transaction through the context.
type Factory struct {
	DB *mongo.Database

	RoomsRepo   domainrooms.Repository
	RatesRepo   domainrooms.RateRepository
	CouponsRepo domaincoupons.Repository
	UsagesRepo  domaincoupons.UsageRepository
	RedeemRepo  domaincoupons.Redeemer
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction. Read-only units use snapshot read concern so a quote
// sees one consistent set of rates.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{session: session, f: f}, nil
}

type Unit struct {
	session mongo.Session
	f       Factory
}

func (u *Unit) Rooms() domainrooms.Repository         { return u.f.RoomsRepo }
func (u *Unit) Rates() domainrooms.RateRepository     { return u.f.RatesRepo }
func (u *Unit) Coupons() domaincoupons.Repository     { return u.f.CouponsRepo }
func (u *Unit) Usages() domaincoupons.UsageRepository { return u.f.UsagesRepo }
func (u *Unit) Redeemer() domaincoupons.Redeemer      { return u.f.RedeemRepo }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
