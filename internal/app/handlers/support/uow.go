package support

import (
	"context"
	"log/slog"

	"rentadmin/internal/app/uow"
	"rentadmin/internal/domain/pricing"
)

// BeginReadOnlyUnit reuses the unit already in ctx or opens a read-only one. cleanup is nil when
// the unit was inherited.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, unit)
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, nil
}

// EngineSettings carries process-wide engine configuration into per-request engines.
type EngineSettings struct {
	MaxStayNights int
	Logger        *slog.Logger
}

// NewEngine builds a pricing engine over the unit's repositories. One engine per request keeps
// every call on the unit's snapshot.
func NewEngine(unit uow.UnitOfWork, settings EngineSettings) *pricing.Engine {
	return &pricing.Engine{
		Rooms:         unit.Rooms(),
		Rates:         unit.Rates(),
		Coupons:       unit.Coupons(),
		Usages:        unit.Usages(),
		Logger:        settings.Logger,
		MaxStayNights: settings.MaxStayNights,
	}
}
