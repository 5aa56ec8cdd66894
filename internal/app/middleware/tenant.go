package middleware

import (
	"context"
	"errors"
	"strings"

	"rentadmin/internal/app/commands"
	"rentadmin/internal/app/queries"
	"rentadmin/internal/domain/rooms"
)

var ErrTenantForbidden = errors.New("middleware: caller is not allowed to act for this tenant")

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// TenantScoped messages name the tenant whose data they read or write.
type TenantScoped interface {
	Tenant() rooms.TenantID
}

type callerTenantKey struct{}

// WithCallerTenant records the tenant the transport authenticated the caller as.
func WithCallerTenant(ctx context.Context, tenant rooms.TenantID) context.Context {
	return context.WithValue(ctx, callerTenantKey{}, tenant)
}

// CallerTenant returns the tenant recorded by WithCallerTenant.
func CallerTenant(ctx context.Context) (rooms.TenantID, bool) {
	tenant, ok := ctx.Value(callerTenantKey{}).(rooms.TenantID)
	return tenant, ok && tenant != ""
}

// TenantAuthorizer rejects tenant-scoped messages whose tenant differs from the caller's.
// Messages that are not tenant scoped pass through.
type TenantAuthorizer struct{}

func (TenantAuthorizer) Authorize(ctx context.Context, message any) error {
	scoped, ok := message.(TenantScoped)
	if !ok {
		return nil
	}
	caller, ok := CallerTenant(ctx)
	if !ok {
		return ErrTenantForbidden
	}
	if !strings.EqualFold(string(caller), string(scoped.Tenant())) {
		return ErrTenantForbidden
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
