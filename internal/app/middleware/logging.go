package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentadmin/internal/app/commands"
	"rentadmin/internal/app/queries"
	"rentadmin/internal/domain/pricing"
)

// QueryLogging logs each query key with its duration. Integrity failures are logged by the
// engine itself, so here they only get a warning with the key.
func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			started := time.Now()
			res, err := nextFn(ctx, q)
			logResult(ctx, logger, "query", q.Key(), started, err)
			return res, err
		})
	}
}

func CommandLogging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			started := time.Now()
			res, err := nextFn(ctx, cmd)
			logResult(ctx, logger, "command", cmd.Key(), started, err)
			return res, err
		})
	}
}

func logResult(ctx context.Context, logger *slog.Logger, kind, key string, started time.Time, err error) {
	attrs := []any{kind, key, "duration", time.Since(started)}
	switch {
	case err == nil:
		logger.DebugContext(ctx, kind+" handled", attrs...)
	case errors.Is(err, pricing.ErrDataIntegrity):
		logger.WarnContext(ctx, kind+" failed on stored data", append(attrs, "error", err)...)
	default:
		logger.DebugContext(ctx, kind+" rejected", append(attrs, "error", err)...)
	}
}
