package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"rentadmin/internal/app/commands"
	couponapp "rentadmin/internal/app/handlers/coupons"
	pricingapp "rentadmin/internal/app/handlers/pricing"
	"rentadmin/internal/app/handlers/support"
	"rentadmin/internal/app/middleware"
	appoutbox "rentadmin/internal/app/outbox"
	"rentadmin/internal/app/queries"
	"rentadmin/internal/app/uow"
	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/infra/broker/kafka"
	"rentadmin/internal/infra/cache"
	"rentadmin/internal/infra/catalog"
	"rentadmin/internal/infra/config"
	"rentadmin/internal/infra/db/mongo"
	"rentadmin/internal/infra/db/postgres"
	ginserver "rentadmin/internal/infra/http/gin"
	"rentadmin/internal/infra/inbox"
	"rentadmin/internal/infra/obs"
	infraoutbox "rentadmin/internal/infra/outbox"
	"rentadmin/internal/infra/storage/memory"
	"rentadmin/internal/pkg/clock"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger(getenv("APP_ENV", "dev"), "info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	if err := app.loadFixtures(ctx, cfg.FixturesPath, logger); err != nil {
		logger.Warn("fixtures load failed", "error", err, "path", cfg.FixturesPath)
	}
	app.startBackground(ctx, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health, app.handlers)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver, "coupon_store", cfg.CouponStore)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers

	rooms   domainrooms.Repository
	rates   domainrooms.RateRepository
	coupons domaincoupons.Repository

	background []func(ctx context.Context) error
	closers    []func(ctx context.Context) error
}

// stores groups the ports chosen for the configured backends.
type stores struct {
	rooms       domainrooms.Repository
	rates       domainrooms.RateRepository
	coupons     domaincoupons.Repository
	usages      domaincoupons.UsageRepository
	redeemer    domaincoupons.Redeemer
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	inbox       inbox.Deduper
	relay       infraoutbox.Source
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{health: obs.HealthHandlers{Timeout: 2 * time.Second}}
	clk := clock.UTC{}

	st := stores{
		outbox:      memory.NewOutbox(logger),
		idempotency: memory.NewIdempotencyStore(),
		inbox:       inbox.NewMemory(),
	}

	var mongoDB *mongodriver.Database
	if cfg.StorageDriver == config.StorageMongo || cfg.CouponStore == config.CouponStoreMongo {
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		mongoDB = client.DB
		app.closers = append(app.closers, client.Close)
		app.health.Checks = append(app.health.Checks, obs.Check{Name: "mongo", Check: client.Ping})
	}

	switch cfg.StorageDriver {
	case config.StorageMongo:
		st.rooms = mongo.NewRoomRepository(mongoDB)
		st.rates = mongo.NewRateRepository(mongoDB)
		idem, err := mongo.NewIdempotencyStore(ctx, mongoDB)
		if err != nil {
			return nil, err
		}
		st.idempotency = idem
		box, err := infraoutbox.NewStore(ctx, mongoDB, clk)
		if err != nil {
			return nil, err
		}
		st.outbox, st.relay = box, box
		dedupe, err := inbox.NewStore(ctx, mongoDB, cfg.KafkaConsumerGroup, clk)
		if err != nil {
			return nil, err
		}
		st.inbox = dedupe
	default:
		st.rooms = memory.NewRoomRepository()
		st.rates = memory.NewRateRepository()
	}

	switch cfg.CouponStore {
	case config.CouponStorePostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return db.Close() })
		app.health.Checks = append(app.health.Checks, obs.Check{Name: "postgres", Check: pingSQL(db)})
		store := postgres.NewCouponStore(db)
		st.coupons, st.usages, st.redeemer = store, store, store
	case config.CouponStoreMongo:
		repo := mongo.NewCouponRepository(mongoDB)
		st.coupons, st.usages, st.redeemer = repo, repo, repo
	default:
		store := memory.NewCouponStore()
		st.coupons, st.usages, st.redeemer = store, store, store
	}

	var roomCache *cache.RoomCache
	if cfg.RedisAddr != "" {
		rdb := cache.NewClient(strings.Split(cfg.RedisAddr, ","), cfg.RedisPassword)
		roomCache = &cache.RoomCache{Next: st.rooms, Client: rdb, TTL: cfg.RoomCacheTTL, Logger: logger}
		st.rooms = roomCache
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
		app.health.Checks = append(app.health.Checks, obs.Check{Name: "redis", Check: pingRedis(rdb)})
	}

	if cfg.StorageDriver == config.StorageMongo {
		st.factory = mongo.Factory{
			DB:          mongoDB,
			RoomsRepo:   st.rooms,
			RatesRepo:   st.rates,
			CouponsRepo: st.coupons,
			UsagesRepo:  st.usages,
			RedeemRepo:  st.redeemer,
		}
	} else {
		st.factory = memory.Factory{
			RoomsRepo:   st.rooms,
			RatesRepo:   st.rates,
			CouponsRepo: st.coupons,
			UsagesRepo:  st.usages,
			RedeemRepo:  st.redeemer,
		}
	}

	if err := app.wireKafka(cfg, logger, st, roomCache, clk); err != nil {
		return nil, err
	}

	app.rooms, app.rates, app.coupons = st.rooms, st.rates, st.coupons
	app.handlers = buildHandlers(cfg, logger, st, clk)
	return app, nil
}

func buildHandlers(cfg config.Config, logger *slog.Logger, st stores, clk clock.Clock) ginserver.Handlers {
	settings := support.EngineSettings{MaxStayNights: cfg.MaxStayNights, Logger: logger}

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, pricingapp.QuotePriceQuery{}.Key(), &pricingapp.QuotePriceHandler{
		UoWFactory: st.factory,
		Settings:   settings,
	})
	queries.RegisterHandler(queryBus, pricingapp.QuoteWithOverridesQuery{}.Key(), &pricingapp.QuoteWithOverridesHandler{
		UoWFactory: st.factory,
		Settings:   settings,
	})
	queries.RegisterHandler(queryBus, pricingapp.ValidateCouponQuery{}.Key(), &pricingapp.ValidateCouponHandler{
		UoWFactory: st.factory,
		Settings:   settings,
	})

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, couponapp.RedeemCouponCommand{}.Key(), &couponapp.RedeemCouponHandler{
		UoWFactory: st.factory,
		Settings:   settings,
		Outbox:     st.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Clock:      clk,
	})
	logger.Debug("bus handlers registered", "queries", queryBus.Keys(), "commands", commandBus.Keys())

	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryAuthorization(middleware.TenantAuthorizer{}),
		middleware.QueryValidation(middleware.FieldValidator{}),
	)
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.CommandLogging(logger),
		middleware.Authorization(middleware.TenantAuthorizer{}),
		middleware.Validation(middleware.FieldValidator{}),
		middleware.Idempotency(st.idempotency, middleware.IdempotencyOptions{TTL: cfg.IdempotencyTTL, Clock: clk}),
		middleware.Transaction(st.factory, nil),
		middleware.OutboxFlush(st.outbox),
	)

	return ginserver.Handlers{
		Pricing: ginserver.PricingHandler{Queries: queryBusWithMiddleware, Logger: logger},
		Coupons: ginserver.CouponHandler{Queries: queryBusWithMiddleware, Commands: commandBusWithMiddleware, Logger: logger},
	}
}

// wireKafka starts the outbox relay when records are durable and the catalog consumer when there is
// a room cache to keep fresh.
func (a *application) wireKafka(cfg config.Config, logger *slog.Logger, st stores, roomCache *cache.RoomCache, clk clock.Clock) error {
	if !cfg.KafkaEnabled() {
		return nil
	}
	if st.relay != nil {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, "rentadmin", nil)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		worker := &infraoutbox.Worker{
			Store:       st.relay,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Clock:       clk,
			Logger:      logger,
		}
		a.background = append(a.background, worker.Run)
	} else {
		logger.Warn("kafka configured but outbox is in memory; events stay local")
	}

	if roomCache == nil {
		return nil
	}
	handler := &catalog.RoomEvents{Cache: roomCache, Inbox: st.inbox, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, nil, handler, logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { return consumer.Close() })
	topics := []string{catalog.Topic(cfg.KafkaTopicPrefix)}
	a.background = append(a.background, func(ctx context.Context) error { return consumer.Run(ctx, topics) })
	return nil
}

func (a *application) startBackground(ctx context.Context, logger *slog.Logger) {
	for _, run := range a.background {
		go func(run func(context.Context) error) {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "error", err)
			}
		}(run)
	}
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func pingSQL(db *sql.DB) func(ctx context.Context) error {
	return db.PingContext
}

func pingRedis(rdb redis.UniversalClient) func(ctx context.Context) error {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
