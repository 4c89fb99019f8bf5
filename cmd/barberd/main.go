package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zayas4k/barberbook/internal/booking"
	"github.com/zayas4k/barberbook/internal/config"
	"github.com/zayas4k/barberbook/internal/events"
	"github.com/zayas4k/barberbook/internal/handlers"
	"github.com/zayas4k/barberbook/internal/httpx"
	"github.com/zayas4k/barberbook/internal/kafkax"
	"github.com/zayas4k/barberbook/internal/model"
	"github.com/zayas4k/barberbook/internal/otelx"
	"github.com/zayas4k/barberbook/internal/runtime"
	"github.com/zayas4k/barberbook/internal/schedule"
	"github.com/zayas4k/barberbook/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "barberd")
	port, err := config.Port("PORT", "3000")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	loc, err := time.LoadLocation(config.String("BUSINESS_TZ", "America/Puerto_Rico"))
	if err != nil {
		logger.Error("invalid BUSINESS_TZ", "err", err)
		panic(err)
	}
	sched := schedule.Default(loc)
	sched.OpenHour = config.Int("OPEN_HOUR", sched.OpenHour)
	sched.LastStartHour = config.Int("LAST_START_HOUR", sched.LastStartHour)
	if mins := config.Int("SLOT_MINUTES", 15); mins > 0 {
		sched.SlotStep = time.Duration(mins) * time.Minute
	}
	if mins := config.Int("MIN_LEAD_MINUTES", 5); mins >= 0 {
		sched.MinLead = time.Duration(mins) * time.Minute
	}

	catalog := model.DefaultCatalog()
	if path := config.String("SERVICES_FILE", ""); path != "" {
		catalog, err = model.LoadCatalog(path)
		if err != nil {
			logger.Error("catalog load failed", "err", err)
			panic(err)
		}
	}

	store, readyChecks, cleanup := buildStore(ctx, logger, sched)
	defer cleanup()

	brokers := config.String("KAFKA_BROKERS", "")
	publisher := events.NewPublisher(brokers, logger)
	defer func() { _ = publisher.Close() }()
	if brokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	svc := booking.NewService(store, catalog, sched, publisher, logger)
	handler := handlers.NewBookingHandler(svc, logger)

	mux := runtime.NewBaseMux(readyChecks...)
	handler.Register(mux)

	rateLimit := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	var rateLimitMW httpx.Middleware
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()
		rl := httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		logger.Info("rate limiting enabled (redis)", "per_minute", rateLimit, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(rateLimit, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", rateLimit)
	}

	var origins []string
	if raw := config.String("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		origins = strings.Split(raw, ",")
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(origins),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(10*time.Second),
		rateLimitMW,
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "barberd")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// buildStore selects the booking store from STORE_BACKEND: "file" (default),
// "postgres", or "memory" for throwaway demos.
func buildStore(ctx context.Context, logger *slog.Logger, sched schedule.Config) (storage.Store, []runtime.ReadyCheck, func()) {
	backend := strings.ToLower(config.String("STORE_BACKEND", "file"))
	switch backend {
	case "memory":
		store := storage.NewMemory()
		if config.Bool("DEMO_SEED", false) {
			store.SeedDemo(sched, time.Now())
			logger.Info("memory store seeded with demo bookings")
		}
		return store, nil, func() {}

	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			logger.Error("postgres store selected", "err", err)
			panic(err)
		}
		pool, err := storage.OpenPool(ctx, dbURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		store := storage.NewPostgres(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("schema setup failed", "err", err)
			panic(err)
		}
		check := runtime.ReadyCheck{Name: "db", Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		}}
		return store, []runtime.ReadyCheck{check}, pool.Close

	case "file":
		path := config.String("BOOKINGS_FILE", "bookings.json")
		logger.Info("using file store", "path", path)
		return storage.NewFile(path), nil, func() {}

	default:
		logger.Error("unknown STORE_BACKEND", "backend", backend)
		panic("unknown STORE_BACKEND: " + backend)
	}
}
