package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pixelmuse/pixelmuse/billing"
	"github.com/pixelmuse/pixelmuse/credits"
	"github.com/pixelmuse/pixelmuse/generation"
	"github.com/pixelmuse/pixelmuse/modules/studio"
	"github.com/pixelmuse/pixelmuse/pkg/config"
	"github.com/pixelmuse/pixelmuse/pkg/httpserver"
	"github.com/pixelmuse/pixelmuse/pkg/logger"
	"github.com/pixelmuse/pixelmuse/pkg/pg"
	"github.com/pixelmuse/pixelmuse/pkg/ratelimiter"
	"github.com/pixelmuse/pixelmuse/pkg/redis"
)

type appConfig struct {
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// Per-user rate limit for the generation endpoint.
	GenerateRateCapacity int           `env:"GENERATE_RATE_CAPACITY" envDefault:"5"`
	GenerateRateRefill   int           `env:"GENERATE_RATE_REFILL" envDefault:"1"`
	GenerateRateInterval time.Duration `env:"GENERATE_RATE_INTERVAL" envDefault:"10s"`

	// ProductGrants maps billing price ids to credit amounts and tiers,
	// e.g. {"pri_123":{"credits":120,"tier":"premium"}}. Unmapped products
	// fall back to the translator defaults.
	ProductGrants string `env:"BILLING_PRODUCT_GRANTS"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg    appConfig
		pgCfg     pg.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
		paddleCfg billing.PaddleConfig
		transCfg  billing.TranslatorConfig
		genCfg    generation.ClientConfig
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&paddleCfg)
	config.MustLoad(&transCfg)
	config.MustLoad(&genCfg)

	log := logger.New(os.Stdout, appCfg.LogLevel)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	store := credits.NewPgStore(pool, log)
	ledger := credits.NewService(store, log)
	gate := credits.NewGate(ledger)

	provider, err := billing.NewPaddleProvider(paddleCfg)
	if err != nil {
		return fmt.Errorf("billing provider: %w", err)
	}

	products, err := parseProductGrants(appCfg.ProductGrants)
	if err != nil {
		return fmt.Errorf("product grants: %w", err)
	}
	translator := billing.NewTranslator(ledger, transCfg, products, log)
	webhook := billing.NewHandler(provider, translator, log)

	client, err := generation.NewHTTPClient(genCfg)
	if err != nil {
		return fmt.Errorf("generation client: %w", err)
	}
	generator := generation.NewService(gate, ledger, client, log)

	// Rate limiting rides on Redis so limits hold across replicas. A missing
	// Redis is a degraded start, not a failed one.
	readiness := []func(context.Context) error{pg.Healthcheck(pool)}

	var limiterStore ratelimiter.Store
	if redisClient, rerr := redis.Connect(ctx, redisCfg); rerr != nil {
		log.WarnContext(ctx, "redis unavailable, rate limits apply per process",
			logger.Error(rerr))
		memStore := ratelimiter.NewMemoryStore()
		defer memStore.Close()
		limiterStore = memStore
	} else {
		defer redisClient.Close()
		limiterStore = ratelimiter.NewRedisStore(redisClient, "pixelmuse:ratelimit")
		readiness = append(readiness, redis.Healthcheck(redisClient))
	}

	bucket, err := ratelimiter.NewBucket(limiterStore, ratelimiter.Config{
		Capacity:       appCfg.GenerateRateCapacity,
		RefillRate:     appCfg.GenerateRateRefill,
		RefillInterval: appCfg.GenerateRateInterval,
	})
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	generateLimit := ratelimiter.Middleware(bucket, ratelimiter.Composite(limiterKey))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, readiness...))

	r.Mount("/", studio.Router(studio.RouterOptions{
		Handlers:      studio.NewHandlers(generator, ledger, provider, log),
		Webhook:       webhook,
		GenerateLimit: generateLimit,
	}))

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("http server starting", slog.String("addr", httpCfg.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("http server stopped")
		}),
	)

	return srv.Run(ctx, r)
}

// limiterKey buckets requests by the verified user email, falling back to the
// client address for unauthenticated traffic.
func limiterKey(r *http.Request) string {
	if email := r.Header.Get("X-User-Email"); email != "" {
		return email
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseProductGrants(raw string) (map[string]billing.ProductGrant, error) {
	if raw == "" {
		return nil, nil
	}
	products := make(map[string]billing.ProductGrant)
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, err
	}
	return products, nil
}
