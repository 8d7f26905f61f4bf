package main

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quoteforge/quoteforge/modules/billing"
	"github.com/quoteforge/quoteforge/pkg/archive"
	"github.com/quoteforge/quoteforge/pkg/config"
	"github.com/quoteforge/quoteforge/pkg/email"
	"github.com/quoteforge/quoteforge/pkg/httpserver"
	"github.com/quoteforge/quoteforge/pkg/logger"
	"github.com/quoteforge/quoteforge/pkg/pg"
	"github.com/quoteforge/quoteforge/pkg/quotepdf"
	"github.com/quoteforge/quoteforge/pkg/ratelimiter"
	"github.com/quoteforge/quoteforge/pkg/redis"
	"github.com/quoteforge/quoteforge/pkg/subscription"
	"github.com/quoteforge/quoteforge/pkg/tier"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"quoteforge"`

	CompanyName  string `env:"COMPANY_NAME" envDefault:"QuoteForge"`
	QuoteBaseURL string `env:"QUOTE_BASE_URL" envDefault:"http://localhost:8080/q"`
	PlansFile    string `env:"PLANS_FILE"` // optional YAML catalog override

	AdminToken string `env:"ADMIN_TOKEN,required"`

	EmailDevDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
	ArchiveDir  string `env:"ARCHIVE_LOCAL_DIR" envDefault:"./tmp/quotes"`

	RateLimitCapacity int           `env:"RATE_LIMIT_CAPACITY" envDefault:"60"`
	RateLimitRefill   int           `env:"RATE_LIMIT_REFILL" envDefault:"60"`
	RateLimitInterval time.Duration `env:"RATE_LIMIT_INTERVAL" envDefault:"1m"`

	HTTP    httpserver.Config
	PG      pg.Config
	Redis   redis.Config
	Paddle  subscription.PaddleConfig
	Email   email.Config
	Archive archive.S3Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Env, cfg.ServiceName))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	isProd := cfg.Env == "production" || cfg.Env == "staging"

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	// Tier catalog: built-in contractual table unless a YAML override
	// file is configured.
	src := tier.DefaultSource()
	if cfg.PlansFile != "" {
		src = tier.NewYAMLFileSource(cfg.PlansFile)
	}
	catalog, err := tier.NewCatalog(ctx, src)
	if err != nil {
		return err
	}

	provider, err := subscription.NewPaddleProvider(cfg.Paddle)
	if err != nil {
		return err
	}

	store := subscription.NewPostgresStore(pool)
	subs := subscription.NewService(catalog, store, store, provider)

	var sender email.EmailSender
	if isProd {
		sender, err = email.NewPostmarkClient(cfg.Email)
		if err != nil {
			return err
		}
	} else {
		sender = email.NewDevSender(cfg.EmailDevDir)
	}
	notifier := billing.NewNotifier(sender, log)

	var storage archive.Storage
	if cfg.Archive.Bucket != "" {
		storage, err = archive.NewS3Storage(ctx, cfg.Archive,
			archive.WithUploadTimeout(30*time.Second))
		if err != nil {
			return err
		}
	} else {
		storage = archive.NewLocalStorage(cfg.ArchiveDir, cfg.QuoteBaseURL+"/files")
	}

	renderer := quotepdf.NewRenderer(quotepdf.Company{
		Name:  cfg.CompanyName,
		Email: cfg.Email.SupportEmail,
	})
	quotes := billing.NewQuoteGenerator(subs, renderer, storage, cfg.QuoteBaseURL)

	limiter, err := ratelimiter.NewBucket(
		ratelimiter.NewRedisStore(redisClient),
		ratelimiter.Config{
			Capacity:       cfg.RateLimitCapacity,
			RefillRate:     cfg.RateLimitRefill,
			RefillInterval: cfg.RateLimitInterval,
		},
	)
	if err != nil {
		return err
	}

	handler := billing.NewHandler(subs, catalog, quotes, notifier, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	r.Mount("/billing", billing.Router(billing.RouterOptions{
		Handler:         handler,
		PublicLimiter:   limiter,
		AdminMiddleware: adminTokenMiddleware(cfg.AdminToken),
	}))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// adminTokenMiddleware gates /admin routes behind a shared bearer token.
func adminTokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("Authorization")
			want := "Bearer " + token
			if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
