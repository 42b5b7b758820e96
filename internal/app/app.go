package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/config"
	"github.com/MrSnakeDoc/folio/internal/dashboard"
	"github.com/MrSnakeDoc/folio/internal/httpserver"
	"github.com/MrSnakeDoc/folio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/mutation"
	"github.com/MrSnakeDoc/folio/internal/redis"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
	"github.com/MrSnakeDoc/folio/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/folio/internal/store/redis"
	"github.com/MrSnakeDoc/folio/internal/version"
	"github.com/MrSnakeDoc/folio/internal/workspace"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	redisClient  *goredis.Client
	registry     *workspace.Registry
	iconReloader *scheduler.IconReloader
	gc           *scheduler.GarbageCollector
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	redisClient, err := connectRedis(context.Background(), cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	// Page cache and revalidation targets
	pages := redisstore.NewStore(redisClient, cfg.PageCacheTTL)
	dispatcher := newDispatcher(cfg, loggerClient, pages)

	// Portfolio API client shared by every session (sessions add their token)
	api := apiclient.New(apiclient.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.APITimeout,
		Logger:  loggerClient,
	})
	loggerClient.Info("portfolio API configured", logger.String("url", cfg.APIURL))

	// One dashboard per signed-in session
	registry := workspace.NewRegistry(func(sess *apiclient.Session) *dashboard.Set {
		orch := mutation.New(dispatcher, mutation.LogNotifier{Logger: loggerClient}, loggerClient)
		return dashboard.NewSet(api.WithTokens(sess), orch, loggerClient)
	})

	// Icon table (built-in, optionally extended from a file)
	var iconReloadTrigger chan struct{}
	if cfg.IconFile != "" {
		loggerClient.Info("icon file configured, initializing icon reloader",
			logger.String("file", cfg.IconFile))
		iconReloadTrigger = make(chan struct{}, 1)
	} else {
		loggerClient.Info("icon file not configured, using built-in icons")
	}
	iconReloader := scheduler.NewIconReloader(cfg.IconFile, loggerClient, cfg.IconReloadInterval, iconReloadTrigger)

	// Initialize garbage collector
	gc := scheduler.NewGarbageCollector(
		registry,
		pages,
		loggerClient,
		cfg.GCInterval,
		cfg.SessionIdleTTL,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		CORSOrigins:       cfg.CORSOrigins,
		CookieSecure:      cfg.CookieSecure,
		LoginBurst:        cfg.LoginBurst,
		LoginRefillPerMin: cfg.LoginRefillPerMin,
		RedisClient:       redisClient,
		Pages:             pages,
		API:               api,
		Auth:              apiclient.NewAuth(api, cfg.LoginPath),
		Workspaces:        registry,
		Dispatcher:        dispatcher,
		Icons:             iconReloader.Table,
		IconsLastReload:   iconReloader.LastReload,
		IconReloadTrigger: iconReloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		redisClient:  redisClient,
		registry:     registry,
		iconReloader: iconReloader,
		gc:           gc,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Folio v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Folio %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start icon reloader (loads the icon file and starts periodic refresh)
	if err := a.iconReloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start icon reloader: %w", err)
	}
	a.logger.Info("icon reloader started",
		logger.Int("icons", a.iconReloader.Table().Len()),
		logger.Duration("interval", a.cfg.IconReloadInterval))

	// Start garbage collector
	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval),
		logger.Duration("session_idle_ttl", a.cfg.SessionIdleTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.iconReloader.Stop()
		a.gc.Stop()
		return err
	}

	// Stop schedulers
	a.iconReloader.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if n := a.registry.Count(); n > 0 {
		a.logger.Info("dropping open dashboard sessions", logger.Int("sessions", n))
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Folio stopped cleanly")
	return nil
}

// Revalidate dispatches paths to every configured target once, outside the server.
func Revalidate(ctx context.Context, paths []string) (revalidate.Report, error) {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	redisClient, err := connectRedis(ctx, cfg, loggerClient)
	if err != nil {
		return revalidate.Report{}, fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			loggerClient.Warnf("failed to close redis: %v", err)
		}
	}()

	pages := redisstore.NewStore(redisClient, cfg.PageCacheTTL)
	return newDispatcher(cfg, loggerClient, pages).Invalidate(ctx, paths), nil
}

func connectRedis(ctx context.Context, cfg *config.Config, log logger.Logger) (*goredis.Client, error) {
	log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	return redis.New(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
}

// newDispatcher always targets the page cache; the public frontend
// webhook is added only when configured.
func newDispatcher(cfg *config.Config, log logger.Logger, pages *redisstore.Store) *revalidate.Dispatcher {
	targets := []revalidate.Invalidator{redisstore.NewInvalidator(pages)}
	if hook := revalidate.NewWebhook(cfg.PublicRevalidateURL, cfg.PublicRevalidateSecret, cfg.RevalidateTimeout); hook != nil {
		log.Info("public frontend revalidation enabled", logger.String("url", cfg.PublicRevalidateURL))
		targets = append(targets, hook)
	}
	return revalidate.NewDispatcher(log, targets...)
}
