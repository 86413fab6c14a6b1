package bootstrap

import (
	"strings"

	"kbmetrics/internal/adapters/config"
	errnoop "kbmetrics/internal/adapters/errors/noop"
	"kbmetrics/internal/adapters/errors/sentry"
	mongoclient "kbmetrics/internal/adapters/mongo"
	redisclient "kbmetrics/internal/adapters/redis"
	"kbmetrics/internal/api"
	"kbmetrics/internal/api/health"
	"kbmetrics/internal/cache"
	"kbmetrics/internal/metrics"
	mongorepo "kbmetrics/internal/repository/mongo"
	"kbmetrics/internal/workers"
	"kbmetrics/internal/workers/maintenance"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

// Cache backends accepted by CACHE_BACKEND
const (
	cacheRedis  = "redis"
	cacheMemory = "memory"
	cacheNone   = "none"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

// ========================================
// Phase 2: Infrastructure
// ========================================

// MustInitInfrastructure connects to MongoDB and builds the result cache
func (c *Container) MustInitInfrastructure() {
	var err error

	c.Log.Infow("Connecting to MongoDB...", "databases", c.Config.Mongo.Databases)
	c.Mongo, err = mongoclient.NewClient(c.Context, c.Config.Mongo)
	if err != nil {
		c.Log.Fatalf("failed to connect mongo: %v", err)
	}
	c.Log.Info("✓ MongoDB connected")

	if strings.EqualFold(c.Config.Cache.Backend, cacheRedis) {
		c.Log.Info("Connecting to Redis...")
		c.Redis, err = redisclient.NewClient(c.Context, c.Config.Redis)
		if err != nil {
			c.Log.Fatalf("failed to connect redis: %v", err)
		}
		c.Log.Info("✓ Redis connected")
	}

	c.Cache, err = provideCache(c.Config.Cache, c.Redis)
	if err != nil {
		c.Log.Fatalf("failed to build cache: %v", err)
	}
	c.Log.Infow("✓ Result cache ready", "backend", c.Config.Cache.Backend)

	metrics.Init()
}

// ========================================
// Phase 3: Repositories
// ========================================

// MustInitRepositories builds the metrics repository and exports its
// collection sizes to Prometheus
func (c *Container) MustInitRepositories() {
	c.Repos.Metrics = mongorepo.NewMetricsRepository(c.Mongo,
		mongorepo.WithCache(c.Cache),
		mongorepo.WithLogger(c.Log),
		mongorepo.WithTracker(c.ErrorTracker),
	)

	metrics.RegisterCustomCollector(metrics.NewCustomCollector(c.Log, c.Repos.Metrics))

	c.Log.Info("✓ Repositories initialized")
}

// ========================================
// Phase 4: Application
// ========================================

// MustInitApplication builds the health handler and HTTP server
func (c *Container) MustInitApplication() {
	checkers := map[string]health.Checker{"mongo": c.Mongo}
	if c.Redis != nil {
		checkers["redis"] = c.Redis
	}

	c.Application.HealthHandler = health.New(c.Log, checkers, c.Config.App.Name, c.Config.App.Version)
	c.Application.HTTPServer = api.NewServer(api.ServerConfig{
		Port:        c.Config.HTTP.Port,
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
	}, c.Application.HealthHandler, c.Log)
}

// ========================================
// Phase 5: Background
// ========================================

// MustInitBackground registers the maintenance workers
func (c *Container) MustInitBackground() {
	c.Background.WorkerScheduler = provideScheduler(c.Config.Workers, c.Repos.Metrics, c.Log)
}

// ========================================
// Providers
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

// provideCache selects the result cache backend. A redis backend needs a
// connected client.
func provideCache(cfg config.CacheConfig, rdb *redisclient.Client) (cache.Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case cacheRedis:
		if rdb == nil {
			return nil, errors.Wrap(errors.ErrConfiguration, "redis cache backend without a redis client")
		}
		return cache.NewRedis(rdb.Client(), cfg.KeyPrefix), nil
	case cacheMemory:
		return cache.NewMemory(), nil
	case cacheNone, "":
		return cache.Nop{}, nil
	default:
		return nil, errors.Wrapf(errors.ErrConfiguration, "unknown cache backend %q", cfg.Backend)
	}
}

// provideScheduler returns nil when maintenance is switched off
func provideScheduler(cfg config.WorkersConfig, store maintenance.Store, log *logger.Logger) *workers.Scheduler {
	if !cfg.Enabled {
		log.Info("Maintenance workers disabled")
		return nil
	}

	scheduler := workers.NewScheduler(log)
	scheduler.RegisterWorker(maintenance.NewNarrativeBackfill(store, cfg.NarrativeBackfillEvery, cfg.NarrativeBackfill, log))
	scheduler.RegisterWorker(maintenance.NewIndexes(store, cfg.EnsureIndexesEvery, cfg.EnsureIndexes, log))
	return scheduler
}

// closer is implemented by caches holding resources
type closer interface {
	Close()
}

// closeCache releases in-process cache memory
func closeCache(c cache.Cache) {
	if cl, ok := c.(closer); ok {
		cl.Close()
	}
}
