package bootstrap

import (
	"context"
	"sync"

	"kbmetrics/internal/adapters/config"
	mongoclient "kbmetrics/internal/adapters/mongo"
	redisclient "kbmetrics/internal/adapters/redis"
	"kbmetrics/internal/api"
	"kbmetrics/internal/api/health"
	"kbmetrics/internal/cache"
	mongorepo "kbmetrics/internal/repository/mongo"
	"kbmetrics/internal/workers"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

// Container holds all application dependencies and their lifecycle.
// Components are organized in initialization order.
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure
	Mongo *mongoclient.Client
	Redis *redisclient.Client // nil unless the cache backend is redis
	Cache cache.Cache

	Repos       *Repositories
	Application *Application
	Background  *Background

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups the store facades
type Repositories struct {
	Metrics *mongorepo.MetricsRepository
}

// Application groups the HTTP surface
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
}

// Background groups periodic maintenance
type Background struct {
	WorkerScheduler *workers.Scheduler
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in the correct order.
// Panics on any initialization error (fail-fast at startup).
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitApplication()
	c.MustInitBackground()
}

// Start starts the HTTP server and the maintenance workers
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if c.Background.WorkerScheduler != nil {
		if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
			return errors.Wrap(err, "failed to start workers")
		}
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // fatal HTTP error triggers shutdown
		}
	}()

	c.Log.Info("✓ All systems operational")
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")
	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.Background.WorkerScheduler,
		c.Cache,
		c.Mongo,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}
