// Package bootstrap wires the adapter together: configuration, logging,
// store, registry, resolver, downstream sink and the transports, then runs
// everything until a shutdown signal arrives.
package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"coap-adapter-go/internal/domain/auth"
	"coap-adapter-go/internal/domain/downstream"
	"coap-adapter-go/internal/domain/pipeline"
	"coap-adapter-go/internal/domain/registry"
	registrystore "coap-adapter-go/internal/domain/registry/store"
	platformconfig "coap-adapter-go/internal/platform/config"
	platformerrors "coap-adapter-go/internal/platform/errors"
	platformlogging "coap-adapter-go/internal/platform/logging"
	platformstorage "coap-adapter-go/internal/platform/storage"
	"coap-adapter-go/internal/transport/dgram"
	httptransport "coap-adapter-go/internal/transport/http"
	httpwebapi "coap-adapter-go/internal/transport/http/webapi"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID      string
	Title   string
	Kind    platformerrors.Kind
	Execute stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger

	db       *gorm.DB
	store    registrystore.Store
	registry *registry.Registry
	resolver *auth.Resolver
	psk      *auth.PSKProvider
	sink     *downstream.BusSink
	pipe     *pipeline.Pipeline
}

// InitGraph returns the ordered initialization steps.
func InitGraph() []initStep {
	return []initStep{
		{ID: "config", Title: "load configuration", Kind: platformerrors.KindConfig, Execute: stepConfig},
		{ID: "logging", Title: "initialize logging", Kind: platformerrors.KindPlatform, Execute: stepLogging},
		{ID: "storage", Title: "open registry store", Kind: platformerrors.KindStorage, Execute: stepStore},
		{ID: "domain", Title: "build domain services", Kind: platformerrors.KindBootstrap, Execute: stepDomain},
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	for _, step := range steps {
		if err := step.Execute(ctx, state); err != nil {
			return platformerrors.Wrap(step.Kind, "bootstrap."+step.ID, step.Title, err)
		}
	}
	return nil
}

func stepConfig(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func stepLogging(_ context.Context, state *appState) error {
	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return err
	}
	state.logger = logger
	if state.configPath != "" {
		logger.InfoTag("Bootstrap", "configuration loaded from %s", state.configPath)
	} else {
		logger.InfoTag("Bootstrap", "running on default configuration")
	}
	return nil
}

func stepStore(_ context.Context, state *appState) error {
	storeCfg := state.config.Registry.Store

	var deps registrystore.Dependencies
	if storeCfg.Driver == registrystore.DriverSQLite {
		db, err := platformstorage.Open(storeCfg.SQLite.DSN)
		if err != nil {
			return err
		}
		state.db = db
		deps.SQLiteDB = db
	}

	st, err := registrystore.New(registrystore.Config{
		Driver: storeCfg.Driver,
		SQLite: &registrystore.SQLiteConfig{DSN: storeCfg.SQLite.DSN},
		Redis: &registrystore.RedisConfig{
			Addr:     storeCfg.Redis.Addr,
			Username: storeCfg.Redis.Username,
			Password: storeCfg.Redis.Password,
			DB:       storeCfg.Redis.DB,
			Prefix:   storeCfg.Redis.Prefix,
		},
	}, deps)
	if err != nil {
		return err
	}
	state.store = st
	state.logger.InfoTag("Bootstrap", "registry store ready (driver=%s)", storeCfg.Driver)
	return nil
}

func stepDomain(_ context.Context, state *appState) error {
	cfg := state.config
	cacheCfg := cfg.Registry.Cache

	state.registry = registry.New(state.store, registry.CacheConfig{
		Tenant:     registry.CacheBounds(cacheCfg.Tenant),
		Device:     registry.CacheBounds(cacheCfg.Device),
		Credential: registry.CacheBounds(cacheCfg.Credential),
	})
	state.resolver = auth.NewResolver(state.registry, cfg.Adapter.Type)
	state.psk = auth.NewPSKProvider(state.registry, state.logger)
	state.sink = downstream.NewBusSink(cfg.Downstream.Topic, cfg.Downstream.CreditWindow, state.logger)
	state.pipe = pipeline.New(state.resolver, state.sink, state.logger, cfg.Adapter.RequestTimeout)
	return nil
}

// Run starts the adapter and blocks until the context is cancelled or a
// termination signal arrives.
func Run(ctx context.Context) error {
	state := &appState{}

	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return err
	}
	logger := state.logger
	defer logger.Close()
	defer state.sink.Close()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := state.store.Close(closeCtx); err != nil {
			logger.WarnTag("Bootstrap", "store did not close cleanly: %v", err)
		}
	}()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)

	if err := startServices(state, group, groupCtx); err != nil {
		return err
	}

	err := group.Wait()
	if err != nil && groupCtx.Err() == nil {
		logger.ErrorTag("Bootstrap", "service failed: %v", err)
		return err
	}
	logger.InfoTag("Bootstrap", "shutdown complete")
	return nil
}

func startServices(state *appState, group *errgroup.Group, ctx context.Context) error {
	cfg := state.config

	if !cfg.Transport.Dgram.Enabled && !cfg.Web.Enabled {
		return platformerrors.New(platformerrors.KindConfig, "bootstrap.services", "no transport enabled")
	}

	if cfg.Transport.Dgram.Enabled {
		server := dgram.NewServer(dgram.ServerConfig{
			IP:              cfg.Transport.Dgram.IP,
			Port:            cfg.Transport.Dgram.Port,
			MaxPacketSize:   cfg.Transport.Dgram.MaxPacketSize,
			InsecureEnabled: cfg.Transport.Dgram.Insecure.Enabled,
			InsecurePort:    cfg.Transport.Dgram.Insecure.Port,
		}, state.psk, state.pipe, state.logger)
		group.Go(func() error { return server.Start(ctx) })
	}

	if cfg.Web.Enabled {
		router := httptransport.Build(httptransport.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Web.IP, cfg.Web.Port),
			LogLevel: cfg.Log.Level,
			Logger:   state.logger,
		})
		service, err := httpwebapi.NewService(state.store, state.logger)
		if err != nil {
			return err
		}
		service.Register(router.API)
		group.Go(func() error { return router.Start(ctx) })
	}

	return nil
}
