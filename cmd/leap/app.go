package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/completion"
	"github.com/sandeepkv93/leap/internal/config"
	"github.com/sandeepkv93/leap/internal/generator"
	"github.com/sandeepkv93/leap/internal/outbox"
	"github.com/sandeepkv93/leap/internal/payments"
	"github.com/sandeepkv93/leap/internal/paywall"
	"github.com/sandeepkv93/leap/internal/remote"
	"github.com/sandeepkv93/leap/internal/scheduler"
	"github.com/sandeepkv93/leap/internal/storage"
	"github.com/sandeepkv93/leap/internal/store"
	"github.com/sandeepkv93/leap/internal/update"
	"github.com/sandeepkv93/leap/internal/verify"
)

// app owns every long-lived collaborator. Remote pieces are nil when no
// backend DSN is configured.
type app struct {
	cfg    config.RuntimeConfig
	logger *zap.Logger

	repo          *storage.SQLiteRepository
	store         *store.Store
	outbox        *outbox.Outbox
	remote        *remote.Client
	generator     *generator.Generator
	engine        *scheduler.Engine
	gate          *paywall.Gate
	pipeline      *completion.Pipeline
	payments      *payments.Service
	listener      *remote.Listener
	refresher     *remote.Refresher
	paymentsReady bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newApp(ctx context.Context, cfg config.RuntimeConfig, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	repo, err := storage.OpenSQLite(cfg.StateDBPath)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	a.repo = repo

	var blobs storage.BlobStore = repo
	if cfg.StateFile != "" {
		fileStore, err := storage.NewFileBlobStore(cfg.StateFile)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open state file: %w", err)
		}
		blobs = fileStore
	}

	var syncer store.Syncer
	if cfg.SupabaseDSN != "" {
		client, err := remote.Open(cfg.SupabaseDSN, logger)
		if err != nil {
			logger.Warn("Backend unavailable, running offline", zap.Error(err))
		} else {
			a.remote = client
			a.outbox = outbox.New(repo, client, logger, outbox.Config{})
			syncer = a.outbox
		}
	}

	a.store = store.New(blobs, store.Options{Logger: logger, Syncer: syncer})
	if err := a.store.Hydrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("hydrate state: %w", err)
	}
	if a.outbox != nil {
		st := a.store
		a.outbox.BindRemoteUser(st.RemoteID, func(id string) {
			if err := st.SetRemoteID(context.Background(), id); err != nil {
				logger.Warn("Failed to store remote user id", zap.Error(err))
			}
		})
	}

	var catalog generator.Catalog
	if a.remote != nil {
		catalog = a.remote
	}
	a.generator = generator.New(a.store, catalog, nil, logger, generator.Config{Limit: cfg.CatalogLimit})

	a.engine = scheduler.NewEngine(cfg.SchedulerBuffer)
	a.gate = paywall.NewGate(paywall.Config{Quota: cfg.FreeMovesPerDay, SoftDelay: cfg.SoftPaywallDelay}, a.engine, logger)
	a.pipeline = completion.New(a.store, a.gate, newVerifier(ctx, cfg, logger), logger)

	var provider payments.Provider = payments.Unconfigured{}
	rc, err := payments.NewRevenueCatClient(payments.RevenueCatConfig{
		APIKey:        cfg.RevenueCatAPIKey,
		AppUserID:     cfg.RevenueCatAppUserID,
		EntitlementID: cfg.EntitlementID,
	}, http.DefaultClient, logger)
	switch {
	case err == nil:
		provider = rc
		a.paymentsReady = true
	case errors.Is(err, payments.ErrNotConfigured):
		logger.Info("Payments not configured")
	default:
		logger.Warn("Payments disabled", zap.Error(err))
	}
	a.payments = payments.NewService(provider, payments.NewWatcher(provider, cfg.EntitlementPoll, logger), a.store, logger)

	if a.remote != nil {
		a.refresher = remote.NewRefresher(a.remote, a.store, a.generator, logger)
		a.listener = remote.NewListener(cfg.SupabaseDSN, a.refresher.HandleChange, logger)
	}
	return a, nil
}

func newVerifier(ctx context.Context, cfg config.RuntimeConfig, logger *zap.Logger) verify.Verifier {
	switch cfg.Verifier {
	case config.VerifierGemini:
		v, err := verify.NewGeminiVerifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Warn("Gemini verifier unavailable, boss moves verify offline", zap.Error(err))
			return verify.Disabled{}
		}
		return v
	case config.VerifierOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			logger.Info("No OpenRouter key, boss moves verify offline")
			return verify.Disabled{}
		}
		return verify.NewOpenRouterVerifier(verify.OpenRouterConfig{
			APIKey: cfg.OpenRouterAPIKey,
			Model:  cfg.OpenRouterModel,
		}, http.DefaultClient, logger)
	default:
		return verify.Disabled{}
	}
}

// Start runs the background workers: scheduler, outbox, entitlement poll
// and the realtime listener.
func (a *app) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.store.StreakBroken() {
		a.logger.Debug("Streak lapsed, resets on next completion", zap.Int("streak", a.store.Streaks().Count))
	}

	a.engine.Start()
	if err := a.engine.ScheduleRollover(a.store.Location()); err != nil {
		a.logger.Warn("Failed to schedule rollover", zap.Error(err))
	}
	if a.outbox != nil {
		a.outbox.Start()
	}
	if a.paymentsReady {
		if err := a.payments.Watcher().Start(); err != nil {
			a.logger.Warn("Entitlement watcher not started", zap.Error(err))
		}
	}
	if a.listener != nil {
		a.wg.Add(2)
		go func() {
			defer a.wg.Done()
			a.refresher.RefreshChallenges(runCtx)
		}()
		go func() {
			defer a.wg.Done()
			_ = a.listener.Run(runCtx)
		}()
	}
}

func (a *app) Deps() update.Deps {
	return update.Deps{
		Store:     a.store,
		Generator: a.generator,
		Pipeline:  a.pipeline,
		Gate:      a.gate,
		Scheduler: a.engine,
		Payments:  a.payments,
		Logger:    a.logger,
	}
}

// Close stops workers first, then closes storage.
func (a *app) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	if a.payments != nil {
		if err := a.payments.Watcher().Stop(); err != nil {
			a.logger.Warn("Entitlement watcher stop failed", zap.Error(err))
		}
	}
	if a.engine != nil {
		a.engine.Stop()
	}
	if a.outbox != nil {
		a.outbox.Stop()
	}
	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			a.logger.Warn("Backend close failed", zap.Error(err))
		}
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.logger.Warn("State db close failed", zap.Error(err))
		}
	}
}
