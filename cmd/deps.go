package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/edchat/internal/chat"
	"github.com/abhisek/edchat/internal/config"
	"github.com/abhisek/edchat/internal/corpus"
	"github.com/abhisek/edchat/internal/llm"
	"github.com/abhisek/edchat/internal/logger"
	"github.com/abhisek/edchat/internal/metrics"
	"github.com/abhisek/edchat/internal/pipeline"
	"github.com/abhisek/edchat/internal/quizgen"
	"github.com/abhisek/edchat/internal/stats"
	"github.com/abhisek/edchat/internal/store"
	"github.com/abhisek/edchat/internal/study"
)

// loadConfig reads the config file and applies --db and --store over it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.DBPath = p
	}
	if b, _ := cmd.Flags().GetString("store"); b != "" {
		cfg.Store.Backend = b
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the database path from config (--db, EDCHAT_DB or
// the file), falling back to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.Store.DBPath != "" {
		return cfg.Store.DBPath, store.EnsureDir(cfg.Store.DBPath)
	}
	return store.DefaultDBPath()
}

// deps holds everything a command may need. Close releases it.
type deps struct {
	cfg     config.Config
	log     *logger.Logger
	store   *store.Store
	kv      store.KV
	metrics *metrics.Metrics
	ledger  *stats.Ledger

	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// openDeps opens the config, logger, SQLite store and key-value backend.
func openDeps(cmd *cobra.Command) (*deps, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, metrics: metrics.New()}

	logPath := cfg.Log.File
	if logPath == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		logPath = filepath.Join(dir, "edchat.log")
	}
	if err := store.EnsureDir(logPath); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode, logPath)
	if err != nil {
		return nil, err
	}
	d.log = log
	d.closers = append(d.closers, log.Sync)

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.store = st
	d.closers = append(d.closers, func() { _ = st.Close() })

	switch cfg.Store.Backend {
	case config.StoreRedis:
		r := cfg.Store.Redis
		rkv, err := store.OpenRedis(ctx, r.Addr, r.Password, r.DB, r.Prefix)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open redis: %w", err)
		}
		d.kv = rkv
		d.closers = append(d.closers, func() { _ = rkv.Close() })
	case config.StoreMemory:
		d.kv = store.NewMemoryKV()
	default:
		d.kv = st.KV()
	}
	log.Debug("store opened", "db", dbPath, "backend", cfg.Store.Backend)

	d.ledger = stats.Open(ctx, d.kv, stats.WithLogger(log), stats.WithMetrics(d.metrics))
	return d, nil
}

// services builds the chat, pipeline and study services on top of d. A
// missing LLM provider is not an error; the chat runs offline and the
// pipeline serves the built-in bank.
func (d *deps) services(ctx context.Context) (*study.Services, error) {
	bank, err := corpus.Default()
	if err != nil {
		return nil, err
	}

	var (
		gen     quizgen.Generator
		backend chat.Backend
	)
	provider, err := llm.NewProviderFromEnv(ctx, d.store.EventRepo(), d.log)
	switch {
	case err == nil:
		gen = quizgen.New(provider, quizgen.DefaultConfig())
		backend = chat.NewLLMBackend(provider)
		d.log.Info("LLM provider ready", "model", provider.ModelID())
	case errors.Is(err, llm.ErrNoCredentials):
		d.log.Info("no LLM credentials, running offline")
	default:
		d.log.Warn("LLM provider not configured", "error", err)
	}

	pipe := pipeline.New(bank, gen,
		pipeline.WithLogger(d.log),
		pipeline.WithMetrics(d.metrics),
	)

	svc := &study.Services{
		Chat:     chat.New(ctx, backend, d.kv, chat.WithLogger(d.log)),
		Pipeline: pipe,
		Ledger:   d.ledger,
		Sessions: d.store.SessionRepo(),
		KV:       d.kv,
		Metrics:  d.metrics,
		Log:      d.log,
		Quiz:     d.cfg.Quiz,
		LLMReady: provider != nil,
	}
	svc.LoadPrefs(ctx)
	return svc, nil
}

// serveMetrics exposes /metrics when configured, until ctx is done.
func (d *deps) serveMetrics(ctx context.Context) {
	addr := d.cfg.Metrics.Addr
	if addr == "" {
		return
	}
	go func() {
		if err := d.metrics.Serve(ctx, addr); err != nil {
			d.log.Warn("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	d.log.Info("serving metrics", "addr", addr)
}

// openStore opens only the SQLite store, for commands that inspect the
// event log.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
