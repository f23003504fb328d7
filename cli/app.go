package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pairpilot/appctx"
	"pairpilot/config"
	"pairpilot/embedding"
	"pairpilot/model"
	"pairpilot/orchestrator"
	"pairpilot/prompt"
	"pairpilot/provider"
	"pairpilot/reindex"
	"pairpilot/retrieval"
	"pairpilot/storage"
	"pairpilot/tools"
	"pairpilot/workspace"
)

// app is the explicit runtime context a command works with. It replaces any
// process-wide client or store handle.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	db        *storage.DB
	projects  *storage.ProjectStore
	insights  *storage.InsightStore
	sessions  *storage.SessionStorage
	indexer   *workspace.Indexer
	scheduler *reindex.Scheduler

	// provider is nil when the completion service is not configured.
	provider    model.Provider
	providerErr error
}

type appOptions struct {
	completion bool
}

func newApp(cfg *config.Config, logger *zap.Logger, opts appOptions) (*app, error) {
	db, err := storage.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}

	sessions, err := storage.NewSessionStorage(cfg.DataDir())
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		projects: storage.NewProjectStore(db),
		sessions: sessions,
	}

	engine, err := embedding.NewEngine(embedding.Config{
		Provider: cfg.Embedding.Provider,
		BaseURL:  cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.APIKey(embeddingKeyID(cfg.Embedding.Provider)),
		TaskType: cfg.Embedding.TaskType,
	}, logger)
	if err != nil {
		// Memory degrades to empty recall and failed saves.
		logger.Warn("embedding engine unavailable; long-term memory disabled", zap.Error(err))
		engine = nil
	}
	a.insights = storage.NewInsightStore(db, engine, logger)

	a.indexer = workspace.NewIndexer(a.projects, cfg.Index.MaxScanDepth, logger)
	a.scheduler = reindex.NewScheduler(a.indexer, cfg.ReindexDelay(), logger)

	if opts.completion {
		a.provider, a.providerErr = provider.NewFromConfig(cfg, logger)
	}
	return a, nil
}

func embeddingKeyID(p string) string {
	if p == "" {
		return "openai"
	}
	return p
}

// orchestrator wires a turn runner from the app's components.
func (a *app) orchestrator() *orchestrator.Orchestrator {
	registry := tools.NewDefaultRegistry(a.insights, tools.Limits{
		MaxReadChars:     a.cfg.Tools.MaxReadChars,
		MaxTreeChars:     a.cfg.Tools.MaxTreeChars,
		DefaultTreeDepth: a.cfg.Tools.DefaultTreeDepth,
	})

	cfg := orchestrator.Config{
		Loader:    appctx.NewLoader(a.projects, a.logger),
		Retriever: retrieval.NewEngine(a.insights, a.cfg.Retrieval.MemoryLimit, a.logger),
		Assembler: prompt.NewAssembler(a.cfg.SystemPromptExtra),
		Tools:     tools.NewDispatcher(registry, config.GetHomeDir(), a.logger),
		Reindexer: a.scheduler,
		Logger:    a.logger,
	}
	if a.provider != nil {
		cfg.Provider = a.provider
	}
	return orchestrator.New(cfg)
}

// close flushes pending reindexes, then releases the database.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.scheduler.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("reindex shutdown: %w", err))
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
