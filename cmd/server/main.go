package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certledger/certledger/internal/ai"
	"github.com/certledger/certledger/internal/audit"
	"github.com/certledger/certledger/internal/career"
	"github.com/certledger/certledger/internal/catalog"
	"github.com/certledger/certledger/internal/credential"
	"github.com/certledger/certledger/internal/platform/cache"
	"github.com/certledger/certledger/internal/platform/config"
	"github.com/certledger/certledger/internal/platform/database"
	"github.com/certledger/certledger/internal/quiz"
	"github.com/certledger/certledger/internal/recommend"
	"github.com/certledger/certledger/internal/roster"
	"github.com/certledger/certledger/internal/skills"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := database.New(ctx, database.Config{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var cacheClient *cache.Cache
	if cfg.Cache.URL != "" {
		cacheClient, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer cacheClient.Close()
	}

	srv, err := buildServer(ctx, cfg, db, cacheClient)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      newMux(srv),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// buildServer wires the domain engines from configuration.
func buildServer(ctx context.Context, cfg *config.Config, db *database.DB, cacheClient *cache.Cache) (*server, error) {
	graph, err := skills.LoadGraph(cfg.Taxonomy.SkillGraphPath)
	if err != nil {
		return nil, fmt.Errorf("load skill graph: %w", err)
	}
	profiles, err := career.LoadProfiles(cfg.Taxonomy.CareerProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("load career profiles: %w", err)
	}
	careerModel := career.NewModel(profiles)

	credStore, err := credential.NewPostgresStore(db.Pool)
	if err != nil {
		return nil, err
	}
	catalogStore, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		return nil, err
	}
	directory, err := roster.NewPostgresDirectory(db.Pool)
	if err != nil {
		return nil, err
	}
	auditLog := audit.NewPostgresLogger(db.Pool)

	if cfg.Roster.WorkbookPath != "" {
		entries, err := roster.ParseWorkbook(cfg.Roster.WorkbookPath)
		if err != nil {
			return nil, fmt.Errorf("import roster: %w", err)
		}
		if err := directory.Import(ctx, entries); err != nil {
			return nil, fmt.Errorf("import roster: %w", err)
		}
	}

	router := buildAIRouter(cfg.AI)

	quizEngine, err := quiz.NewEngine(quiz.EngineConfig{
		Quizzes:     catalogStore,
		Credentials: credStore,
		Generator:   quiz.NewLLMGenerator(router, ""),
		Directory:   directory,
		Events:      auditLog,
	})
	if err != nil {
		return nil, err
	}

	var recCache *recommend.Cache
	if cacheClient != nil {
		recCache = recommend.NewCache(cacheClient.Client, cfg.Recommend.CacheTTL)
	}
	recEngine := recommend.NewEngine(recommend.EngineConfig{
		Credentials: credStore,
		Catalog:     catalogStore,
		Graph:       graph,
		Careers:     careerModel,
		Cache:       recCache,
	})

	return &server{
		quizzes:   quizEngine,
		recommend: recEngine,
		catalog:   catalogStore,
		db:        db,
		cache:     cacheClient,
	}, nil
}

// buildAIRouter registers every configured provider, in preference order,
// and enables per-learner token budgeting when a cap is configured.
func buildAIRouter(cfg config.AIConfig) *ai.Router {
	router := ai.NewRouter()
	if cfg.Google.APIKey != "" {
		router.Register("google", ai.NewGoogleProvider(cfg.Google.APIKey))
	}
	if cfg.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.OpenAI.APIKey))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.DeepSeek.APIKey))
	}
	if cfg.BudgetTokens > 0 {
		budget := ai.NewInMemoryBudget()
		budget.SetDefaultBudget(cfg.BudgetTokens)
		router.SetBudget(budget)
	}
	return router
}

func setupLogging(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
