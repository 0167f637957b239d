package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "datamind-backend/internal/auth"
	"datamind-backend/internal/export"
	"datamind-backend/internal/extraction"
	"datamind-backend/internal/history"
	"datamind-backend/internal/llm"
	"datamind-backend/internal/llm/gemini"
	"datamind-backend/internal/shared/config"
	"datamind-backend/internal/shared/firebase"
	"datamind-backend/internal/shared/server"
	"datamind-backend/internal/shared/server/middleware"
	"datamind-backend/internal/shared/storage/db"
	"datamind-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Firebase          *firebase.Clients
	LLM               llm.Client
	HistoryRepo       history.Repo
	HistoryService    *history.Service
	ExtractionService *extraction.Service
	ExtractionHandler *extraction.Handler
	HistoryHandler    *history.Handler
	ExportHandler     *export.Handler
	GoogleAuth        *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	fb, err := buildFirebase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg, fb)
	if err != nil {
		return nil, err
	}

	repo, err := buildHistoryRepo(cfg, sqlDB, fb)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	historySvc := history.NewService(repo)
	extractionSvc := &extraction.Service{LLM: llmClient, Recorder: historySvc}

	app := &App{
		Config:            cfg,
		DB:                sqlDB,
		Firebase:          fb,
		LLM:               llmClient,
		HistoryRepo:       repo,
		HistoryService:    historySvc,
		ExtractionService: extractionSvc,
		ExtractionHandler: extraction.NewHandler(extractionSvc),
		HistoryHandler:    history.NewHandler(historySvc),
		ExportHandler:     export.NewHandler(historySvc),
		GoogleAuth: googleauth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
		),
	}

	var verifier middleware.FirebaseVerifier
	if fb != nil && fb.Auth != nil {
		verifier = fb.Auth
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		FirebaseAuth:      verifier,
		ExtractionHandler: app.ExtractionHandler,
		HistoryHandler:    app.HistoryHandler,
		ExportHandler:     app.ExportHandler,
		GoogleAuth:        app.GoogleAuth,
	})

	return app, nil
}

// Close releases held connections.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Firebase != nil {
		_ = a.Firebase.Close()
	}
}

func buildFirebase(ctx context.Context, cfg config.Config) (*firebase.Clients, error) {
	if strings.TrimSpace(cfg.FirebaseCredentials) == "" {
		return nil, nil
	}
	fb, err := firebase.New(ctx, cfg.FirebaseCredentials, cfg.FirebaseProjectID)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.firebase_unavailable", map[string]any{"error": err.Error()})
			return nil, nil
		}
		return nil, fmt.Errorf("firebase init: %w", err)
	}
	return fb, nil
}

func buildDB(ctx context.Context, cfg config.Config, fb *firebase.Clients) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	// Firestore takes precedence when both stores are configured and
	// the store type is left on auto.
	if cfg.HistoryStore == config.StoreAuto && fb != nil && fb.Firestore != nil {
		return nil, nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_unavailable", map[string]any{"error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.migrations_failed", map[string]any{"error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildHistoryRepo(cfg config.Config, sqlDB *sql.DB, fb *firebase.Clients) (history.Repo, error) {
	switch cfg.HistoryStore {
	case config.StoreFirestore:
		if fb == nil || fb.Firestore == nil {
			return nil, fmt.Errorf("HISTORY_STORE=firestore requires FIREBASE_CREDENTIALS_FILE")
		}
		return &history.FirestoreRepo{Client: fb.Firestore}, nil
	case config.StorePostgres:
		if sqlDB == nil {
			return nil, fmt.Errorf("HISTORY_STORE=postgres requires DATABASE_URL")
		}
		return &history.PGRepo{DB: sqlDB}, nil
	case config.StoreMemory:
		return history.NewMemoryRepo(), nil
	default:
		if fb != nil && fb.Firestore != nil {
			return &history.FirestoreRepo{Client: fb.Firestore}, nil
		}
		if sqlDB != nil {
			return &history.PGRepo{DB: sqlDB}, nil
		}
		telemetry.Info("bootstrap.history_store", map[string]any{"store": "memory"})
		return history.NewMemoryRepo(), nil
	}
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"hint": "set GEMINI_API_KEY"})
		return llm.Unconfigured{}, nil
	}
	return gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
