package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"docs-backend/internal/documents"
	"docs-backend/internal/extraction"
	"docs-backend/internal/pipeline"
	"docs-backend/internal/queue"
	"docs-backend/internal/shared/config"
	"docs-backend/internal/shared/server"
	"docs-backend/internal/shared/storage/db"
	"docs-backend/internal/shared/storage/object"
	localstore "docs-backend/internal/shared/storage/object/local"
	s3store "docs-backend/internal/shared/storage/object/s3"
	"docs-backend/internal/uploads"
)

// App holds shared dependencies for the API and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo  documents.DocumentsRepo
	ExtractionRepo extraction.Repo

	DocumentsService  *documents.Service
	ExtractionService *extraction.Service
	Processor         documents.Processor

	DocumentsHandler *documents.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		DocumentsHandler: app.DocumentsHandler,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.LocalStorePublicURL), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.SQSQueueURL)
}

func buildServices(app *App) {
	cfg := app.Config

	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.ExtractionRepo = &extraction.PGRepo{DB: app.DB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.ExtractionRepo = extraction.NewMemoryRepo()
	}

	recognizer := extraction.NewCompositeRecognizer(
		extraction.NewTesseractRecognizer(cfg.OCRLanguages),
		&extraction.PDFRecognizer{},
	)
	app.ExtractionService = &extraction.Service{
		Recognizer: recognizer,
		Repo:       app.ExtractionRepo,
		Store:      app.Store,
		Timeout:    cfg.OCRTimeout,
	}

	app.Processor = pipeline.NewProcessor(app.DocumentsRepo, app.ExtractionService, cfg.OCRMaxAttempts)

	app.DocumentsService = &documents.Service{
		Repo:            app.DocumentsRepo,
		Store:           app.Store,
		Validator:       uploads.NewValidator(cfg.AllowedMimeTypes, cfg.MaxUploadBytes),
		Queue:           app.Queue,
		Processor:       app.Processor,
		StorageProvider: cfg.ObjectStoreType,
	}

	app.DocumentsHandler = documents.NewHandler(app.DocumentsService, app.ExtractionService, cfg.MaxUploadBytes)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
