package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/clinic-assistant/pkg/validator"

	"github.com/johnquangdev/clinic-assistant/internal/adapter/handler"
	"github.com/johnquangdev/clinic-assistant/internal/adapter/repository"
	"github.com/johnquangdev/clinic-assistant/internal/infrastructure/cache"
	"github.com/johnquangdev/clinic-assistant/internal/infrastructure/database"
	"github.com/johnquangdev/clinic-assistant/internal/infrastructure/storage"
	"github.com/johnquangdev/clinic-assistant/internal/usecase/comparison"
	"github.com/johnquangdev/clinic-assistant/internal/usecase/examination"
	"github.com/johnquangdev/clinic-assistant/internal/usecase/knowledge"
	pkgai "github.com/johnquangdev/clinic-assistant/pkg/ai"
	"github.com/johnquangdev/clinic-assistant/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run schema migration: %v", err)
		}
	}

	// Initialize Redis cache; fall back to in-memory for local development
	log.Println("📦 Connecting to Redis...")
	var cacheStore cache.Store
	redisStore, err := cache.NewRedisStore(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v), using in-memory cache", err)
		cacheStore = cache.NewMemoryStore()
	} else {
		defer redisStore.Close()
		cacheStore = redisStore
	}

	// Initialize object storage for recordings
	log.Println("📦 Connecting to MinIO...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	patientRepo := repository.NewPatientRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	comparisonRepo := repository.NewComparisonRepository(db)
	jobRepo := repository.NewAnalysisJobRepository(db)

	// Initialize AI clients
	log.Println("🤖 Initializing AI components...")
	asmClient := pkgai.NewAssemblyAIClient(&cfg.Assembly)
	groqClient := pkgai.NewGroqClient(&cfg.Groq)
	embedder := pkgai.NewOpenAIEmbedder(&cfg.OpenAI)

	// Knowledge retriever over the protocol document corpus
	retriever := knowledge.NewRetriever(embedder, &cfg.Knowledge, logger)

	// Examination agents and pipeline
	attributor := examination.NewAttributor(groqClient, logger)
	normalizer := examination.NewNormalizer(groqClient, cfg.Pipeline.NormalizeDelay, logger)
	pipeline := examination.NewPipeline(groqClient, retriever, logger)
	comparisonSvc := comparison.NewService(embedder, logger)

	// Examination service
	log.Println("🩺 Initializing examination service...")
	examService := examination.NewService(
		sessionRepo,
		transcriptRepo,
		noteRepo,
		comparisonRepo,
		jobRepo,
		patientRepo,
		bookingRepo,
		asmClient,
		attributor,
		normalizer,
		pipeline,
		comparisonSvc,
		minioClient,
		cacheStore,
		cfg,
		logger,
	)

	// Warm the knowledge index before taking traffic; an empty corpus is
	// tolerated and only disables citations
	if err := retriever.Initialize(context.Background()); err != nil {
		log.Printf("⚠️  Knowledge index build failed: %v", err)
	}

	// Start the analysis worker pool
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if err := examService.StartWorkerPool(workerCtx, cfg.Pipeline.WorkerCount); err != nil {
		log.Fatalf("Failed to start worker pool: %v", err)
	}

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	patientHandler := handler.NewPatient(patientRepo, logger)
	bookingHandler := handler.NewBooking(bookingRepo, patientRepo, logger)
	examinationHandler := handler.NewExamination(examService, logger)
	storageHandler := handler.NewStorage(minioClient, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, patientHandler, bookingHandler, examinationHandler, storageHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if err := examService.StopWorkerPool(); err != nil {
		log.Printf("⚠️  Worker pool shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
