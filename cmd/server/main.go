package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"depot/internal/auth"
	"depot/internal/config"
	frSvc "depot/internal/domain/services/filerequest"
	"depot/internal/handler"
	"depot/internal/middleware"
	"depot/internal/notify"
	"depot/internal/permissions"
	"depot/internal/repository/postgres"
	postgresDocsys "depot/internal/repository/postgres/docsystem"
	postgresFilerequest "depot/internal/repository/postgres/filerequest"
	"depot/internal/service/directory"
	serviceDocsys "depot/internal/service/docsystem"
	serviceFilerequest "depot/internal/service/filerequest"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.OpenLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Apply database migrations. golang-migrate wants its own URL scheme.
	migrateURL := strings.Replace(cfg.DatabaseURL, "postgres://", "pgx5://", 1)
	if err := postgres.Migrate(migrateURL, logger); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	fileRepo := postgresDocsys.NewFileRepository(repoConfig)
	folderRepo := postgresDocsys.NewFolderRepository(repoConfig)
	requestRepo := postgresFilerequest.NewRequestRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Initialize permission registry
	permRegistry, err := permissions.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize permission registry: %v", err)
	}
	logger.Info("permission registry initialized")

	// Create document services
	fileService := serviceDocsys.NewFileService(fileRepo, folderRepo, logger)
	folderService := serviceDocsys.NewFolderService(folderRepo, fileRepo, txManager, logger)

	// Workflow collaborators share implementations with the document services
	fileManager := serviceDocsys.NewFileManager(fileRepo, folderRepo, logger)
	folderLookup := serviceDocsys.NewFolderLookup(folderRepo, logger)
	approverDirectory := directory.New(userRepo, permRegistry, logger)

	// Notifier: message queue when configured, structured log otherwise
	var notifier frSvc.Notifier
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, logger)
		if err != nil {
			log.Fatalf("Failed to connect notifier: %v", err)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
		logger.Info("amqp notifier connected")
	} else {
		notifier = notify.NewLogNotifier(logger)
		logger.Info("amqp not configured, using log notifier")
	}

	// Create request workflow services
	validator := serviceFilerequest.NewValidationService(fileManager, folderLookup, approverDirectory, requestRepo, logger)
	commandService := serviceFilerequest.NewCommandService(requestRepo, validator, fileManager, notifier, logger)
	queryService := serviceFilerequest.NewQueryService(requestRepo, approverDirectory, logger)

	// Create handlers
	requestHandler := handler.NewRequestHandler(commandService, queryService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)
	folderHandler := handler.NewFolderHandler(folderService, fileService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// File-action request routes
	mux.HandleFunc("POST /api/requests/move", requestHandler.CreateMoveRequest)
	mux.HandleFunc("POST /api/requests/delete", requestHandler.CreateDeleteRequest)
	mux.HandleFunc("GET /api/requests/mine", requestHandler.ListMyRequests)
	mux.HandleFunc("GET /api/requests/pending-approvals", requestHandler.ListPendingApprovals)
	mux.HandleFunc("GET /api/requests/summary", requestHandler.StatusSummary)
	mux.HandleFunc("GET /api/requests/{id}", requestHandler.GetRequest)
	mux.HandleFunc("POST /api/requests/{id}/cancel", requestHandler.CancelRequest)
	mux.HandleFunc("POST /api/requests/{id}/approve", requestHandler.ApproveRequest)
	mux.HandleFunc("POST /api/requests/{id}/reject", requestHandler.RejectRequest)
	mux.HandleFunc("POST /api/requests/bulk/approve", requestHandler.BulkApprove)
	mux.HandleFunc("POST /api/requests/bulk/reject", requestHandler.BulkReject)

	// Approver directory
	mux.HandleFunc("GET /api/approvers", requestHandler.ListApprovers)

	// File routes
	mux.HandleFunc("POST /api/files", fileHandler.CreateFile)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.GetFile)
	mux.HandleFunc("PATCH /api/files/{id}", fileHandler.RenameFile)
	mux.HandleFunc("POST /api/files/{id}/trash", fileHandler.TrashFile)
	mux.HandleFunc("POST /api/files/{id}/restore", fileHandler.RestoreFile)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("GET /api/folders/{id}/files", folderHandler.ListFolderFiles)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS -> Metrics -> Recovery -> Auth -> Routes
	httpHandler = middleware.Auth(jwtVerifier, logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)
	httpHandler = middleware.Metrics()(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
