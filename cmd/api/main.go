package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	_ "github.com/mentornest/backend/docs"
	"github.com/mentornest/backend/internal/cache"
	"github.com/mentornest/backend/internal/certificate"
	"github.com/mentornest/backend/internal/handlers"
	"github.com/mentornest/backend/internal/payment"
	"github.com/mentornest/backend/internal/repositories"
	"github.com/mentornest/backend/internal/services"
	"github.com/mentornest/backend/internal/storage"
	"github.com/mentornest/backend/internal/tasks"
	"github.com/mentornest/backend/libs/auth/middleware"
	"github.com/mentornest/backend/libs/auth/service"
	"github.com/mentornest/backend/libs/config"
	"github.com/mentornest/backend/libs/logger"
	loggerMiddleware "github.com/mentornest/backend/libs/logger/middleware"
	sharedMiddleware "github.com/mentornest/backend/libs/middlewares"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Request body limits, multipart uploads get the larger one
const (
	maxUploadRequestSize = 25 << 20 // 25MB
	maxJSONRequestSize   = 1 << 20  // 1MB
)

// @title MentorNest API
// @version 1.0
// @description E-learning marketplace: course catalog, enrollment and payment, progress tracking, certificates and role dashboards
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@mentornest.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for the maintenance endpoints called by the scheduler
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting MentorNest API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis, the catalog falls back to MySQL while it is down
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn("Redis is unavailable, course cache and e-mail jobs are degraded", zap.Error(err))
	}

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize JWT token generator and route policy
	tokenGenerator := service.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	enforcer, err := middleware.NewRoleEnforcer()
	if err != nil {
		logger.Logger.Fatal("Failed to initialize role enforcer", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	userTokenRepo := repositories.NewUserTokenRepository(db)
	passwordResetRepo := repositories.NewPasswordResetRepository(db)
	mentorRepo := repositories.NewMentorRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	moduleRepo := repositories.NewModuleRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	certificateRepo := repositories.NewCertificateRepository(db)

	// Initialize infrastructure
	fileStorage := storage.NewLocalStorage(cfg.UploadsDir)
	courseCache := cache.NewCourseCache(rdb, cfg.CacheTTL)
	mailer := tasks.NewEnqueuer(asynqClient, logger.Logger)
	gateway := payment.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL, logger.Logger)
	renderer, err := certificate.NewRenderer()
	if err != nil {
		logger.Logger.Fatal("Failed to load certificate fonts", zap.Error(err))
	}

	// Initialize services
	authService := services.NewAuthService(
		userRepo,
		userTokenRepo,
		passwordResetRepo,
		mentorRepo,
		tokenGenerator,
		mailer,
		logger.Logger,
		cfg.FrontendURL,
		cfg.PasswordResetExpiry,
	)
	courseService := services.NewCourseService(courseRepo, moduleRepo, courseCache, logger.Logger)
	mentorService := services.NewMentorService(mentorRepo, courseRepo, enrollmentRepo, logger.Logger)
	studentService := services.NewStudentService(
		courseRepo,
		moduleRepo,
		enrollmentRepo,
		paymentRepo,
		certificateRepo,
		userRepo,
		renderer,
		fileStorage,
		mailer,
		logger.Logger,
	)
	paymentService := services.NewPaymentService(courseRepo, paymentRepo, gateway, studentService, logger.Logger)
	adminService := services.NewAdminService(
		userRepo,
		userTokenRepo,
		mentorRepo,
		courseRepo,
		moduleRepo,
		enrollmentRepo,
		certificateRepo,
		paymentRepo,
		courseCache,
		fileStorage,
		logger.Logger,
	)

	// Seed the first administrator
	if err := services.SeedAdmin(ctx, userRepo, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password, logger.Logger); err != nil {
		logger.Logger.Error("Failed to seed admin user", zap.Error(err))
	}

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokenGenerator)
	roleMiddleware := middleware.RoleMiddleware(tokenGenerator, enforcer)
	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)
	uploadsHandler := handlers.NewUploadsHandler(fileStorage, logger.Logger)
	authHandler := handlers.NewAuthHandler(
		authService,
		logger.Logger,
		authMiddleware,
		tokenGenerator.AccessTokenExpiry(),
		tokenGenerator.RefreshTokenExpiry(),
	)
	tokenCleaningHandler := handlers.NewTokenCleaningHandler(authService, logger.Logger)
	courseHandler := handlers.NewCourseHandler(courseService, logger.Logger)
	mentorHandler := handlers.NewMentorHandler(mentorService, logger.Logger, roleMiddleware)
	studentHandler := handlers.NewStudentHandler(studentService, logger.Logger, roleMiddleware)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger.Logger, authMiddleware)
	adminHandler := handlers.NewAdminHandler(adminService, logger.Logger, roleMiddleware)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(sharedMiddleware.MetricsMiddleware)
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(maxUploadRequestSize, maxJSONRequestSize))

	// Metrics and swagger documentation
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Uploaded files and certificates
	uploadsHandler.RegisterRoutes(r)

	// Scope router to /api
	r.Route("/api", func(r chi.Router) {
		healthHandler.RegisterRoutes(r)
		authHandler.RegisterRoutes(r)
		courseHandler.RegisterRoutes(r)
		mentorHandler.RegisterRoutes(r)
		studentHandler.RegisterRoutes(r)
		paymentHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r)

		// Maintenance endpoints (API Key protected)
		r.Route("/internal", func(r chi.Router) {
			r.Use(apiKeyMiddleware)
			tokenCleaningHandler.RegisterRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "mentornest_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Migrations live next to the working directory, or one level up when running from cmd
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
