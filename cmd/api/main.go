package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openheritage/heritage-backend/internal/config"
	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/internal/handler"
	"github.com/openheritage/heritage-backend/internal/middleware"
	"github.com/openheritage/heritage-backend/internal/repository"
	"github.com/openheritage/heritage-backend/internal/routes"
	"github.com/openheritage/heritage-backend/internal/service"
	"github.com/openheritage/heritage-backend/pkg/cache"
	"github.com/openheritage/heritage-backend/pkg/elasticsearch"
	"github.com/openheritage/heritage-backend/pkg/jwt"
	pkglogger "github.com/openheritage/heritage-backend/pkg/logger"
	"github.com/openheritage/heritage-backend/pkg/mailer"
	pkgredis "github.com/openheritage/heritage-backend/pkg/redis"
	"github.com/openheritage/heritage-backend/pkg/storage"
)

func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)

	cfg, err := config.Load()
	if err != nil {
		pkglogger.Error("config load failed: %v", err)
		os.Exit(1)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		pkglogger.Error("database connection failed: %v", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Submission{},
		&domain.ContentItem{},
		&domain.AmendmentRequest{},
		&domain.FilePurgeItem{},
		&domain.Collaboration{},
	); err != nil {
		pkglogger.Error("migration failed: %v", err)
		os.Exit(1)
	}

	// Optional infrastructure: each degrades to nil when not configured
	cacheSvc := initCache(cfg)
	searchSvc := initSearch(cfg)
	s3Client := initStorage(cfg)

	mailSvc := mailer.NewService(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	contentRepo := repository.NewContentRepository(db)
	amendmentRepo := repository.NewAmendmentRepository(db)
	purgeRepo := repository.NewPurgeRepository(db)
	collabRepo := repository.NewCollaborationRepository(db)

	// Services
	var fileStorage service.FileStorage
	var uploader handler.FileUploader
	if s3Client != nil {
		fileStorage = s3Client
		uploader = s3Client
	}

	authSvc := service.NewAuthService(userRepo, jwtManager)
	contentSvc := service.NewContentService(contentRepo, cacheSvc)
	submissionSvc := service.NewSubmissionService(submissionRepo, contentRepo, userRepo, purgeRepo, cacheSvc, fileStorage, mailSvc, searchSvc)
	amendmentSvc := service.NewAmendmentService(amendmentRepo, contentRepo, submissionRepo, userRepo, purgeRepo, cacheSvc, fileStorage, mailSvc, searchSvc)
	versionSvc := service.NewVersionService(amendmentRepo, contentRepo, submissionRepo, cacheSvc)
	collabSvc := service.NewCollaborationService(collabRepo, userRepo)

	cleanupSvc := service.NewCleanupService(purgeRepo, fileStorage, cfg.Cleanup.Schedule, cfg.Cleanup.MaxAttempts)
	if cfg.Cleanup.Enabled {
		if err := cleanupSvc.Start(); err != nil {
			pkglogger.Error("cleanup scheduler failed to start: %v", err)
			os.Exit(1)
		}
	}

	if searchSvc.IsAvailable() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := searchSvc.EnsureIndex(ctx); err != nil {
			pkglogger.Warn("search index setup failed: %v", err)
		}
		cancel()
	}

	// HTTP
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(r, routes.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Content:    handler.NewContentHandler(contentSvc, searchSvc),
		Submission: handler.NewSubmissionHandler(submissionSvc, uploader),
		Amendment:  handler.NewAmendmentHandler(amendmentSvc, versionSvc, uploader),
		Admin:      handler.NewAdminHandler(submissionSvc, submissionRepo, amendmentRepo, cacheSvc),
		Reference:  handler.NewReferenceHandler(),
		Upload:     handler.NewUploadHandler(uploader, fileStorage),
		Collab:     handler.NewCollaborationHandler(collabSvc),
		JWT:        jwtManager,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		pkglogger.Info("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			pkglogger.Error("server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	pkglogger.Info("shutting down")
	if cfg.Cleanup.Enabled {
		cleanupSvc.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		pkglogger.Error("forced shutdown: %v", err)
	}
	pkglogger.Info("server stopped")
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.App.Env == "local" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initCache(cfg *config.Config) cache.Service {
	if !cfg.Redis.Enabled {
		pkglogger.Info("redis disabled, caching off")
		return cache.NewService(nil)
	}

	client, err := pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		pkglogger.Warn("redis unavailable, caching off: %v", err)
		return cache.NewService(nil)
	}
	return cache.NewService(client)
}

func initSearch(cfg *config.Config) *service.SearchService {
	if !cfg.Elasticsearch.Enabled {
		pkglogger.Info("elasticsearch disabled, search off")
		return service.NewSearchService(nil, cfg.Elasticsearch.Index)
	}

	client, err := elasticsearch.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
	if err != nil {
		pkglogger.Warn("elasticsearch unavailable, search off: %v", err)
		return service.NewSearchService(nil, cfg.Elasticsearch.Index)
	}
	return service.NewSearchService(client, cfg.Elasticsearch.Index)
}

func initStorage(cfg *config.Config) *storage.S3Client {
	if !cfg.Storage.Enabled {
		pkglogger.Info("object storage disabled, uploads off")
		return nil
	}

	client, err := storage.NewS3Client(storage.S3Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		CDNURL:          cfg.Storage.CDNURL,
		BasePath:        cfg.Storage.BasePath,
		ForcePathStyle:  cfg.Storage.ForcePathStyle,
	})
	if err != nil {
		pkglogger.Warn("object storage unavailable, uploads off: %v", err)
		return nil
	}
	return client
}
