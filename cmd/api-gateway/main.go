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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lessonforge/planner-api/api/swagger"
	"github.com/lessonforge/planner-api/internal/handler"
	"github.com/lessonforge/planner-api/internal/middleware"
	"github.com/lessonforge/planner-api/internal/repository"
	"github.com/lessonforge/planner-api/internal/service"
	"github.com/lessonforge/planner-api/pkg/cache"
	"github.com/lessonforge/planner-api/pkg/config"
	"github.com/lessonforge/planner-api/pkg/database"
	"github.com/lessonforge/planner-api/pkg/jobs"
	"github.com/lessonforge/planner-api/pkg/logger"
	corsmiddleware "github.com/lessonforge/planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lessonforge/planner-api/pkg/middleware/requestid"
	"github.com/lessonforge/planner-api/pkg/storage"
	"github.com/lessonforge/planner-api/pkg/vector"
)

// @title Lesson Planner API
// @version 1.0.0
// @description Lesson planning backend: calendars, class generation, holiday rescheduling and document search.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, agenda cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	levelRepo := repository.NewLevelRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	slotRepo := repository.NewScheduleSlotRepository(db)
	blackoutRepo := repository.NewBlackoutRepository(db)
	classRepo := repository.NewClassRepository(db)
	yearRepo := repository.NewAcademicYearRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	suggestionRepo := repository.NewSuggestionRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	levelSvc := service.NewLevelService(levelRepo, groupRepo, slotRepo, yearRepo, validate, logr)
	generatorSvc := service.NewGeneratorService(levelRepo, groupRepo, slotRepo, blackoutRepo, classRepo, db, validate, logr)
	classSvc := service.NewClassService(classRepo, levelRepo, cacheRepo, service.ClassServiceConfig{
		CacheEnabled: cfg.Agenda.CacheEnabled && redisClient != nil,
		CacheTTL:     cfg.Agenda.CacheTTL,
	}, validate, logr)
	holidaySvc := service.NewHolidayService(holidayRepo, classRepo, suggestionRepo, yearRepo, db, validate, logr)
	calendarSvc := service.NewCalendarService(blackoutRepo, yearRepo, validate, logr)

	// The ingest routes stay registered even when the feature is off; the
	// service then answers with a 503 vector-store error.
	var ingestSvc *service.IngestService
	ingestCfg := service.IngestConfig{ChunkSize: cfg.Ingest.ChunkSize, ChunkOverlap: cfg.Ingest.ChunkOverlap}
	if cfg.Ingest.Enabled {
		store, err := vector.NewStore(cfg.Ingest.EmbeddingDim)
		if err != nil {
			logr.Sugar().Fatalw("failed to build vector store", "error", err)
		}
		embedder := vector.NewHashingEmbedder(cfg.Ingest.EmbeddingDim)
		if cfg.Ingest.UploadDir != "" {
			archive, err := storage.NewLocalStorage(cfg.Ingest.UploadDir)
			if err != nil {
				logr.Sugar().Warnw("upload archive unavailable", "error", err)
				ingestSvc = service.NewIngestService(embedder, store, nil, ingestCfg, validate, logr)
			} else {
				ingestSvc = service.NewIngestService(embedder, store, archive, ingestCfg, validate, logr)
			}
		} else {
			ingestSvc = service.NewIngestService(embedder, store, nil, ingestCfg, validate, logr)
		}
	} else {
		ingestSvc = service.NewIngestService(nil, nil, nil, ingestCfg, validate, logr)
	}

	var reportSvc *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

		var queueRef queueProxy
		reportSvc = service.NewReportService(reportRepo, classRepo, levelRepo, &queueRef, reportStore, signer, validate, logr)
		reportQueue = jobs.NewQueue("agenda-reports", func(ctx context.Context, job jobs.Job) error {
			err := reportSvc.Process(ctx, job)
			if err != nil {
				metricsSvc.RecordReportJob("failed")
			} else {
				metricsSvc.RecordReportJob("done")
			}
			return err
		}, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		queueRef.queue = reportQueue
		reportQueue.Start(context.Background())
		defer reportQueue.Stop()
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	levelHandler := handler.NewLevelHandler(levelSvc, generatorSvc, classSvc, metricsSvc)
	classHandler := handler.NewClassHandler(classSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	holidayHandler := handler.NewHolidayHandler(holidaySvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := middleware.JWT(authSvc)

	r.POST("/auth/login", authHandler.Login)

	r.GET("/levels/:id", levelHandler.Get)
	r.POST("/levels", auth, levelHandler.Create)
	r.POST("/levels/:id/groups", auth, levelHandler.CreateGroup)
	r.POST("/levels/:id/generate-classes", auth, levelHandler.GenerateClasses)

	r.GET("/classes/:id", classHandler.Get)
	r.PATCH("/classes/:id", auth, classHandler.Update)
	r.GET("/agenda", classHandler.Agenda)

	r.GET("/no-class-days", calendarHandler.ListNoClassDays)
	r.POST("/no-class-days", auth, calendarHandler.CreateNoClassDay)
	r.DELETE("/no-class-days/:id", auth, calendarHandler.DeleteNoClassDay)

	r.GET("/academic-years", calendarHandler.ListAcademicYears)
	r.POST("/academic-years", auth, calendarHandler.CreateAcademicYear)

	r.GET("/holidays", holidayHandler.List)
	r.POST("/holidays", auth, holidayHandler.Create)
	r.PUT("/holidays/:id", auth, holidayHandler.Update)
	r.DELETE("/holidays/:id", auth, holidayHandler.Delete)

	ingestHandler := handler.NewIngestHandler(ingestSvc)
	r.POST("/ingest", auth, ingestHandler.Ingest)
	r.POST("/query", ingestHandler.Query)

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		r.POST("/reports/agenda", auth, reportHandler.Create)
		r.GET("/reports/download", reportHandler.Download)
		r.GET("/reports/:id", reportHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// queueProxy defers binding the queue so the report service and its handler
// can reference each other during wiring.
type queueProxy struct {
	queue *jobs.Queue
}

func (p *queueProxy) Enqueue(job jobs.Job) error {
	if p.queue == nil {
		return fmt.Errorf("report queue not initialised")
	}
	return p.queue.Enqueue(job)
}
