package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/madrasah-admin-api/api/swagger"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/handler"
	"github.com/noah-isme/madrasah-admin-api/internal/repository"
	"github.com/noah-isme/madrasah-admin-api/internal/router"
	"github.com/noah-isme/madrasah-admin-api/internal/service"
	"github.com/noah-isme/madrasah-admin-api/pkg/cache"
	"github.com/noah-isme/madrasah-admin-api/pkg/config"
	"github.com/noah-isme/madrasah-admin-api/pkg/database"
	"github.com/noah-isme/madrasah-admin-api/pkg/export"
	"github.com/noah-isme/madrasah-admin-api/pkg/jobs"
	"github.com/noah-isme/madrasah-admin-api/pkg/logger"
	"github.com/noah-isme/madrasah-admin-api/pkg/storage"
)

const institutionName = "Madrasah Administration"

// @title Madrasah Admin API
// @version 1.0.0
// @description Back office API for a madrasah: people, attendance, finance, academics and reporting.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	readiness := map[string]handler.ReadinessCheck{"database": db.PingContext}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		redisRepo := repository.NewCacheRepository(redisClient, "madrasah", logr)
		defer redisRepo.Close() //nolint:errcheck
		readiness["redis"] = redisRepo.Ping
		cacheRepo = redisRepo
	}

	store, err := storage.NewLocalStorage(cfg.Documents.StorageDir, cfg.Documents.PublicBaseURL)
	if err != nil {
		logr.Fatal("failed to prepare document storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	loc := cfg.Locale.Location()
	validate := dto.NewValidator()
	metricsSvc := service.NewMetricsService()

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	invalidator := service.NewInvalidator(cacheSvc, logr)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	salaryRepo := repository.NewSalaryRepository(db)
	examRepo := repository.NewExamRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "madrasah-admin-api",
	}, invalidator)
	userSvc := service.NewUserService(userRepo, validate, logr, cacheSvc, invalidator)
	studentSvc := service.NewStudentService(studentRepo, validate, logr, cacheSvc, invalidator)
	staffSvc := service.NewStaffService(staffRepo, validate, logr, cacheSvc, invalidator)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr, cacheSvc, invalidator)
	expenseSvc := service.NewExpenseService(expenseRepo, validate, logr, cacheSvc, invalidator)
	transactionSvc := service.NewTransactionService(transactionRepo, validate, logr, cacheSvc, invalidator)
	feeSvc := service.NewFeeService(feeRepo, validate, logr, cacheSvc, invalidator, loc)
	salarySvc := service.NewSalaryService(salaryRepo, validate, logr, cacheSvc, invalidator, loc)
	examSvc := service.NewExamService(examRepo, validate, logr, cacheSvc, invalidator)
	timetableSvc := service.NewTimetableService(timetableRepo, validate, logr, cacheSvc, invalidator)
	noticeSvc := service.NewNoticeService(noticeRepo, validate, logr, cacheSvc, invalidator, loc)
	documentSvc := service.NewDocumentService(documentRepo, store, signer, validate, logr, cacheSvc, invalidator, service.DocumentConfig{
		MaxFileSizeBytes: cfg.Documents.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Documents.AllowedMIMEs,
		DownloadBaseURL:  cfg.Documents.PublicBaseURL,
	})

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:     studentRepo,
		Staff:        staffRepo,
		Attendance:   attendanceRepo,
		Fees:         feeRepo,
		Transactions: transactionRepo,
		Expenses:     expenseRepo,
		Salaries:     salaryRepo,
		Notices:      noticeRepo,
		Cache:        cacheSvc,
		Logger:       logr,
		Config: service.DashboardServiceConfig{
			CacheTTL: cfg.Cache.DashboardTTL,
			Location: loc,
		},
	})
	reportSvc := service.NewReportService(service.ReportServiceParams{
		Fees:         feeRepo,
		Transactions: transactionRepo,
		Expenses:     expenseRepo,
		Salaries:     salaryRepo,
		Attendance:   attendanceRepo,
		Exams:        examSvc,
		Cache:        cacheSvc,
		Validator:    validate,
		Logger:       logr,
		Location:     loc,
	})
	exportSvc := service.NewExportService(service.ExportSources{
		Students:     studentRepo,
		Staff:        staffRepo,
		Expenses:     expenseRepo,
		Transactions: transactionRepo,
		Fees:         feeRepo,
		Salaries:     salaryRepo,
	}, metricsSvc, logr, export.NewCSVExporter(), export.NewPDFExporter(institutionName, export.WithUTF8Font(cfg.Locale.PDFFont)), export.NewJSONExporter())

	activitySvc := service.NewActivityService(activityRepo, metricsSvc, logr)
	activityQueue := jobs.NewQueue("activity", activitySvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Activity.Workers,
		BufferSize: cfg.Activity.BufferSize,
		MaxRetries: cfg.Activity.MaxRetries,
		Logger:     logr,
	})
	rootCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	activityQueue.Start(rootCtx)
	activitySvc.UseQueue(activityQueue)

	engine := router.New(router.Deps{
		Logger:   logr,
		Metrics:  metricsSvc,
		Tokens:   authSvc,
		Activity: activitySvc,
		Handlers: router.Handlers{
			Auth:         handler.NewAuthHandler(authSvc),
			Users:        handler.NewUserHandler(userSvc),
			Students:     handler.NewStudentHandler(studentSvc),
			Staff:        handler.NewStaffHandler(staffSvc),
			Attendance:   handler.NewAttendanceHandler(attendanceSvc, loc),
			Expenses:     handler.NewExpenseHandler(expenseSvc),
			Transactions: handler.NewTransactionHandler(transactionSvc),
			Fees:         handler.NewFeeHandler(feeSvc),
			Salaries:     handler.NewSalaryHandler(salarySvc),
			Exams:        handler.NewExamHandler(examSvc),
			Timetable:    handler.NewTimetableHandler(timetableSvc),
			Notices:      handler.NewNoticeHandler(noticeSvc),
			Documents:    handler.NewDocumentHandler(documentSvc),
			Dashboard:    handler.NewDashboardHandler(dashboardSvc),
			Reports:      handler.NewReportHandler(reportSvc, exportSvc),
			Exports:      handler.NewExportHandler(exportSvc),
			Activity:     handler.NewActivityHandler(activitySvc),
			Metrics:      handler.NewMetricsHandler(metricsSvc, readiness),
		},
		Options: router.Options{
			APIPrefix:         cfg.APIPrefix,
			AllowedOrigins:    cfg.CORS.AllowedOrigins,
			Language:          cfg.Locale.Language,
			AuthRatePerMinute: cfg.RateLimit.AuthPerMinute,
			EnableDocs:        cfg.Env != config.EnvProduction,
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	activityQueue.Stop()
	logr.Info("server stopped")
}
