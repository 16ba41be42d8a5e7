package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/atul951/trinity-scheduler-api/api/swagger"
	"github.com/atul951/trinity-scheduler-api/internal/handler"
	"github.com/atul951/trinity-scheduler-api/internal/middleware"
	"github.com/atul951/trinity-scheduler-api/internal/repository"
	"github.com/atul951/trinity-scheduler-api/internal/service"
	appcache "github.com/atul951/trinity-scheduler-api/pkg/cache"
	"github.com/atul951/trinity-scheduler-api/pkg/config"
	"github.com/atul951/trinity-scheduler-api/pkg/database"
	"github.com/atul951/trinity-scheduler-api/pkg/logger"
	corsmiddleware "github.com/atul951/trinity-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/atul951/trinity-scheduler-api/pkg/middleware/requestid"
	"github.com/atul951/trinity-scheduler-api/pkg/storage"
)

// @title Trinity Scheduler API
// @version 1.0.0
// @description Constraint-based course scheduling and enrollment validation engine
// @BasePath /api/v1
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

	redisClient, err := appcache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, schedule caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Repositories.
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	historyRepo := repository.NewCourseHistoryRepository(db)
	specializationRepo := repository.NewSpecializationRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	timeslotRepo := repository.NewTimeslotRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	gridSvc := service.NewTimeGridService(cfg.Scheduler.MaxCombinations, logr)
	constraintSvc := service.NewConstraintService(cfg.Scheduler.MaxTeacherDailyHours, logr)
	demandSvc := service.NewDemandService(courseRepo, studentRepo, historyRepo, cfg.Scheduler.SectionCapacity, logr)
	sectionSvc := service.NewSectionService(sectionRepo, timeslotRepo, cfg.Scheduler.SectionCapacity, logr)
	prereqSvc := service.NewPrerequisiteService(courseRepo, historyRepo, logr)
	courseSvc := service.NewCourseService(courseRepo, prereqSvc, logr)
	studentSvc := service.NewStudentService(studentRepo, historyRepo, courseRepo, enrollmentRepo, logr)
	semesterSvc := service.NewSemesterService(db, semesterRepo, sectionRepo, cacheRepo, logr)
	exportSvc := service.NewExportService(semesterRepo, sectionRepo, timeslotRepo, logr)

	var archiveSvc *service.ExportArchiveService
	if cfg.Exports.Enabled && cfg.Exports.SignSecret != "" {
		exportArchive, err := storage.NewArchive(cfg.Exports.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export archive", "error", err)
		}
		signer := storage.NewDownloadSigner(cfg.Exports.SignSecret, cfg.Exports.DownloadTTL)
		archiveSvc = service.NewExportArchiveService(exportArchive, signer, cfg.Exports.Retention, logr)
	}
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	schedulerSvc := service.NewSchedulerService(service.SchedulerDeps{
		Tx:              db,
		Semesters:       semesterRepo,
		Courses:         courseRepo,
		Specializations: specializationRepo,
		Teachers:        teacherRepo,
		Classrooms:      classroomRepo,
		Sections:        sectionRepo,
		Timeslots:       timeslotRepo,
		Demand:          demandSvc,
		SectionSvc:      sectionSvc,
		Constraints:     constraintSvc,
		Grid:            gridSvc,
		Metrics:         metricsSvc,
		Logger:          logr,
	})
	enrollmentSvc := service.NewEnrollmentService(service.EnrollmentDeps{
		DB:          db,
		Tx:          db,
		Enrollments: enrollmentRepo,
		Sections:    sectionRepo,
		Students:    studentRepo,
		Courses:     courseRepo,
		Timeslots:   timeslotRepo,
		Prereqs:     prereqSvc,
		Cache:       cacheRepo,
		Metrics:     metricsSvc,
		MaxCourses:  cfg.Enrollment.MaxCoursesPerSemester,
		CacheTTL:    cfg.Enrollment.ScheduleCacheTTL,
		Logger:      logr,
	})

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	scheduleHandler := handler.NewScheduleHandler(schedulerSvc, semesterSvc, sectionSvc, exportSvc, archiveSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, courseSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	if archiveSvc != nil {
		// Tokens are signed and expiring, so downloads skip the JWT gate.
		api.GET("/exports/:token", scheduleHandler.DownloadExport)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.POST("/schedule/generate", scheduleHandler.Generate)
		protected.DELETE("/schedule/:semesterId", scheduleHandler.Revert)
		protected.GET("/schedule/grid", scheduleHandler.GridPreview)
		if cfg.Exports.Enabled {
			protected.GET("/schedule/:semesterId/export", scheduleHandler.ExportTimetable)
		}

		protected.GET("/sections", scheduleHandler.ListSections)
		protected.GET("/sections/:id", scheduleHandler.GetSection)

		protected.POST("/enrollments", enrollmentHandler.Enroll)
		protected.POST("/enrollments/validate", enrollmentHandler.Validate)
		protected.POST("/enrollments/drop", enrollmentHandler.Drop)

		protected.GET("/students/:id", studentHandler.Get)
		protected.GET("/students/:id/progress", studentHandler.Progress)
		protected.GET("/students/:id/schedule", enrollmentHandler.StudentSchedule)
		protected.GET("/courses/:id", studentHandler.GetCourse)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if archiveSvc != nil {
		archiveSvc.Start(ctx)
		defer archiveSvc.Stop()
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
