package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/handler"
	"github.com/meliosu/onyx-core-builders/internal/middleware"
	"github.com/meliosu/onyx-core-builders/internal/repository"
	"github.com/meliosu/onyx-core-builders/internal/service"
	"github.com/meliosu/onyx-core-builders/migrations"
	"github.com/meliosu/onyx-core-builders/pkg/config"
	"github.com/meliosu/onyx-core-builders/pkg/database"
	"github.com/meliosu/onyx-core-builders/pkg/logger"
	corsmiddleware "github.com/meliosu/onyx-core-builders/pkg/middleware/cors"
	reqidmiddleware "github.com/meliosu/onyx-core-builders/pkg/middleware/requestid"
	"github.com/meliosu/onyx-core-builders/pkg/response"
	"github.com/meliosu/onyx-core-builders/web"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoCreate {
		if err := database.EnsureDatabase(ctx, cfg.Database.URL); err != nil {
			logr.Fatal("failed to create database", zap.Error(err))
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		version, err := database.Migrate(db, migrations.FS)
		if err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		logr.Info("schema up to date", zap.Uint("version", version))
	}

	templates, err := web.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}
	render := response.NewRenderer(templates, logr)

	metricsSvc := service.NewMetricsService()
	if err := metricsSvc.RegisterDB(db.DB, "onyx"); err != nil {
		logr.Warn("failed to register database metrics", zap.Error(err))
	}

	validate := service.NewValidator()
	refs := repository.NewReferenceRepository(db)
	expenditures := repository.NewExpenditureRepository(db)

	departments := service.NewDepartmentService(repository.NewDepartmentRepository(db), refs, validate, logr)
	areas := service.NewAreaService(repository.NewAreaRepository(db), refs, validate, logr)
	clients := service.NewClientService(repository.NewClientRepository(db), validate, logr)
	sites := service.NewSiteService(repository.NewSiteRepository(db), refs, validate, logr)
	brigades := service.NewBrigadeService(repository.NewBrigadeRepository(db), validate, logr)
	workers := service.NewWorkerService(repository.NewWorkerRepository(db), refs, validate, logr)
	personnel := service.NewTechnicalPersonnelService(repository.NewTechnicalPersonnelRepository(db), refs, validate, logr)
	equipment := service.NewEquipmentService(repository.NewEquipmentRepository(db), refs, validate, logr)
	materials := service.NewMaterialService(repository.NewMaterialRepository(db), expenditures, validate, logr)
	tasks := service.NewTaskService(repository.NewTaskRepository(db), expenditures, refs, validate, logr)
	selectors := service.NewSelectorService(repository.NewSelectorRepository(db), repository.HasSelector, cfg.Selectors.Limit, logr)

	general := handler.NewGeneralHandler(render, logr)
	handlers := handler.Handlers{
		General:            general,
		Metrics:            handler.NewMetricsHandler(metricsSvc, db),
		Selectors:          handler.NewSelectorHandler(selectors, render),
		Departments:        handler.NewDepartmentHandler(departments, areas, sites, personnel, equipment, render),
		Areas:              handler.NewAreaHandler(areas, sites, personnel, render),
		Clients:            handler.NewClientHandler(clients, sites, render),
		Sites:              handler.NewSiteHandler(sites, tasks, brigades, equipment, render),
		Brigades:           handler.NewBrigadeHandler(brigades, workers, tasks, render),
		Workers:            handler.NewWorkerHandler(workers, render),
		TechnicalPersonnel: handler.NewTechnicalPersonnelHandler(personnel, render),
		Equipment:          handler.NewEquipmentHandler(equipment, render),
		Materials:          handler.NewMaterialHandler(materials, render),
		Tasks:              handler.NewTaskHandler(tasks, render),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(general.Recover))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.Audit(logr, metricsSvc))

	r.StaticFS("/static", http.FS(web.Static()))
	handler.RegisterRoutes(r, handlers, cfg.Metrics.Enabled)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
