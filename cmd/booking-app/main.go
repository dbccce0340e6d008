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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/appointment-booking/api/swagger"
	"github.com/noah-isme/appointment-booking/internal/handler"
	"github.com/noah-isme/appointment-booking/internal/middleware"
	"github.com/noah-isme/appointment-booking/internal/models"
	"github.com/noah-isme/appointment-booking/internal/repository"
	"github.com/noah-isme/appointment-booking/internal/service"
	"github.com/noah-isme/appointment-booking/internal/store"
	"github.com/noah-isme/appointment-booking/pkg/cache"
	"github.com/noah-isme/appointment-booking/pkg/config"
	"github.com/noah-isme/appointment-booking/pkg/database"
	"github.com/noah-isme/appointment-booking/pkg/events"
	"github.com/noah-isme/appointment-booking/pkg/jobs"
	"github.com/noah-isme/appointment-booking/pkg/logger"
	corsmiddleware "github.com/noah-isme/appointment-booking/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/appointment-booking/pkg/middleware/requestid"
)

// @title Appointment Booking
// @version 1.0.0
// @description Session-backed views and store actions over the hosted booking data service
// @BasePath /
// @schemes http https

type dataBackend interface {
	store.DataService
	InsertSlots(ctx context.Context, session *models.Session, slots []models.NewTimeSlot) error
	DeleteSlot(ctx context.Context, session *models.Session, id string) error
}

type authBackend interface {
	service.Authenticator
	store.SessionRevoker
}

type backend struct {
	data   dataBackend
	auth   authBackend
	checks map[string]handler.ReadinessCheck
	close  func()
}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	be, err := newBackend(ctx, cfg, metrics, logr)
	if err != nil {
		logr.Fatal("failed to init data backend", zap.String("backend", cfg.Data.Backend), zap.Error(err))
	}
	defer be.close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		be.checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	broker, err := events.New(cfg.Events, logr)
	if err != nil {
		logr.Fatal("failed to init event publisher", zap.Error(err))
	}
	publisher := jobs.NewDispatcher(broker, jobs.DispatcherConfig{MaxRetries: 3, Logger: logr})
	defer func() {
		if err := publisher.Close(); err != nil {
			logr.Warn("event dispatcher close failed", zap.Error(err))
		}
	}()

	sessions := service.NewSessionService(service.SessionConfig{
		Data:      be.data,
		Revoker:   be.auth,
		Persist:   repository.NewSessionRepository(redisClient, logr),
		Recorder:  metrics,
		Publisher: publisher,
		Gauge:     metrics,
		TTL:       cfg.Session.TTL,
		Logger:    logr,
	})
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	validate := validator.New()
	loc := cfg.Slots.Location()
	generator := service.NewSlotGenerator(service.SlotGeneratorConfig{
		Location:     loc,
		DayStartHour: cfg.Slots.DayStartHour,
		DayEndHour:   cfg.Slots.DayEndHour,
		Days:         cfg.Slots.Days,
	})
	adminSvc := service.NewAdminService(be.data, generator, publisher, logr)
	viewSvc := service.NewViewService(adminSvc, loc, logr)
	authSvc := service.NewAuthService(be.auth, sessions, validate, logr)
	exportSvc := service.NewExportService(loc, logr)

	loginLimiter := middleware.NewRateLimiter(cfg.Login.RateLimitRPS, cfg.Login.RateLimitBurst)
	go loginLimiter.Run(ctx)

	cookie := middleware.CookieConfig{Name: cfg.Session.CookieName, TTL: cfg.Session.TTL, Secure: cfg.Session.Secure}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, handler.Routes{
		APIPrefix:    cfg.APIPrefix,
		Sessions:     sessions,
		Cookie:       cookie,
		LoginLimiter: loginLimiter,
		Auth:         handler.NewAuthHandler(authSvc, viewSvc, cookie, handler.LoginPath, handler.DashboardPath),
		Views:        handler.NewViewHandler(viewSvc),
		Appointments: handler.NewAppointmentHandler(validate),
		Admin:        handler.NewAdminHandler(adminSvc, exportSvc, validate),
		Store:        handler.NewStoreHandler(viewSvc, 0, logr),
		Metrics:      handler.NewMetricsHandler(metrics, be.checks),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "backend", cfg.Data.Backend)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
		_ = server.Close()
	}
	logr.Info("server stopped")
}

func newBackend(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*backend, error) {
	switch cfg.Data.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		data := repository.NewPostgresDataService(repository.NewSlotRepository(db), repository.NewAppointmentRepository(db))
		data.SetRecorder(metrics)
		auth := repository.NewPostgresAuthenticator(repository.NewAccountRepository(db), cfg.JWT.Secret, cfg.JWT.Expiration)
		return &backend{
			data:   data,
			auth:   auth,
			checks: map[string]handler.ReadinessCheck{"postgres": db.PingContext},
			close:  func() { _ = db.Close() },
		}, nil
	case config.BackendREST, "":
		if cfg.Data.URL == "" {
			return nil, errors.New("DATA_URL is required for the rest backend")
		}
		client := repository.NewRESTClient(cfg.Data.URL, cfg.Data.AnonKey, cfg.Data.Timeout, logr)
		client.SetRecorder(metrics)
		return &backend{
			data:   repository.NewRESTDataService(client),
			auth:   repository.NewRESTAuthenticator(client),
			checks: map[string]handler.ReadinessCheck{},
			close:  func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.Data.Backend)
	}
}
