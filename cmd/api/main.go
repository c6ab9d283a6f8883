package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/faena-app/faena-backend/internal/config"
	appHTTP "github.com/faena-app/faena-backend/internal/handler/http"
	"github.com/faena-app/faena-backend/internal/pkg/cron"
	"github.com/faena-app/faena-backend/internal/pkg/database"
	"github.com/faena-app/faena-backend/internal/pkg/jwt"
	"github.com/faena-app/faena-backend/internal/pkg/location"
	"github.com/faena-app/faena-backend/internal/pkg/push"
	"github.com/faena-app/faena-backend/internal/pkg/sse"
	"github.com/faena-app/faena-backend/internal/repository/postgresql"
	attendanceService "github.com/faena-app/faena-backend/internal/service/attendance"
	serviceAuth "github.com/faena-app/faena-backend/internal/service/auth"
	chatService "github.com/faena-app/faena-backend/internal/service/chat"
	dailyReportService "github.com/faena-app/faena-backend/internal/service/dailyreport"
	notificationService "github.com/faena-app/faena-backend/internal/service/notification"
	projectService "github.com/faena-app/faena-backend/internal/service/project"
	reportService "github.com/faena-app/faena-backend/internal/service/report"
	"github.com/faena-app/faena-backend/migrations"
)

const version = "1.0.0"

// healthSource joins the tracker, hub and scheduler counters for GET /health.
type healthSource struct {
	tracker   *attendanceService.AttendanceServiceImpl
	hub       *sse.Hub
	scheduler *cron.Scheduler
}

func (h healthSource) MonitorCount() int { return h.tracker.MonitorCount() }

func (h healthSource) StreamSubscribers() int { return h.hub.TotalSubscribers() }

func (h healthSource) JobStatus() []cron.JobStatus { return h.scheduler.Status() }

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL(), migrations.FS); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	appLoc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var (
		positions location.PositionStore
		fanout    *location.RedisFanout
	)
	if cfg.Redis.Addr != "" {
		rdb, err := location.NewRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		positions = location.NewRedisStore(rdb, cfg.Redis.PositionTTL)
		fanout = location.NewRedisFanout(rdb)
		slog.Info("Storing device positions in redis", "addr", cfg.Redis.Addr)
	} else {
		positions = location.NewMemoryStore()
		slog.Info("Storing device positions in memory")
	}

	gatewayOpts := location.Options{MaxPositionAge: cfg.Geofence.MaxPositionAge}
	if fanout != nil {
		gatewayOpts.Fanout = fanout
	}
	gateway := location.NewGateway(positions, gatewayOpts)

	userRepo := postgresql.NewUserRepository(db)
	projectRepo := postgresql.NewProjectRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	dailyReportRepo := postgresql.NewDailyReportRepository(db)
	chatRepo := postgresql.NewChatRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()

	notifier := notificationService.NewNotificationService(userRepo, push.NewClient(cfg.Push), notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notifier.Stop()

	authSvc := serviceAuth.NewAuthService(userRepo, JWTService)
	projectSvc := projectService.NewProjectService(projectRepo, cfg.Geofence.RadiusMeters)
	dailyReportSvc := dailyReportService.NewDailyReportService(dailyReportRepo, projectRepo, attendanceRepo, notifier, appLoc)
	chatSvc := chatService.NewChatService(chatRepo, projectRepo, notifier, hub)
	reportSvc := reportService.NewReportService(reportRepo, projectRepo)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		projectRepo,
		gateway,
		dailyReportSvc,
		notifier,
		hub,
		attendanceService.Config{
			DefaultRadiusMeters: cfg.Geofence.RadiusMeters,
			MinDistanceMeters:   cfg.Geofence.MinDistanceMeters,
			DefaultLocation:     appLoc,
			StaleAfter:          time.Duration(cfg.Jobs.StaleSessionHours) * time.Hour,
		},
	)
	defer attendanceSvc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if fanout != nil {
		if err := fanout.Start(ctx, gateway); err != nil {
			return fmt.Errorf("start position fan-out: %w", err)
		}
	}

	resumed, err := attendanceSvc.ResumeMonitors(ctx)
	if err != nil {
		slog.Error("Failed to resume geofence monitors", "error", err)
	} else {
		slog.Info("Resumed geofence monitors", "count", resumed)
	}

	scheduler := cron.NewScheduler()
	cron.NewMaintenanceJobs(attendanceSvc, dailyReportSvc, cfg.Jobs.Interval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       cfg.LogLevel(),
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		appHTTP.Handlers{
			Auth:        appHTTP.NewAuthHandler(authSvc),
			Project:     appHTTP.NewProjectHandler(projectSvc),
			Location:    appHTTP.NewLocationHandler(gateway),
			Attendance:  appHTTP.NewAttendanceHandler(attendanceSvc, JWTService, hub),
			DailyReport: appHTTP.NewDailyReportHandler(dailyReportSvc),
			Chat:        appHTTP.NewChatHandler(chatSvc, JWTService),
			Report:      appHTTP.NewReportHandler(reportSvc),
			Health:      appHTTP.NewHealthHandler(healthSource{tracker: attendanceSvc, hub: hub, scheduler: scheduler}),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
