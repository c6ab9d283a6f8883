package http

import (
	"log/slog"
	"os"

	"github.com/faena-app/faena-backend/internal/handler/http/middleware"
	"github.com/faena-app/faena-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Env            string
	Version        string
	LogLevel       slog.Level
	AllowedOrigins []string
}

type Handlers struct {
	Auth        AuthHandler
	Project     ProjectHandler
	Location    LocationHandler
	Attendance  AttendanceHandler
	DailyReport DailyReportHandler
	Chat        ChatHandler
	Report      ReportHandler
	Health      HealthHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "faena-backend"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/health", h.Health.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		// SSE streams authenticate with a stream token in the query string
		r.Route("/stream", func(r chi.Router) {
			r.Get("/attendance", h.Attendance.Stream)
			r.Get("/projects/{projectID}/chat", h.Chat.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Post("/auth/stream-token", h.Auth.StreamToken)
			r.Post("/location", h.Location.Report)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/", h.Auth.CreateUser)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/push-in", h.Attendance.PushIn)
				r.Post("/push-out", h.Attendance.PushOut)
				r.Get("/today", h.Attendance.GetToday)
				r.Get("/me", h.Attendance.GetMyAttendance)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/mine", h.Project.ListMine)
				r.With(middleware.AdminOnly).Post("/", h.Project.Create)

				r.Route("/{projectID}", func(r chi.Router) {
					r.With(middleware.AdminOnly).Put("/assignments", h.Project.ReplaceAssignments)
					r.Get("/report/today", h.DailyReport.GetToday)
					r.Get("/stock", h.DailyReport.GetStock)
					r.Post("/comments/{blockID}/replies", h.DailyReport.AddReply)
					r.Get("/chat", h.Chat.List)
					r.Post("/chat", h.Chat.Send)

					// Supervisor only
					r.Group(func(r chi.Router) {
						r.Use(middleware.JefeOnly)
						r.Post("/report/checklist", h.DailyReport.SaveChecklist)
						r.Post("/report/recount", h.DailyReport.SaveRecount)
						r.Post("/comments", h.DailyReport.UpsertComment)
						r.Post("/comments/note", h.DailyReport.UpsertJefeNote)
					})
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.JefeOrAdmin)
				r.Get("/hours", h.Report.GetHours)
				r.Get("/hours/export", h.Report.ExportHours)
			})
		})
	})
	return r
}
