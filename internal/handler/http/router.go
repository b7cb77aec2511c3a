package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/retailops/storeops-backend/internal/handler/http/middleware"
	"github.com/retailops/storeops-backend/internal/pkg/jwt"
)

type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, attendanceHandler AttendanceHandler, requestHandler RequestHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/stores/{storeID}", func(r chi.Router) {
			r.Use(middleware.UUIDParams("storeID"))

			r.Route("/management", func(r chi.Router) {
				r.Get("/status", attendanceHandler.Status)
				r.Post("/start", attendanceHandler.Start)
				r.Post("/end", attendanceHandler.End)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Get("/", attendanceHandler.ListStore)
				r.Get("/export", attendanceHandler.ExportStore)
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/my", attendanceHandler.ListMy)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(middleware.UUIDParams("id"))
				r.Get("/", attendanceHandler.Get)

				r.With(middleware.RequireAdmin).Delete("/", attendanceHandler.Delete)
			})
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", requestHandler.Create)
			r.Get("/", requestHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(middleware.UUIDParams("id"))
				r.Get("/", requestHandler.Get)
				r.Put("/", requestHandler.Edit)
				r.Post("/cancel", requestHandler.Cancel)
				r.With(middleware.RequireManager).Post("/advance", requestHandler.Advance)
				r.Post("/confirm", requestHandler.Confirm)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"Route not found"}}`))
	})

	return r
}
