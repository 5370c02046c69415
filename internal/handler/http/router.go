package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/obs"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

const heartbeatMessage = "AssetVerse Server is Secure and Running"

// Handlers groups the HTTP handlers mounted by NewRouter
type Handlers struct {
	Auth    AuthHandler
	User    UserHandler
	Asset   AssetHandler
	Request RequestHandler
	Stats   StatsHandler
	Events  EventsHandler
}

type RouterOptions struct {
	AllowedOrigins []string
	LogLevel       slog.Level
	RateLimiter    *middleware.RateLimiter
}

// NewLogger builds the JSON logger in the ECS schema shared by the request logger
func NewLogger(env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "assetverse"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)
}

func NewRouter(JWTService jwt.Service, logger *slog.Logger, opts RouterOptions, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))
	r.Use(obs.Instrument)

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(heartbeatMessage))
	})
	r.Handle("/metrics", obs.Handler())

	rateLimit := func(next http.Handler) http.Handler { return next }
	if opts.RateLimiter != nil {
		rateLimit = opts.RateLimiter.Handler
	}

	r.Route("/api/v1", func(r chi.Router) {

		// Public
		r.Group(func(r chi.Router) {
			r.Use(rateLimit)
			r.Post("/auth/token", h.Auth.IssueToken)
			r.Post("/users", h.User.Register)
		})

		// SSE clients cannot set headers, so the stream also accepts ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired)
			r.Get("/events", h.Events.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(rateLimit)

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.User.GetMe)
				r.Patch("/", h.User.UpdateMe)
				r.Get("/role", h.User.GetMyRole)
			})

			r.Route("/team", func(r chi.Router) {
				r.Get("/unaffiliated", h.User.ListUnaffiliated)
				r.Get("/count", h.User.TeamCount)
				r.Get("/employees", h.User.ListMyEmployees)
				r.Get("/mine", h.User.MyTeam)
				r.Post("/members", h.User.AddToTeam)
				r.Delete("/members/{id}", h.User.RemoveFromTeam)
			})

			r.Route("/assets", func(r chi.Router) {
				r.Post("/", h.Asset.Create)
				r.Get("/", h.Asset.List)
				r.Get("/available/{hrEmail}", h.Asset.ListAvailable)
				r.Get("/{id}", h.Asset.Get)
				r.Put("/{id}", h.Asset.Update)
				r.Delete("/{id}", h.Asset.Delete)
			})

			r.Route("/requests", func(r chi.Router) {
				r.Post("/", h.Request.Create)
				r.Get("/", h.Request.ListAll)
				r.Get("/mine", h.Request.ListMine)
				r.Patch("/{id}/approve", h.Request.Approve)
				r.Patch("/{id}/reject", h.Request.Reject)
				r.Patch("/{id}/return", h.Request.Return)
				r.Delete("/{id}", h.Request.Cancel)
			})

			r.Route("/stats", func(r chi.Router) {
				r.Get("/hr", h.Stats.HR)
				r.Get("/employee", h.Stats.Employee)
			})
		})
	})
	return r
}
