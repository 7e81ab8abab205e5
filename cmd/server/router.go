package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/palette-api/internal/api"
	"github.com/phrazzld/palette-api/internal/api/middleware"
	"github.com/phrazzld/palette-api/internal/metrics"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTraceMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(app.metrics.Middleware)

	cookies := api.CookieConfig{
		Secure: app.config.Auth.CookieSecure,
		MaxAge: time.Duration(app.config.Auth.RefreshTokenLifetimeMinutes) * time.Minute,
	}

	authHandler := api.NewAuthHandler(app.users, cookies, app.logger)
	userHandler := api.NewUserHandler(app.users, cookies, app.logger)
	diaryHandler := api.NewDiaryHandler(app.diaries, app.logger)
	historyHandler := api.NewHistoryHandler(app.diaries, app.logger)
	authMiddleware := middleware.NewAuthMiddleware(app.tokens)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(app.loginLimiter.Middleware).Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)
		r.Post("/token", authHandler.RefreshToken)
		r.Get("/colors", diaryHandler.ListColors)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/user", userHandler.GetUser)
			r.Patch("/user/terms", userHandler.AgreeToTerms)
			r.Delete("/user", userHandler.DeleteAccount)

			r.Post("/diaries", diaryHandler.CreateDiary)
			r.Get("/diaries", diaryHandler.ListDiaries)
			r.Post("/diaries/invite", diaryHandler.Invite)
			r.Get("/diaries/{id}/status", diaryHandler.Status)
			r.Get("/diaries/{id}/history", diaryHandler.CurrentHistory)
			r.Post("/diaries/{id}/leave", diaryHandler.Leave)

			r.Post("/histories", historyHandler.CreateHistory)
			r.Post("/histories/{id}/close", historyHandler.CloseHistory)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(app.registry))

	return r
}
