package api

import (
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/evencat/server/internal/api/handlers"
	"github.com/evencat/server/internal/api/middleware"
	"github.com/evencat/server/internal/auth"
	"github.com/evencat/server/internal/config"
	"github.com/evencat/server/internal/domain/events"
	"github.com/evencat/server/internal/domain/users"
	"github.com/evencat/server/internal/storage/postgres"
	"github.com/evencat/server/internal/uploads"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool) (http.Handler, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, fmt.Errorf("repository init: %w", err)
	}

	uploadsStore, err := uploads.NewStore(cfg.Uploads.Dir)
	if err != nil {
		return nil, fmt.Errorf("uploads init: %w", err)
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	usersService := users.NewService(repo.Users(), logger)
	eventsService := events.NewService(repo.Events())

	authHandler := handlers.NewAuthHandler(usersService, tokens, uploadsStore, cfg.Auth.RegisterTTL, cfg.Auth.LoginTTL, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventsService, uploadsStore, cfg.Environment)
	guard := middleware.Auth(tokens, cfg.Environment)

	mux := newMux(authHandler, eventsHandler, guard, uploadsStore.Handler(), handlers.Readyz(pool))

	var handler http.Handler = mux
	handler = middleware.RequestSize(cfg.Uploads.MaxBodyBytes)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	return handler, nil
}

// newMux wires routes to handlers. Registration, login, and
// single-event lookup are the only anonymous application routes.
func newMux(authHandler *handlers.AuthHandler, eventsHandler *handlers.EventsHandler, guard func(http.Handler) http.Handler, uploadsHandler http.Handler, readyz http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", readyz)
	mux.Handle("GET "+uploads.URLPrefix, uploadsHandler)

	mux.Handle("POST /api/register", http.HandlerFunc(authHandler.Register))
	mux.Handle("POST /api/login", http.HandlerFunc(authHandler.Login))
	mux.Handle("PUT /api/password", guard(http.HandlerFunc(authHandler.UpdatePassword)))
	mux.Handle("PUT /api/profile", guard(http.HandlerFunc(authHandler.UpdateProfile)))
	mux.Handle("GET /api/me", guard(http.HandlerFunc(authHandler.Me)))

	mux.Handle("POST /api/events", guard(http.HandlerFunc(eventsHandler.Create)))
	mux.Handle("GET /api/events", guard(http.HandlerFunc(eventsHandler.List)))
	mux.Handle("GET /api/events/mine", guard(http.HandlerFunc(eventsHandler.Mine)))
	mux.Handle("GET /api/events/all", guard(http.HandlerFunc(eventsHandler.All)))
	mux.Handle("GET /api/events/analytics", guard(http.HandlerFunc(eventsHandler.Analytics)))
	mux.Handle("GET /api/events/{id}", http.HandlerFunc(eventsHandler.Get))
	mux.Handle("PUT /api/events/{id}", guard(http.HandlerFunc(eventsHandler.Update)))
	mux.Handle("DELETE /api/events/{id}", guard(http.HandlerFunc(eventsHandler.Delete)))

	return mux
}
