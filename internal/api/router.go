package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/storage"
)

// Options configures NewRouter.
type Options struct {
	// AllowAnonymous lets unauthenticated callers report items.
	AllowAnonymous bool

	// CORSOrigins lists allowed origins; empty means "*".
	CORSOrigins []string

	// Files serves locally stored images under /storage/. Nil when images
	// live on a remote host.
	Files *storage.Local
}

// NewRouter creates the API router with all endpoints registered. Every
// route is served both at the root and under /api.
func NewRouter(db *sqlx.DB, gateway *storage.Gateway, opts Options) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Gateway: gateway}
	healthHandler := &HealthHandler{DB: db}

	authMW := AuthMiddleware(db)
	createMW := authMW
	if opts.AllowAnonymous {
		createMW = OptionalAuthMiddleware(db)
	}

	for _, prefix := range []string{"", "/api"} {
		handle := func(method, path string, h http.Handler) {
			mux.Handle(method+" "+prefix+path, h)
		}

		// Public: credentials.
		handle("POST", "/register", http.HandlerFunc(authHandler.Register))
		handle("POST", "/login", http.HandlerFunc(authHandler.Login))

		// Authenticated: session.
		handle("GET", "/me", authMW(http.HandlerFunc(authHandler.Me)))
		handle("POST", "/logout", authMW(http.HandlerFunc(authHandler.Logout)))

		// Items: read (anyone), create (policy), write (authenticated).
		handle("GET", "/items", http.HandlerFunc(itemsHandler.List))
		handle("GET", "/items/{id}", http.HandlerFunc(itemsHandler.Get))
		handle("POST", "/items", createMW(http.HandlerFunc(itemsHandler.Create)))
		handle("PUT", "/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
		handle("PATCH", "/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
		handle("POST", "/items/{id}/found", authMW(http.HandlerFunc(itemsHandler.MarkFound)))
		handle("DELETE", "/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

		if opts.Files != nil {
			filesHandler := &FilesHandler{Local: opts.Files}
			handle("GET", "/storage/{path...}", http.HandlerFunc(filesHandler.Serve))
		}

		handle("GET", "/up", http.HandlerFunc(healthHandler.Up))
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsMW := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})

	var handler http.Handler = mux
	handler = corsMW(handler)
	handler = middleware.Recoverer(handler)
	handler = LoggingMiddleware(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)
	return handler
}
