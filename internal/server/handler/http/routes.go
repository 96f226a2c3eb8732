package http

import (
	"net/http"

	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// note-taking API. It applies JSON content-type enforcement, request logging
// and cookie-based identity extraction, then mounts the account, note, tag
// and access-log endpoints.
//
// Routes:
//
//	POST /register         → authHandler.Register
//	POST /login            → authHandler.Login
//	POST /token/refresh    → authHandler.Refresh
//	POST /logout           → authHandler.Logout
//	GET  /profile          → authHandler.Profile        (auth required)
//	GET/POST /notes, GET/PUT/PATCH/DELETE /notes/{id}   (auth required)
//	GET/POST /tags, PUT/PATCH/DELETE /tags/{id}         (auth required)
//	GET  /shared-access    → accessHandler.List         (auth required; admin checked in service)
func NewRouter(
	authHandler *AuthHandler,
	notesHandler *NotesHandler,
	tagsHandler *TagsHandler,
	accessHandler *AccessHandler,
	validator middleware.AccessValidator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Resolve identity from the access cookie; anonymous requests pass through
	r.Use(middleware.Authenticate(validator))

	// Public endpoints
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/token/refresh", authHandler.Refresh)
	r.Post("/logout", authHandler.Logout)

	// Protected group: requires an authenticated identity
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/profile", authHandler.Profile)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", notesHandler.List)
			r.Post("/", notesHandler.Create)
			r.Get("/{id}", notesHandler.Get)
			r.Put("/{id}", notesHandler.Update)
			r.Patch("/{id}", notesHandler.Update)
			r.Delete("/{id}", notesHandler.Delete)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tagsHandler.List)
			r.Post("/", tagsHandler.Create)
			r.Put("/{id}", tagsHandler.Update)
			r.Patch("/{id}", tagsHandler.Update)
			r.Delete("/{id}", tagsHandler.Delete)
		})

		r.Get("/shared-access", accessHandler.List)
	})

	return r
}
