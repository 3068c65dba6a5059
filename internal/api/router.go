package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/yatube/internal/api/handlers"
	"github.com/isdelr/yatube/internal/auth"
	"github.com/isdelr/yatube/internal/metrics"
	"github.com/isdelr/yatube/internal/services"
	"github.com/isdelr/yatube/internal/web"
	"github.com/isdelr/yatube/internal/websocket"
)

// Options carries the deployment settings the router needs.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(
	hub *websocket.Hub,
	tokens *auth.TokenManager,
	rn *web.Renderer,
	postService services.PostServiceProvider,
	groupService services.GroupServiceProvider,
	userService services.UserServiceProvider,
	opts Options,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Resolve the current user, if any, for every request.
	r.Use(tokens.Middleware(userService))

	// Initialize handlers
	postHandler := handlers.NewPostHandler(postService, groupService, userService, rn, hub)
	authHandler := handlers.NewAuthHandler(userService, tokens, rn, opts.SecureCookies)
	wsHandler := handlers.NewWebSocketHandler(hub, opts.AllowedOrigins)

	r.Get("/", postHandler.Index)
	r.Get("/group/{slug}/", postHandler.GroupPosts)
	r.Get("/profile/{username}/", postHandler.Profile)
	r.Get("/posts/{id}/", postHandler.Detail)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Get("/create/", postHandler.Create)
		r.Post("/create/", postHandler.Create)
		r.Get("/posts/{id}/edit/", postHandler.Edit)
		r.Post("/posts/{id}/edit/", postHandler.Edit)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/signup/", authHandler.Signup)
		r.Post("/signup/", authHandler.Signup)
		r.Get("/login/", authHandler.Login)
		r.Post("/login/", authHandler.Login)
		r.Get("/logout/", authHandler.Logout)
		r.Post("/logout/", authHandler.Logout)
	})

	// Live feed of post events
	r.Get("/ws", wsHandler.Serve)

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
