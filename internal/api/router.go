package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/hoot-be/internal/api/handlers"
	"github.com/isdelr/hoot-be/internal/auth"
	"github.com/isdelr/hoot-be/internal/services"
	"github.com/isdelr/hoot-be/internal/websocket"
)

// Dependencies bundles what the router needs to build its handlers.
type Dependencies struct {
	Hub            *websocket.Hub
	Verifier       auth.TokenVerifier
	UserService    services.UserServiceProvider
	HootService    services.HootServiceProvider
	CommentService services.CommentServiceProvider
	EventService   services.EventServiceProvider
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.UserService)
	hootHandler := handlers.NewHootHandler(deps.HootService)
	commentHandler := handlers.NewCommentHandler(deps.CommentService)
	eventHandler := handlers.NewEventHandler(deps.EventService)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Public routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(deps.Verifier))

		r.Route("/hoots", func(r chi.Router) {
			r.Get("/", hootHandler.GetAll)
			r.Post("/", hootHandler.Create)
			r.Route("/{hootId}", func(r chi.Router) {
				r.Get("/", hootHandler.Get)
				r.Put("/", hootHandler.Update)
				r.Delete("/", hootHandler.Delete)

				r.Post("/comments", commentHandler.Create)
				r.Put("/comments/{commentId}", commentHandler.Update)
				r.Delete("/comments/{commentId}", commentHandler.Delete)
			})
		})

		r.Get("/events", eventHandler.GetRecent)

		r.Get("/ws", wsHandler.Serve)
		r.Get("/ws/hoots/{hootId}", wsHandler.Serve)
	})

	return r
}
