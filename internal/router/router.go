package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rdservicos/portal/internal/auth"
	"github.com/rdservicos/portal/internal/handler"
	mw "github.com/rdservicos/portal/internal/middleware"
	"github.com/rdservicos/portal/internal/obs"
)

func New(
	cookieKey string,
	authH *handler.AuthHandler,
	catalogH *handler.CatalogHandler,
	pedidoH *handler.PedidoHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS)
	r.Use(obs.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authH.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cookieKey))

			// Auth
			r.Get("/auth/me", authH.Me)
			r.Post("/auth/logout", authH.Logout)

			// Service catalog
			r.Get("/services", catalogH.List)
			r.Get("/services/{serviceId}", catalogH.Get)

			// Pedidos
			r.Post("/services/{serviceId}/pedidos", pedidoH.Create)
			r.Get("/pedidos", pedidoH.List)
			r.Get("/pedidos/{serviceId}/{folder}", pedidoH.Get)
		})
	})

	return r
}
