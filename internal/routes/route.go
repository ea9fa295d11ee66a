package routes

import (
	"fmt"
	"net/http"

	"healthmap/internal/auth"
	"healthmap/internal/catalog"
	"healthmap/internal/config"
	"healthmap/internal/handlers"
	"healthmap/internal/logger"
	"healthmap/internal/metrics"
	mdlwr "healthmap/internal/middleware"
	"healthmap/internal/sensor"
	"healthmap/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the long-lived components the router wires into handlers.
type Deps struct {
	Catalog  *catalog.Catalog
	Sessions *services.SessionStore
	Sensor   sensor.Sensor // fallback when the client reports no reading; may be nil
	Metrics  *metrics.Collector
}

func NewRouter(cfg *config.Config, deps Deps, logr *logger.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.Middleware)

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mdlwr.SessionHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	tokens, err := auth.NewSessionManager(cfg.SessionSecret, "healthmap", cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("init session manager: %w", err)
	}

	clickResolver := services.NewClickResolver(deps.Catalog, deps.Metrics, logr.Component("clicks"))

	sessionMW := mdlwr.NewSessionMiddleware(tokens, deps.Sessions, logr.Component("session"))

	catalogHandler := handlers.NewCatalogHandler(deps.Catalog, logr.Logger)
	sessionHandler := handlers.NewSessionHandler(tokens, deps.Sessions, logr.Logger)
	positionHandler := handlers.NewPositionHandler(deps.Sensor, logr.Logger)
	interactionHandler := handlers.NewInteractionHandler(clickResolver, deps.Catalog, logr.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})
	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		r.Post("/sessions", sessionHandler.CreateSession)

		// Public catalog routes
		r.Get("/map", catalogHandler.GetMap)
		r.Route("/layers", func(r chi.Router) {
			r.Get("/territories", catalogHandler.GetTerritoryLayer)
			r.Get("/services", catalogHandler.GetServiceLayer)
			r.Get("/drones", catalogHandler.GetDroneLayer)
		})
		r.Get("/territories/{id}", catalogHandler.GetTerritory)
		r.Get("/territories/{id}/services", catalogHandler.GetTerritoryServices)
		r.Get("/services/{id}", catalogHandler.GetService)
		r.Get("/drones/{id}", catalogHandler.GetDrone)

		// Session-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(sessionMW.RequireSession)

			r.Route("/position", func(r chi.Router) {
				r.Get("/", positionHandler.GetPosition)
				r.Post("/locate", positionHandler.Locate)
				r.Post("/search", positionHandler.Search)
			})

			r.Route("/clicks", func(r chi.Router) {
				r.Post("/territory/{id}", interactionHandler.ClickTerritory)
				r.Post("/service/{id}", interactionHandler.ClickService)
				r.Post("/drone/{id}", interactionHandler.ClickDrone)
			})

			r.Post("/selection/close", interactionHandler.CloseSelection)
			r.Post("/resource-request/open", interactionHandler.OpenResourceRequest)
			r.Post("/resource-request/close", interactionHandler.CloseResourceRequest)
			r.Get("/state", interactionHandler.GetState)
			r.Get("/render", interactionHandler.GetLayers)
		})
	})

	return r, nil
}
