package handlers

import (
	"net/http"

	"healthmap/internal/catalog"
	"healthmap/internal/models"
	"healthmap/internal/presentation"
	"healthmap/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the read-only map data. It needs no session.
type CatalogHandler struct {
	catalog *catalog.Catalog
	logr    *zap.Logger
}

func NewCatalogHandler(cat *catalog.Catalog, logr *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: cat, logr: logr}
}

// GetMap returns the initial viewport, base tiles and legend
func (h *CatalogHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presentation.InitialView(h.catalog))
}

// GetTerritoryLayer returns territory boundaries as a styled FeatureCollection
func (h *CatalogHandler) GetTerritoryLayer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presentation.TerritoryLayer(h.catalog.Territories(), models.EmptySelection()))
}

// GetServiceLayer returns service markers, optionally filtered by ?category=
func (h *CatalogHandler) GetServiceLayer(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	for _, raw := range utils.ParseQueryList(r.URL.Query(), "category") {
		c := models.ParseCategory(raw)
		if c == models.CategoryUnknown {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "unknown category: " + raw,
			})
			return
		}
		categories = append(categories, c)
	}

	services := h.catalog.ServicesByCategory(categories...)
	writeJSON(w, http.StatusOK, presentation.ServiceLayer(services, models.EmptySelection()))
}

// GetDroneLayer returns delivery drone markers
func (h *CatalogHandler) GetDroneLayer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presentation.DroneLayer(h.catalog.Drones(), models.EmptySelection()))
}

// GetTerritory returns a single territory with its popup content
func (h *CatalogHandler) GetTerritory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, ok := h.catalog.Territory(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "territory not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"territory": t,
		"popup":     presentation.TerritoryPopup(t),
	})
}

// GetTerritoryServices lists every service in a territory, in catalog order
func (h *CatalogHandler) GetTerritoryServices(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.catalog.Territory(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "territory not found",
		})
		return
	}
	services := h.catalog.ServicesOf(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"territory_id": id,
		"services":     services,
		"count":        len(services),
	})
}

// GetService returns a single health service
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.catalog.Service(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "service not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": s,
		"style":   presentation.ServiceMarkerStyle(s.Category),
		"popup":   presentation.ServicePopup(s),
	})
}

// GetDrone returns a single delivery drone
func (h *CatalogHandler) GetDrone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.catalog.Drone(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "drone not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"drone": d,
		"style": presentation.DroneMarkerStyle(d.Status),
		"popup": presentation.DronePopup(d),
	})
}
