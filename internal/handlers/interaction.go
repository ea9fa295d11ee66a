package handlers

import (
	"errors"
	"net/http"

	"healthmap/internal/catalog"
	"healthmap/internal/middleware"
	"healthmap/internal/models"
	"healthmap/internal/presentation"
	"healthmap/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InteractionHandler applies clicks and close actions to the session's
// selection and exposes the resulting state to display surfaces.
type InteractionHandler struct {
	clicks  *services.ClickResolver
	catalog *catalog.Catalog
	logr    *zap.Logger
}

func NewInteractionHandler(clicks *services.ClickResolver, cat *catalog.Catalog, logr *zap.Logger) *InteractionHandler {
	return &InteractionHandler{clicks: clicks, catalog: cat, logr: logr}
}

// StateResponse is what a display surface needs to decide what to show.
type StateResponse struct {
	Selection models.Selection        `json:"selection"`
	Position  models.PositionSnapshot `json:"position"`
	Service   *models.HealthService   `json:"service,omitempty"`
	Drone     *models.DeliveryUnit    `json:"drone,omitempty"`
	Territory *models.Territory       `json:"territory,omitempty"`
}

func (h *InteractionHandler) state(sess *services.Session) StateResponse {
	resp := StateResponse{
		Selection: sess.State.Snapshot(),
		Position:  sess.Position.Snapshot(),
	}
	switch resp.Selection.Kind {
	case models.SelectionService:
		if s, ok := h.catalog.Service(resp.Selection.ServiceID); ok {
			resp.Service = &s
		}
	case models.SelectionDrone:
		if d, ok := h.catalog.Drone(resp.Selection.DroneID); ok {
			resp.Drone = &d
		}
	}
	if id := resp.Selection.LastTerritoryID; id != "" {
		if t, ok := h.catalog.Territory(id); ok {
			resp.Territory = &t
		}
	}
	return resp
}

// ClickTerritory handles POST /clicks/territory/{id}
func (h *InteractionHandler) ClickTerritory(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
		return
	}

	res, err := h.clicks.ResolveTerritoryClick(sess.State, chi.URLParam(r, "id"))
	if errors.Is(err, services.ErrUnknownEntity) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ClickService handles POST /clicks/service/{id}
func (h *InteractionHandler) ClickService(w http.ResponseWriter, r *http.Request) {
	h.clickMarker(w, r, models.EntityService)
}

// ClickDrone handles POST /clicks/drone/{id}
func (h *InteractionHandler) ClickDrone(w http.ResponseWriter, r *http.Request) {
	h.clickMarker(w, r, models.EntityDrone)
}

func (h *InteractionHandler) clickMarker(w http.ResponseWriter, r *http.Request, kind models.EntityKind) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
		return
	}

	_, err := h.clicks.ResolveMarkerClick(sess.State, kind, chi.URLParam(r, "id"))
	if errors.Is(err, services.ErrUnknownEntity) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, h.state(sess))
}

// CloseSelection handles POST /selection/close
func (h *InteractionHandler) CloseSelection(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(sess *services.Session) { sess.State.Close() })
}

// OpenResourceRequest handles POST /resource-request/open
func (h *InteractionHandler) OpenResourceRequest(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(sess *services.Session) { sess.State.OpenResourceRequest() })
}

// CloseResourceRequest handles POST /resource-request/close
func (h *InteractionHandler) CloseResourceRequest(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(sess *services.Session) { sess.State.CloseResourceRequest() })
}

// GetState handles GET /state
func (h *InteractionHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, nil)
}

// GetLayers handles GET /render: every layer with this session's selection
// and position applied.
func (h *InteractionHandler) GetLayers(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
		return
	}
	var pos *models.ResolvedPosition
	if p, ok := sess.Position.Position(); ok {
		pos = &p
	}
	writeJSON(w, http.StatusOK, presentation.RenderLayers(h.catalog, sess.State.Snapshot(), pos))
}

func (h *InteractionHandler) apply(w http.ResponseWriter, r *http.Request, fn func(*services.Session)) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
		return
	}
	if fn != nil {
		fn(sess)
	}
	writeJSON(w, http.StatusOK, h.state(sess))
}
