package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"healthmap/internal/middleware"
	"healthmap/internal/sensor"
	"healthmap/internal/services"

	"go.uber.org/zap"
)

// PositionHandler drives the session's position resolver.
type PositionHandler struct {
	fallback sensor.Sensor // used when the client reports no device reading; may be nil
	logr     *zap.Logger
}

func NewPositionHandler(fallback sensor.Sensor, logr *zap.Logger) *PositionHandler {
	return &PositionHandler{fallback: fallback, logr: logr}
}

// LocateRequest is the outcome of navigator.geolocation.getCurrentPosition
// in the browser. Coords and Error are both absent when the browser has no
// geolocation support.
type LocateRequest struct {
	Coords *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Accuracy  float64 `json:"accuracy"`
	} `json:"coords"`
	Timestamp int64 `json:"timestamp"` // epoch milliseconds
	Error     *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (req LocateRequest) toSensor(fallback sensor.Sensor) sensor.Sensor {
	switch {
	case req.Error != nil:
		return sensor.NewReported(nil, &sensor.Failure{
			Code:    sensor.FailureCode(req.Error.Code),
			Message: req.Error.Message,
		})
	case req.Coords != nil:
		reading := &sensor.Reading{
			Lat:       req.Coords.Latitude,
			Lon:       req.Coords.Longitude,
			AccuracyM: req.Coords.Accuracy,
		}
		if req.Timestamp > 0 {
			reading.Timestamp = time.UnixMilli(req.Timestamp)
		}
		return sensor.NewReported(reading, nil)
	default:
		return fallback
	}
}

type SearchRequest struct {
	Query string `json:"query"`
}

// Locate handles POST /position/locate
func (h *PositionHandler) Locate(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
		return
	}

	var req LocateRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logr.Warn("failed to decode locate request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return
	}

	// resolver failures are statuses carried in the snapshot, not HTTP faults
	_, _ = sess.Position.LocateViaSensor(r.Context(), req.toSensor(h.fallback))
	writeJSON(w, http.StatusOK, sess.Position.Snapshot())
}

// Search handles POST /position/search
func (h *PositionHandler) Search(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
		return
	}

	var req SearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logr.Warn("failed to decode search request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return
	}

	_, err := sess.Position.LocateViaAddress(r.Context(), req.Query)
	if errors.Is(err, services.ErrInvalidQuery) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":      services.Message(err),
			"error_kind": services.Kind(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, sess.Position.Snapshot())
}

// GetPosition handles GET /position
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
		return
	}
	writeJSON(w, http.StatusOK, sess.Position.Snapshot())
}
