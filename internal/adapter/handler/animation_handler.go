package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/services"
)

type AnimationHandler struct {
	svc *services.AnimationService
}

func NewAnimationHandler(svc *services.AnimationService) *AnimationHandler {
	return &AnimationHandler{svc: svc}
}

// Register mounts the routes on mux with CORS applied.
func (h *AnimationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/animations", cors(h.GetAnimations))
	mux.HandleFunc("/configs/active", cors(h.GetActiveConfig))
	mux.HandleFunc("/triggers", cors(h.CreateTrigger))
	mux.HandleFunc("/packages", cors(h.GetPackage))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// GetAnimations returns one animation when ?type= is set, otherwise all of them.
func (h *AnimationHandler) GetAnimations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if id := r.URL.Query().Get("type"); id != "" {
		data, err := h.svc.GetAnimation(r.Context(), id)
		if err != nil {
			h.fail(w, "Error fetching animation", err)
			return
		}

		writeJSON(w, http.StatusOK, data)
		return
	}

	all, err := h.svc.ListAnimations(r.Context())
	if err != nil {
		h.fail(w, "Error fetching animations", err)
		return
	}

	writeJSON(w, http.StatusOK, all)
}

func (h *AnimationHandler) GetActiveConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, err := h.svc.ActiveConfig(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No active configuration found")
			return
		}
		h.fail(w, "Error fetching active config", err)
		return
	}

	out := map[string]any(doc.Fields)
	out["id"] = doc.ID
	writeJSON(w, http.StatusOK, out)
}

func (h *AnimationHandler) CreateTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req services.TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.AnimationType == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "Animation type and user ID are required")
		return
	}

	resp, err := h.svc.Trigger(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedDocument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, "Error triggering animation", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AnimationHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, err := h.svc.SeatPackage(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, "Error fetching package", err)
		return
	}

	writeJSON(w, http.StatusOK, doc.Fields)
}

func (h *AnimationHandler) fail(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	log.Printf("%s: %v", msg, err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
