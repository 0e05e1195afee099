package technician

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes roster HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/technicians", func(r chi.Router) {
		r.Post("/", h.create)                 // POST  /api/v1/technicians
		r.Get("/", h.list)                    // GET   /api/v1/technicians?status=available
		r.Get("/{id}", h.get)                 // GET   /api/v1/technicians/{id}
		r.Patch("/{id}/status", h.updateStatus) // PATCH /api/v1/technicians/{id}/status
		r.Put("/{id}/skills", h.setSkills)    // PUT   /api/v1/technicians/{id}/skills
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	t, err := h.service.CreateTechnician(r.Context(), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, t)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetTechnician(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListTechnicians(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	t, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) setSkills(w http.ResponseWriter, r *http.Request) {
	var req SetSkillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	t, err := h.service.SetSkills(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, t)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func errStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"),
		strings.Contains(msg, "must be"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
