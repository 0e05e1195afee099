package invoice

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes invoice HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/invoices", func(r chi.Router) {
		r.Post("/", h.createInvoice)                       // POST   /api/v1/invoices
		r.Get("/{id}", h.getInvoice)                       // GET    /api/v1/invoices/{id}
		r.Get("/number/{number}", h.getInvoiceByNumber)    // GET    /api/v1/invoices/number/{number}
		r.Get("/customer/{customer_id}", h.listByCustomer) // GET    /api/v1/invoices/customer/{customer_id}
		r.Get("/", h.listByStatus)                         // GET    /api/v1/invoices?status=pending
		r.Post("/{id}/confirm", h.confirm)                 // POST   /api/v1/invoices/{id}/confirm
		r.Patch("/{id}/status", h.updateStatus)            // PATCH  /api/v1/invoices/{id}/status
		r.Post("/{id}/recompute", h.recompute)             // POST   /api/v1/invoices/{id}/recompute
		r.Post("/{id}/jobs", h.addJob)                     // POST   /api/v1/invoices/{id}/jobs
		r.Post("/{id}/items", h.addItem)                   // POST   /api/v1/invoices/{id}/items
	})
	r.Route("/api/v1/jobs", func(r chi.Router) {
		r.Patch("/{id}/status", h.updateJobStatus) // PATCH /api/v1/jobs/{id}/status
		r.Patch("/{id}/cost", h.updateJobCost)     // PATCH /api/v1/jobs/{id}/cost
	})
	r.Route("/api/v1/invoice-items", func(r chi.Router) {
		r.Patch("/{id}", h.updateItem)  // PATCH  /api/v1/invoice-items/{id}
		r.Delete("/{id}", h.removeItem) // DELETE /api/v1/invoice-items/{id}
	})
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, inv)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) getInvoiceByNumber(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoiceByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) listByCustomer(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListCustomerInvoices(r.Context(), chi.URLParam(r, "customer_id"))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, invoices)
}

func (h *Handler) listByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "status query parameter is required"})
		return
	}
	invoices, err := h.service.ListInvoicesByStatus(r.Context(), status)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, invoices)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	inv, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) recompute(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Recompute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) addJob(w http.ResponseWriter, r *http.Request) {
	var req AddJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	job, err := h.service.AddJob(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, job)
}

func (h *Handler) updateJobStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateJobStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	job, err := h.service.UpdateJobStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, job)
}

func (h *Handler) updateJobCost(w http.ResponseWriter, r *http.Request) {
	var req UpdateJobCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	job, err := h.service.UpdateJobCost(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, job)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	item, err := h.service.AddItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "item removed"})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func errStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "cannot transition"),
		strings.Contains(msg, "only draft"),
		strings.Contains(msg, "cannot add"):
		return http.StatusUnprocessableEntity
	case strings.Contains(msg, "required"),
		strings.Contains(msg, "invalid"),
		strings.Contains(msg, "must be"),
		strings.Contains(msg, "cannot be"),
		strings.Contains(msg, "can be set manually"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
