package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/service"
)

// ExpenseHandler handles HTTP requests for expense operations. Every route
// must be mounted behind middleware.Authenticate.
type ExpenseHandler struct {
	service *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(svc *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: svc}
}

// HandleList handles GET /expenses requests.
func (h *ExpenseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	expenses, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ExpenseListResponse{Expenses: expenses})
}

// HandleCreate handles POST /expenses requests.
func (h *ExpenseHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.ExpenseEnvelope{Expense: expense})
}

// HandleSummary handles GET /expenses/summary requests.
func (h *ExpenseHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// HandleBulkDelete handles DELETE /expenses/bulk requests.
func (h *ExpenseHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.BulkDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deleted, err := h.service.BulkDelete(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BulkDeleteResponse{DeletedCount: deleted})
}

// HandleDelete handles DELETE /expenses/{id} requests.
func (h *ExpenseHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if len(id) > 64 {
		writeJSON(w, http.StatusNotFound, errorResponse(service.ErrExpenseNotFound.Error()))
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
