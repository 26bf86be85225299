package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-order-service/internal/ingredient"
	"github.com/fekuna/omnipos-order-service/internal/ingredient/dto"
	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/fekuna/omnipos-order-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type IngredientHandler struct {
	uc     ingredient.UseCase
	logger logger.ZapLogger
}

func NewIngredientHandler(uc ingredient.UseCase, log logger.ZapLogger) *IngredientHandler {
	return &IngredientHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *IngredientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ingredients", h.ListIngredients)
	r.Get("/ingredients/{ingredientId}/movements", h.ListMovements)
}

type listResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

func (h *IngredientHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.IngredientFilters{
		NameQuery: q.Get("q"),
		Depleted:  q.Get("depleted") == "true",
		Page:      queryInt(q.Get("page"), 1),
		PageSize:  queryInt(q.Get("pageSize"), 0),
	}

	items, total, err := h.uc.ListIngredients(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *IngredientHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ingredientId"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, r, h.logger, apperror.Validation("ingredientId must be a positive integer"))
		return
	}

	q := r.URL.Query()
	filters := &dto.MovementFilters{
		IngredientID: id,
		MovementType: q.Get("type"),
		Page:         queryInt(q.Get("page"), 1),
		PageSize:     queryInt(q.Get("pageSize"), 50),
	}

	items, total, err := h.uc.ListMovements(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
		return v
	}
	return fallback
}
