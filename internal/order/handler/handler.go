package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/fekuna/omnipos-order-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/{orderId}", h.GetOrder)
	r.Get("/orders/{orderId}/items", h.ListOrderItems)
	r.Patch("/orders/items/{orderItemId}/complete", h.SetItemCompletion)
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	created, err := h.uc.CreateOrder(r.Context(), req.ToInput())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderId")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	o, err := h.uc.GetOrder(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListOrderItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderId")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	items, err := h.uc.ListOrderItems(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *OrderHandler) SetItemCompletion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderItemId")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var req dto.SetCompletionRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	done := true
	if req.IsComplete != nil {
		done = *req.IsComplete
	}

	item, err := h.uc.SetItemCompletion(r.Context(), &dto.SetItemCompletionInput{OrderItemID: id, IsComplete: done})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

var errEmptyBody = apperror.Validation("request body is required")

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return apperror.Validationf("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validationf("%s must be a positive integer", param)
	}
	return id, nil
}
