package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Response is the envelope of every API reply.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Ingredient string `json:"ingredient,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

// WriteError maps err onto a status code. Internal failures are logged and
// replaced by an opaque message.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.ZapLogger, err error) {
	status := http.StatusInternalServerError
	body := &ErrorBody{Type: apperror.KindInternal.String(), Message: "internal server error"}

	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal:
		status = statusFor(appErr.Kind)
		body = &ErrorBody{Type: appErr.Kind.String(), Message: appErr.Error(), Ingredient: appErr.Ingredient}
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads this reply.
		status = 499
		body = &ErrorBody{Type: apperror.KindConflict.String(), Message: "request cancelled"}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
		body = &ErrorBody{Type: apperror.KindConflict.String(), Message: "request timed out, please retry"}
	default:
		log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: false, Error: body})
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindInsufficientInventory:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
