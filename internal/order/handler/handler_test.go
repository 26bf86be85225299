package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUseCase struct {
	created    *dto.CreateOrderInput
	completion *dto.SetItemCompletionInput
	err        error
}

func (f *fakeUseCase) CreateOrder(_ context.Context, in *dto.CreateOrderInput) (*model.Order, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Order{ID: 1, EmployeeID: in.EmployeeID, TotalCost: in.TotalCost, OrderWeek: in.OrderWeek}, nil
}

func (f *fakeUseCase) GetOrder(_ context.Context, id int64) (*model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Order{ID: id}, nil
}

func (f *fakeUseCase) ListOrderItems(_ context.Context, orderID int64) ([]model.OrderItemDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []model.OrderItemDetail{{
		OrderItem: model.OrderItem{ID: 3, OrderID: orderID, MenuItemID: 1, Quantity: 2},
		Name:      "Milk Tea",
		Price:     decimal.RequireFromString("4.50"),
	}}, nil
}

func (f *fakeUseCase) SetItemCompletion(_ context.Context, in *dto.SetItemCompletionInput) (*model.OrderItem, error) {
	f.completion = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.OrderItem{ID: in.OrderItemID, IsComplete: in.IsComplete}, nil
}

func serve(t *testing.T, uc *fakeUseCase, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	r := chi.NewRouter()
	NewOrderHandler(uc, logger.NewNop()).RegisterRoutes(r)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestCreateOrder_Created(t *testing.T) {
	uc := &fakeUseCase{}
	body := `{"employeeid": 4, "customerid": null, "totalcost": 9.5, "orderweek": 12,
		"orderItems": [{"menuitemid": 1, "quantity": 2}, {"menuitemid": 3, "quantity": 1}]}`

	rec, out := serve(t, uc, http.MethodPost, "/orders", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, out["success"])
	require.NotNil(t, uc.created)
	assert.Equal(t, int64(4), uc.created.EmployeeID)
	assert.Nil(t, uc.created.CustomerID)
	assert.True(t, decimal.RequireFromString("9.5").Equal(uc.created.TotalCost))
	require.Len(t, uc.created.Items, 2)
	assert.Equal(t, int64(3), uc.created.Items[1].MenuItemID)

	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["orderid"])
}

func TestCreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		status   int
		wantType string
	}{
		{"malformed json", `{"employeeid":`, nil, http.StatusBadRequest, "ValidationError"},
		{"empty body", ``, nil, http.StatusBadRequest, "ValidationError"},
		{"insufficient", `{"employeeid":1,"orderweek":1,"orderItems":[{"menuitemid":1,"quantity":1}]}`,
			apperror.InsufficientInventory("Milk", 5, 3), http.StatusBadRequest, "InsufficientInventoryError"},
		{"conflict", `{"employeeid":1,"orderweek":1,"orderItems":[{"menuitemid":1,"quantity":1}]}`,
			apperror.Conflict(assert.AnError), http.StatusConflict, "ConflictError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := serve(t, &fakeUseCase{err: tt.err}, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, out["success"])
			errBody := out["error"].(map[string]interface{})
			assert.Equal(t, tt.wantType, errBody["type"])
		})
	}
}

func TestListOrderItems(t *testing.T) {
	rec, out := serve(t, &fakeUseCase{}, http.MethodGet, "/orders/8/items", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	items := out["data"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Milk Tea", item["name"])
	assert.Equal(t, "4.5", item["price"])
	assert.Equal(t, float64(8), item["orderid"])

	rec, _ = serve(t, &fakeUseCase{err: apperror.NotFoundf("order 8 not found")}, http.MethodGet, "/orders/8/items", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = serve(t, &fakeUseCase{}, http.MethodGet, "/orders/abc/items", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	rec, out := serve(t, &fakeUseCase{}, http.MethodGet, "/orders/5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), out["data"].(map[string]interface{})["orderid"])
}

func TestSetItemCompletion_DefaultsToComplete(t *testing.T) {
	uc := &fakeUseCase{}
	rec, _ := serve(t, uc, http.MethodPatch, "/orders/items/11/complete", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.completion)
	assert.Equal(t, int64(11), uc.completion.OrderItemID)
	assert.True(t, uc.completion.IsComplete)

	uc = &fakeUseCase{}
	rec, _ = serve(t, uc, http.MethodPatch, "/orders/items/11/complete", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, uc.completion.IsComplete)
}

func TestSetItemCompletion_Reopen(t *testing.T) {
	uc := &fakeUseCase{}
	rec, out := serve(t, uc, http.MethodPatch, "/orders/items/11/complete", `{"isComplete": false}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, uc.completion.IsComplete)
	assert.Equal(t, false, out["data"].(map[string]interface{})["iscomplete"])
}

func TestSetItemCompletion_NotFound(t *testing.T) {
	uc := &fakeUseCase{err: apperror.NotFoundf("order item 11 not found")}
	rec, out := serve(t, uc, http.MethodPatch, "/orders/items/11/complete", `{"isComplete": true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFoundError", out["error"].(map[string]interface{})["type"])
}
