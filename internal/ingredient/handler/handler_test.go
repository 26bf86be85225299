package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/ingredient/repository"
	"github.com/fekuna/omnipos-order-service/internal/ingredient/usecase"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database/dbtest"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	db := dbtest.Open(t)
	dbtest.Exec(t, db, `INSERT INTO ingredients (id, name, remaining) VALUES (1, 'Boba', 100), (2, 'Milk', 0)`)

	repo := repository.NewSQLRepository(db)
	_, err := repo.Debit(context.Background(), 1, 10, model.MovementRef{Type: model.ReferenceOrderItem, ID: 4})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewIngredientHandler(usecase.NewIngredientUseCase(repo, logger.NewNop()), logger.NewNop()).RegisterRoutes(r)
	return r
}

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		Items []map[string]interface{} `json:"items"`
		Total int                      `json:"total"`
	} `json:"data"`
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestListIngredients(t *testing.T) {
	h := newRouter(t)

	rec, out := get(t, h, "/ingredients")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, out.Data.Total)
	assert.Equal(t, "Boba", out.Data.Items[0]["name"])
	assert.Equal(t, float64(90), out.Data.Items[0]["remaining"])

	_, out = get(t, h, "/ingredients?depleted=true")
	require.Len(t, out.Data.Items, 1)
	assert.Equal(t, "Milk", out.Data.Items[0]["name"])
}

func TestListMovements(t *testing.T) {
	h := newRouter(t)

	rec, out := get(t, h, "/ingredients/1/movements")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, out.Data.Total)
	assert.Equal(t, model.MovementDebit, out.Data.Items[0]["movementtype"])
	assert.Equal(t, float64(-10), out.Data.Items[0]["quantitychange"])

	rec, _ = get(t, h, "/ingredients/9/movements")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = get(t, h, "/ingredients/x/movements")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
