package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/domain/mocks"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

func setupItemHandlerTest(t *testing.T) (*mocks.MockChecklistService, *http.ServeMux) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockService := mocks.NewMockChecklistService(ctrl)
	handler := NewItemHandler(mockService, newTestGate(t, ctrl), logger.NewTestLogger(t))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mockService, mux
}

func TestItemHandler_HandleList(t *testing.T) {
	t.Run("lists one kind", func(t *testing.T) {
		mockService, mux := setupItemHandlerTest(t)
		mockService.EXPECT().ListItems(gomock.Any(), domain.ItemKindDisclosure, "tx-1").
			Return([]*domain.Item{{ID: "d-1", Title: "Seller disclosure"}}, nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/items.list?kind=disclosure&transaction_id=tx-1", nil)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody(t, rec)["items"], 1)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, mux := setupItemHandlerTest(t)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/items.list?kind=chores&transaction_id=tx-1", nil)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestItemHandler_HandleToggle(t *testing.T) {
	t.Run("toggles", func(t *testing.T) {
		mockService, mux := setupItemHandlerTest(t)
		mockService.EXPECT().ToggleItem(gomock.Any(), domain.ItemKindTask, "t-1").
			Return(&domain.Item{ID: "t-1", Completed: true}, nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, authed(jsonRequest(t, http.MethodPost, "/api/items.toggle", map[string]string{
			"kind": "task",
			"id":   "t-1",
		})))

		assert.Equal(t, http.StatusOK, rec.Code)
		item := decodeBody(t, rec)["item"].(map[string]interface{})
		assert.Equal(t, true, item["completed"])
	})

	t.Run("missing id never reaches the service", func(t *testing.T) {
		_, mux := setupItemHandlerTest(t)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, authed(jsonRequest(t, http.MethodPost, "/api/items.toggle", map[string]string{"kind": "task"})))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "id is required", decodeBody(t, rec)["error"])
	})

	t.Run("missing item", func(t *testing.T) {
		mockService, mux := setupItemHandlerTest(t)
		mockService.EXPECT().ToggleItem(gomock.Any(), domain.ItemKindChecklist, "c-9").
			Return(nil, &domain.ErrNotFound{Entity: "checklist item", ID: "c-9"})

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, authed(jsonRequest(t, http.MethodPost, "/api/items.toggle", map[string]string{
			"kind": "checklist",
			"id":   "c-9",
		})))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestItemHandler_HandleCreateAndDelete(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		mockService, mux := setupItemHandlerTest(t)
		mockService.EXPECT().CreateItem(gomock.Any(), gomock.Any()).
			Return(&domain.Item{ID: "t-2", Title: "Order inspection"}, nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, authed(jsonRequest(t, http.MethodPost, "/api/items.create", map[string]string{
			"kind":           "task",
			"transaction_id": "tx-1",
			"title":          "Order inspection",
			"due_date":       "2026-03-14",
		})))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		mockService, mux := setupItemHandlerTest(t)
		mockService.EXPECT().DeleteItem(gomock.Any(), domain.ItemKindTask, "t-2").Return(nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, authed(jsonRequest(t, http.MethodPost, "/api/items.delete", map[string]string{
			"kind": "task",
			"id":   "t-2",
		})))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestItemHandler_HandleProgress(t *testing.T) {
	mockService, mux := setupItemHandlerTest(t)
	mockService.EXPECT().Progress(gomock.Any(), "tx-1").Return(&domain.ItemProgress{
		TransactionID: "tx-1",
		Total:         4,
		Completed:     1,
		Percent:       25,
	}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/items.progress?transaction_id=tx-1", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 25.0, body["percent"])
	assert.Equal(t, 4.0, body["total"])
}
