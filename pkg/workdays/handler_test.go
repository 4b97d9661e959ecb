package workdays

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/primetver/pplan/internal/event_bus"
	"github.com/primetver/pplan/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, *RepositoryStub) {
	repo := NewRepositoryStub()
	svc := NewService(repo, NewCalculator(repo, DefaultSettings()), event_bus.NewEventBus())
	clock := &utils.MockClock{FixedNow: date(2024, 6, 15)}
	handler := NewHandler(svc, nil, clock)

	router := mux.NewRouter()
	router.HandleFunc("/api/workdays/override", handler.ListOverrides).Methods("GET")
	router.HandleFunc("/api/workdays/override", handler.SetOverride).Methods("PUT")
	router.HandleFunc("/api/workdays/override/{date}", handler.DeleteOverride).Methods("DELETE")
	router.HandleFunc("/api/workdays/time", handler.GetWorkingTime).Methods("GET")
	router.HandleFunc("/api/workdays/standards", handler.GetStandards).Methods("GET")
	router.HandleFunc("/api/workdays/import/ics", handler.ImportICS).Methods("POST")
	router.HandleFunc("/api/workdays/import/google", handler.ImportGoogle).Methods("POST")
	return router, repo
}

func TestHandler_GetWorkingTime(t *testing.T) {
	t.Run("should compute the working time of the range", func(t *testing.T) {
		router, _ := setupHandlerTest(t)
		req := httptest.NewRequest(http.MethodGet, "/api/workdays/time?from=2024-01-01&to=2024-01-07", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var result WorkingTimeDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, WorkingTimeDTO{From: "2024-01-01", To: "2024-01-07", Days: 7, Workdays: 5, NonWorkdays: 2, Hours: 40}, result)
	})

	t.Run("should reject a reversed range", func(t *testing.T) {
		router, _ := setupHandlerTest(t)
		req := httptest.NewRequest(http.MethodGet, "/api/workdays/time?from=2024-01-07&to=2024-01-01", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject an invalid date", func(t *testing.T) {
		router, _ := setupHandlerTest(t)
		req := httptest.NewRequest(http.MethodGet, "/api/workdays/time?from=yesterday", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid 'from' date")
	})
}

func TestHandler_Overrides(t *testing.T) {
	t.Run("should set, list and delete an override", func(t *testing.T) {
		router, _ := setupHandlerTest(t)

		body, _ := json.Marshal(OverrideDTO{Date: "2024-03-08", Kind: "HL", Label: "Women's Day"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/workdays/override", bytes.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/workdays/override?from=2024-03-01&to=2024-03-31", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var listed []OverrideDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
		assert.Equal(t, []OverrideDTO{{Date: "2024-03-08", Kind: "HL", Label: "Women's Day"}}, listed)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/workdays/override/2024-03-08", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/workdays/override/2024-03-08", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should validate the override", func(t *testing.T) {
		router, _ := setupHandlerTest(t)

		body, _ := json.Marshal(OverrideDTO{Date: "2024-03-08", Kind: "XX"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/workdays/override", bytes.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Kind must satisfy oneof")
	})
}

func TestHandler_GetStandards(t *testing.T) {
	router, _ := setupHandlerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/workdays/standards", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var rows []WorkingTimeDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rows))
	require.Len(t, rows, 17)
	assert.Equal(t, "2024", rows[16].Name)
	assert.Equal(t, 262, rows[16].Workdays)
}

func TestHandler_ImportICS(t *testing.T) {
	router, repo := setupHandlerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/workdays/import/ics", strings.NewReader(holidaysICS)))

	require.Equal(t, http.StatusOK, w.Code)
	var result ImportResultDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, ImportResultDTO{Source: "ics", Created: 3}, result)
	stored, err := repo.GetOverrides(ctx, date(2024, 1, 1), date(2024, 12, 31))
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestHandler_ImportGoogle_NotConfigured(t *testing.T) {
	router, _ := setupHandlerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/workdays/import/google", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
