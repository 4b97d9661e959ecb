package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, func()) {
	teardown := setup(t)
	handler := NewHandler(service)
	router := mux.NewRouter()
	router.HandleFunc("/api/assignment", handler.List).Methods("GET")
	router.HandleFunc("/api/assignment", handler.Create).Methods("POST")
	router.HandleFunc("/api/assignment/import", handler.Import).Methods("POST")
	router.HandleFunc("/api/assignment/regenerate", handler.Regenerate).Methods("POST")
	router.HandleFunc("/api/assignment/summary", handler.Summary).Methods("GET")
	router.HandleFunc("/api/assignment/{id}", handler.Get).Methods("GET")
	router.HandleFunc("/api/assignment/{id}", handler.Update).Methods("PUT")
	router.HandleFunc("/api/assignment/{id}", handler.Delete).Methods("DELETE")
	router.HandleFunc("/api/assignment/{id}/month", handler.MonthlyRecords).Methods("GET")
	router.HandleFunc("/api/assignment/{id}/regenerate", handler.Regenerate).Methods("POST")
	return router, teardown
}

func serve(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, bytes.NewReader(payload)))
	return w
}

var sampleDTO = AssignmentDTO{EmployeeId: 1, ProjectId: 2, StartDate: "2024-01-15", FinishDate: "2024-02-15", LoadPercent: 50}

func TestHandler_CreateAndReadMonthlyRecords(t *testing.T) {
	router, teardown := setupHandlerTest(t)
	defer teardown()

	w := serve(t, router, http.MethodPost, "/api/assignment", sampleDTO)
	require.Equal(t, http.StatusCreated, w.Code)
	var created AssignmentDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "PL", created.Status)

	w = serve(t, router, http.MethodGet, "/api/assignment/1/month", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []MonthlyRecordDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	require.Len(t, records, 2)
	assert.Equal(t, "2024-01", records[0].Month)
	assert.Equal(t, 13, records[0].DaysEngaged)
	assert.InDelta(t, 6.5, records[0].Volume, 1e-9)
	assert.Equal(t, "2024-02", records[1].Month)
}

func TestHandler_CreateWithoutDerivation(t *testing.T) {
	router, teardown := setupHandlerTest(t)
	defer teardown()

	w := serve(t, router, http.MethodPost, "/api/assignment?skipDerivation=true", sampleDTO)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(t, router, http.MethodGet, "/api/assignment/1/month", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = serve(t, router, http.MethodPost, "/api/assignment/1/regenerate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"regenerated": 1}`, w.Body.String())
}

func TestHandler_Validation(t *testing.T) {
	router, teardown := setupHandlerTest(t)
	defer teardown()

	t.Run("should reject load above 100", func(t *testing.T) {
		invalid := sampleDTO
		invalid.LoadPercent = 150

		w := serve(t, router, http.MethodPost, "/api/assignment", invalid)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject a reversed range", func(t *testing.T) {
		invalid := sampleDTO
		invalid.FinishDate = "2024-01-01"

		w := serve(t, router, http.MethodPost, "/api/assignment", invalid)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid assignment")
	})

	t.Run("should reject a mismatching id", func(t *testing.T) {
		mismatching := sampleDTO
		mismatching.Id = 5

		w := serve(t, router, http.MethodPut, "/api/assignment/4", mismatching)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should return 404 for unknown assignments", func(t *testing.T) {
		w := serve(t, router, http.MethodPut, "/api/assignment/4", sampleDTO)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_ImportAndRegenerate(t *testing.T) {
	router, teardown := setupHandlerTest(t)
	defer teardown()

	w := serve(t, router, http.MethodPost, "/api/assignment/import", ImportDTO{Assignments: []AssignmentDTO{sampleDTO, sampleDTO}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(t, router, http.MethodGet, "/api/assignment/2/month", nil)
	assert.JSONEq(t, "[]", w.Body.String())

	w = serve(t, router, http.MethodPost, "/api/assignment/regenerate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"regenerated": 2}`, w.Body.String())

	w = serve(t, router, http.MethodGet, "/api/assignment?employeeId=1&from=2024-02-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []AssignmentDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
	assert.Len(t, listed, 2)

	w = serve(t, router, http.MethodDelete, "/api/assignment/2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_ImportRequiresAssignments(t *testing.T) {
	router, teardown := setupHandlerTest(t)
	defer teardown()

	w := serve(t, router, http.MethodPost, "/api/assignment/import", ImportDTO{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Summary(t *testing.T) {
	router, teardown := setupHandlerTest(t)
	defer teardown()
	w := serve(t, router, http.MethodPost, "/api/assignment", sampleDTO)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(t, router, http.MethodGet, "/api/assignment/summary?employeeId=1&projectId=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var summary SummaryDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.Equal(t, 24, summary.Workdays)
	assert.InDelta(t, 12, summary.Volume, 1e-9)
	assert.InDelta(t, 50, summary.Percent, 1e-9)
	require.NotNil(t, summary.StartDate)
	assert.Equal(t, "2024-01-15", *summary.StartDate)
}
