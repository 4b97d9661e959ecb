package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/primetver/pplan/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogging(t *testing.T) {
	router := mux.NewRouter()
	SetupMiddleware(router)
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("should generate a request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Len(t, w.Header().Get(requestIdHeader), 36)
	})

	t.Run("should keep the id sent by the client", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(requestIdHeader, "abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc", w.Header().Get(requestIdHeader))
	})
}

func TestSetupLogging(t *testing.T) {
	level, out := log.GetLevel(), log.StandardLogger().Out
	t.Cleanup(func() {
		log.SetLevel(level)
		log.SetOutput(out)
	})

	t.Run("should reject an unknown level", func(t *testing.T) {
		assert.Error(t, SetupLogging(config.Log{Level: "loud"}))
	})

	t.Run("should write to the log file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "pplan.log")

		require.NoError(t, SetupLogging(config.Log{Level: "debug", File: file, MaxSizeMb: 1}))
		log.Debug("written to file")

		assert.Equal(t, log.DebugLevel, log.GetLevel())
		content, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Contains(t, string(content), "written to file")
	})
}
