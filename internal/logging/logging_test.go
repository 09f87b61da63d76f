package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Level(t *testing.T) {
	var buf bytes.Buffer
	closer, err := Setup(Options{Level: "warn", Console: &buf})
	require.NoError(t, err)
	defer closer()

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	closer, err := Setup(Options{Level: "chatty", Console: &buf})
	require.NoError(t, err)
	defer closer()

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.Contains(t, buf.String(), "Unknown log level")
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	var buf bytes.Buffer
	closer, err := Setup(Options{Level: "debug", File: path, Console: &buf})
	require.NoError(t, err)

	log.Debug().Str("predictionID", "abc").Msg("written to file")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"predictionID":"abc"`)
	assert.Contains(t, buf.String(), "written to file")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	closer, err := Setup(Options{Level: "info", Console: &buf})
	require.NoError(t, err)
	defer closer()

	handler := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), "HTTP request")
	assert.Contains(t, buf.String(), "/api/datasets")
	assert.Contains(t, buf.String(), "418")
}
