package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/nanooptics/internal/spectrum"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestPredict_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "final_demo_model", r.URL.Query().Get("model"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "grid.tif", header.Filename)
		assert.Equal(t, "image-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"wavelengths": []float64{400, 402, 404},
			"spectrum":    []float64{0.1, 0.8, 0.2},
			"peak":        402,
			"fwhm":        4,
			"features": map[string]interface{}{
				"mean_diameter": 41.2,
				"count":         17,
			},
		})
	})

	res, err := client.Predict(context.Background(), "grid.tif", strings.NewReader("image-bytes"), "")
	require.NoError(t, err)

	assert.Equal(t, []float64{400, 402, 404}, res.Wavelengths)
	assert.Equal(t, 402.0, res.Peak)
	assert.Equal(t, 4.0, res.FWHM)
	assert.Nil(t, res.Confidence)
	assert.Equal(t, 41.2, res.Features["mean_diameter"])
}

func TestPredict_ModelIsForwarded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mlp v2", r.URL.Query().Get("model"))
		w.Write([]byte(`{"wavelengths":[1,2],"spectrum":[0,1],"peak":2,"fwhm":1,"confidence":90}`))
	})

	res, err := client.Predict(context.Background(), "a.png", strings.NewReader("x"), "mlp v2")
	require.NoError(t, err)
	require.NotNil(t, res.Confidence)
	assert.Equal(t, 90, *res.Confidence)
}

func TestPredict_ErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"Feature extraction failed: No particles detected"}`, "Feature extraction failed: No particles detected"},
		{"list detail", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, `[{"msg":"field required"}]`},
		{"no detail", http.StatusInternalServerError, `{}`, "Prediction failed"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Prediction failed"},
		{"empty detail", http.StatusInternalServerError, `{"detail":""}`, "Prediction failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Predict(context.Background(), "a.png", strings.NewReader("x"), "m")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.wantDetail, Detail(err))
		})
	}
}

func TestPredict_InvalidSpectrum(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"wavelengths":[1,2,3],"spectrum":[0,1],"peak":2,"fwhm":1}`))
	})

	_, err := client.Predict(context.Background(), "a.png", strings.NewReader("x"), "m")
	assert.ErrorIs(t, err, spectrum.ErrLengthMismatch)
	assert.Equal(t, "Prediction failed", Detail(err))
}

func TestPredict_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Predict(context.Background(), "a.png", strings.NewReader("x"), "m")
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	})
	assert.NoError(t, client.Health(context.Background()))

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"degraded"}`))
	})
	assert.Error(t, client.Health(context.Background()))
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}
