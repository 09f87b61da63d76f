// Package predictor talks to the external spectrum prediction service.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/nanooptics/internal/spectrum"
	"github.com/RMahshie/nanooptics/pkg/models"
)

// defaultDetail is reported when the service fails without a usable detail
const defaultDetail = "Prediction failed"

// APIError is a non-2xx answer from the prediction service
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prediction service returned %d: %s", e.StatusCode, e.Detail)
}

// Client predicts spectra from micrograph images
type Client interface {
	Predict(ctx context.Context, fileName string, image io.Reader, model string) (*models.SpectrumResult, error)
	Health(ctx context.Context) error
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds configuration for the prediction client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a prediction service client
func NewClient(cfg Config) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("PREDICTOR_URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &httpClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Predict uploads the image as the multipart "file" field and decodes the
// predicted spectrum
func (c *httpClient) Predict(ctx context.Context, fileName string, image io.Reader, model string) (*models.SpectrumResult, error) {
	if model == "" {
		model = models.DefaultModel
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	endpoint := c.baseURL + "/predict?" + url.Values{"model": {model}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("model", model).
		Str("fileName", fileName).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Prediction service responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var result models.SpectrumResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	if err := spectrum.Validate(result.Wavelengths, result.Spectrum); err != nil {
		return nil, fmt.Errorf("invalid prediction: %w", err)
	}

	return &result, nil
}

// Health checks that the service answers its health endpoint
func (c *httpClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	var status struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if status.Status != "ok" {
		return fmt.Errorf("prediction service unhealthy: %q", status.Status)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Detail: defaultDetail}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	// detail is usually a string, but validation errors carry a list
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		if detail != "" {
			apiErr.Detail = detail
		}
		return apiErr
	}
	if string(payload.Detail) != "null" {
		apiErr.Detail = string(payload.Detail)
	}
	return apiErr
}

// Detail returns the message to show for a prediction failure
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return defaultDetail
}
