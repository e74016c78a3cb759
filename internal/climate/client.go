// Package climate is a client for the remote climate API that serves
// regional temperature and precipitation series, including model
// predictions past the last observed date.
//
// Every call is a single attempt bounded by the caller's context and the
// HTTP client timeout. Failures are returned to the caller as-is.
package climate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/lox/climateviz/internal/htmlutil"
	"github.com/lox/climateviz/internal/metrics"
	"github.com/lox/climateviz/internal/models"
	"github.com/lox/climateviz/internal/series"
)

const DefaultBaseURL = "http://localhost:8000/api"

// maxErrorBody caps how much of an error response is read into a message.
const maxErrorBody = 64 << 10

// ErrVariableUnavailable marks a variable the API could not serve.
var ErrVariableUnavailable = errors.New("variable unavailable")

// APIError is a non-2xx or undecodable response from the climate API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("climate api %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, client *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger.Named("climate"),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Regions(ctx context.Context) ([]models.Region, error) {
	var regions []models.Region
	if err := c.do(ctx, http.MethodGet, "regions/", nil, &regions); err != nil {
		return nil, err
	}
	return regions, nil
}

func (c *Client) Visualize(ctx context.Context, req models.VisualizeRequest) (*models.VisualizeResponse, error) {
	var resp models.VisualizeResponse
	if err := c.do(ctx, http.MethodPost, "visualize/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) MapData(ctx context.Context, req models.MapDataRequest) (*models.MapDataResponse, error) {
	var resp models.MapDataResponse
	if err := c.do(ctx, http.MethodPost, "map/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Health(ctx context.Context) (*models.HealthCheckResponse, error) {
	var resp models.HealthCheckResponse
	if err := c.do(ctx, http.MethodGet, "health/", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	name := strings.TrimSuffix(endpoint, "/")

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", name, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.UpstreamLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamCallsTotal.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			Endpoint:   name,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, b),
		}
		c.logger.Warn("api error",
			zap.String("endpoint", name),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	// A body that is not valid JSON, such as one carrying bare NaN tokens, is
	// reported as a bad upstream response.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(name, "decode_error").Inc()
		c.logger.Warn("malformed response", zap.String("endpoint", name), zap.Error(err))
		return &APIError{
			Endpoint:   name,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed %s response: %v", name, err),
		}
	}

	c.logger.Debug("api call",
		zap.String("endpoint", name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// errorMessage extracts a human-readable message from an error body: the
// {"error": "..."} field the API uses, an HTML page as text, or the raw body.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	text := string(body)
	if htmlutil.LooksLikeHTML(text) {
		text = htmlutil.ToText(text)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return http.StatusText(status)
	}
	return text
}

// UnavailableVariables returns, for each selected variable, why the API did
// not return a series for it. Variables with data are omitted.
func UnavailableVariables(resp *models.VisualizeResponse, selected []series.Variable) map[series.Variable]error {
	out := make(map[series.Variable]error)
	for _, v := range selected {
		data := resp.Variable(v)
		switch {
		case data == nil:
			out[v] = fmt.Errorf("%s: no data returned: %w", v, ErrVariableUnavailable)
		case data.Error != "":
			out[v] = fmt.Errorf("%s: %s: %w", v, data.Error, ErrVariableUnavailable)
		}
	}
	return out
}
