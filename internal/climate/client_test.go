package climate

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/climateviz/internal/httputil"
	"github.com/lox/climateviz/internal/models"
	"github.com/lox/climateviz/internal/series"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", httputil.NewClient(5*time.Second), nil)
}

func TestRegions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/regions/", r.URL.Path)
		io.WriteString(w, `[{"id":"Elheri","name":"Elheri"},{"id":"OumErrbia","name":"Oum Errbia"}]`)
	})

	regions, err := c.Regions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Region{
		{ID: "Elheri", Name: "Elheri"},
		{ID: "OumErrbia", Name: "Oum Errbia"},
	}, regions)
}

func TestVisualize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/visualize/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.VisualizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"temperature", "precipitation"}, req.Variables)
		assert.Equal(t, "Monthly", req.Aggregation)
		assert.Equal(t, "2023-01-01", req.StartDate)

		io.WriteString(w, `{
			"temperature": {"dates": ["2023-01-31", "2023-02-28"], "values": [11.2, 12.9],
				"is_predicted": [false, true], "unit": "°C", "region": "Elheri"},
			"precipitation": {"error": "Fichier Tp.nc introuvable"}
		}`)
	})

	resp, err := c.Visualize(context.Background(), models.VisualizeRequest{
		Variables:   []string{"temperature", "precipitation"},
		Aggregation: models.AggregationMonthly,
		Region:      "Elheri",
		StartDate:   "2023-01-01",
		EndDate:     "2023-02-28",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Temperature)
	assert.Equal(t, []bool{false, true}, resp.Temperature.IsPredicted)
	assert.Equal(t, "°C", resp.Temperature.Unit)

	inputs := resp.Inputs()
	assert.Contains(t, inputs, series.Temperature)
	assert.NotContains(t, inputs, series.Precipitation)

	missing := UnavailableVariables(resp, []series.Variable{series.Temperature, series.Precipitation})
	require.Len(t, missing, 1)
	assert.ErrorIs(t, missing[series.Precipitation], ErrVariableUnavailable)
	assert.Contains(t, missing[series.Precipitation].Error(), "Tp.nc")
}

func TestMapData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/map/", r.URL.Path)
		io.WriteString(w, `{"region":"Elmassira","coordinates":{"lat":32.0,"lon":-8.0},
			"temporal_mean":21.4,"unit":"°C","variable":"Température"}`)
	})

	resp, err := c.MapData(context.Background(), models.MapDataRequest{
		Variable: "temperature", Region: "Elmassira", StartDate: "2023-01-01", EndDate: "2023-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, -8.0, resp.Coordinates.Lon)
	require.NotNil(t, resp.TemporalMean)
	assert.Equal(t, 21.4, *resp.TemporalMean)
}

func TestMapData_NullMean(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"region":"X","coordinates":{"lat":32,"lon":-7},"temporal_mean":null,"unit":""}`)
	})

	resp, err := c.MapData(context.Background(), models.MapDataRequest{Variable: "precipitation", Region: "X"})
	require.NoError(t, err)
	assert.Nil(t, resp.TemporalMean)
}

func TestMapData_BareNaN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"region":"X","coordinates":{"lat":32,"lon":-7},"temporal_mean":NaN,"unit":"mm"}`)
	})

	_, err := c.MapData(context.Background(), models.MapDataRequest{Variable: "precipitation", Region: "X"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "map", apiErr.Endpoint)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "malformed map response")
}

func TestAPIError_JSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "Aucune région sélectionnée"}`)
	})

	_, err := c.Visualize(context.Background(), models.VisualizeRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Aucune région sélectionnée", apiErr.Message)
	assert.Equal(t, "visualize", apiErr.Endpoint)
}

func TestAPIError_HTMLBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html><body><h1>502 Bad Gateway</h1></body></html>")
	})

	_, err := c.Health(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "502 Bad Gateway", apiErr.Message)
}

func TestAPIError_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Regions(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Service Unavailable", apiErr.Message)
}

func TestSingleAttempt(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Regions(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Regions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"ok","message":"Backend is running",
			"data_files":{"T2m.nc":true,"Tp.nc":false,"Model_temp.pkl":true,"Model_precip.pkl":false}}`)
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, []string{"Model_precip.pkl", "Tp.nc"}, h.MissingFiles())
}
