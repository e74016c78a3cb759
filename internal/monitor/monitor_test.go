package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/climateviz/internal/metrics"
	"github.com/lox/climateviz/internal/models"
)

type fakeProber struct {
	resp  *models.HealthCheckResponse
	err   error
	calls atomic.Int32
}

func (f *fakeProber) Health(ctx context.Context) (*models.HealthCheckResponse, error) {
	f.calls.Add(1)
	return f.resp, f.err
}

func TestProbe_Healthy(t *testing.T) {
	p := &fakeProber{resp: &models.HealthCheckResponse{
		Status:    "ok",
		DataFiles: map[string]bool{"T2m.nc": true, "Tp.nc": true},
	}}
	m := New(p, time.Minute, nil)

	_, ok := m.Last()
	assert.False(t, ok)

	snap := m.Probe(context.Background())
	assert.True(t, snap.Healthy())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamUp))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamDataFiles.WithLabelValues("Tp.nc")))

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, snap, last)
}

func TestProbe_MissingFiles(t *testing.T) {
	p := &fakeProber{resp: &models.HealthCheckResponse{
		Status:    "ok",
		DataFiles: map[string]bool{"T2m.nc": true, "Model_precip.pkl": false},
	}}
	snap := New(p, time.Minute, nil).Probe(context.Background())

	assert.True(t, snap.Up)
	assert.False(t, snap.Healthy())
	assert.Equal(t, []string{"Model_precip.pkl"}, snap.MissingFiles)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.UpstreamDataFiles.WithLabelValues("Model_precip.pkl")))
}

func TestProbe_Down(t *testing.T) {
	p := &fakeProber{err: errors.New("connection refused")}
	snap := New(p, time.Minute, nil).Probe(context.Background())

	assert.False(t, snap.Up)
	assert.False(t, snap.Healthy())
	assert.Equal(t, "connection refused", snap.Error)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.UpstreamUp))
}

func TestStart_ProbesImmediately(t *testing.T) {
	p := &fakeProber{resp: &models.HealthCheckResponse{Status: "ok"}}
	m := New(p, time.Hour, nil)
	require.NoError(t, m.Start())
	t.Cleanup(m.Stop)

	assert.Eventually(t, func() bool {
		_, ok := m.Last()
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, p.calls.Load(), int32(1))
}

func TestIntervalSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 60},
		{-time.Second, 60},
		{time.Nanosecond, 1},
		{500 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{time.Minute, 60},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, intervalSeconds(tt.in))
		})
	}
}
