// Package monitor periodically probes the climate API health endpoint and
// publishes the result as prometheus gauges and a snapshot for /health.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/lox/climateviz/internal/metrics"
	"github.com/lox/climateviz/internal/models"
)

const probeTimeout = 10 * time.Second

// Prober reports the climate API's health.
type Prober interface {
	Health(ctx context.Context) (*models.HealthCheckResponse, error)
}

// Snapshot is the outcome of one probe.
type Snapshot struct {
	CheckedAt    time.Time       `json:"checked_at"`
	Up           bool            `json:"up"`
	Status       string          `json:"status,omitempty"`
	Message      string          `json:"message,omitempty"`
	DataFiles    map[string]bool `json:"data_files,omitempty"`
	MissingFiles []string        `json:"missing_files,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// Healthy reports whether the API answered "ok" with every data file present.
func (s Snapshot) Healthy() bool {
	return s.Up && s.Status == "ok" && len(s.MissingFiles) == 0
}

type Monitor struct {
	prober    Prober
	interval  time.Duration
	logger    *zap.Logger
	scheduler *gocron.Scheduler

	mu   sync.RWMutex
	last *Snapshot
}

func New(prober Prober, interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		prober:    prober,
		interval:  interval,
		logger:    logger.Named("monitor"),
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Probe checks the API once and records the result.
func (m *Monitor) Probe(ctx context.Context) Snapshot {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	snap := Snapshot{CheckedAt: time.Now()}
	h, err := m.prober.Health(ctx)
	if err != nil {
		snap.Error = err.Error()
		metrics.UpstreamUp.Set(0)
		m.logger.Warn("health probe failed", zap.Error(err))
	} else {
		snap.Up = true
		snap.Status = h.Status
		snap.Message = h.Message
		snap.DataFiles = h.DataFiles
		snap.MissingFiles = h.MissingFiles()
		metrics.UpstreamUp.Set(1)
		for name, present := range h.DataFiles {
			v := 0.0
			if present {
				v = 1
			}
			metrics.UpstreamDataFiles.WithLabelValues(name).Set(v)
		}
		if len(snap.MissingFiles) > 0 {
			m.logger.Warn("climate api data files missing", zap.Strings("files", snap.MissingFiles))
		}
	}

	m.mu.Lock()
	m.last = &snap
	m.mu.Unlock()
	return snap
}

// Last returns the most recent snapshot, if any probe has run.
func (m *Monitor) Last() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return Snapshot{}, false
	}
	return *m.last, true
}

// Start schedules the probe every interval, running the first one now.
func (m *Monitor) Start() error {
	seconds := intervalSeconds(m.interval)
	_, err := m.scheduler.Every(seconds).Seconds().Do(func() {
		m.Probe(context.Background())
	})
	if err != nil {
		return err
	}

	m.logger.Info("probing climate api", zap.Int("interval_seconds", seconds))
	m.scheduler.StartAsync()
	return nil
}

// intervalSeconds converts d to the whole seconds gocron schedules in,
// rounding up so a positive sub-second interval becomes 1s. A non-positive
// interval falls back to one minute.
func intervalSeconds(d time.Duration) int {
	if d <= 0 {
		return 60
	}
	return int((d + time.Second - 1) / time.Second)
}

// Stop cancels future probes.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}
