package api

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/goodsign/monday"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lox/climateviz/internal/climate"
	"github.com/lox/climateviz/internal/dashboard"
	"github.com/lox/climateviz/internal/metrics"
	"github.com/lox/climateviz/internal/monitor"
	"github.com/lox/climateviz/internal/series"
)

type Server struct {
	svc       *dashboard.Service
	monitor   *monitor.Monitor
	liveProbe bool
	addr      string
	locale    monday.Locale
	logger    *zap.Logger
	tmpl      *template.Template
}

// NewServer returns a server for svc. mon may be nil, in which case /health
// probes the climate API on every request.
func NewServer(svc *dashboard.Service, mon *monitor.Monitor, addr string, locale monday.Locale, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	live := mon == nil
	if live {
		mon = monitor.New(svc, 0, logger)
	}
	return &Server{
		svc:       svc,
		monitor:   mon,
		liveProbe: live,
		addr:      addr,
		locale:    locale,
		logger:    logger.Named("http"),
		tmpl:      newTemplates(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "GET /{$}", s.handleIndex)
	s.handle(mux, "GET /chart", s.handleChart)
	s.handle(mux, "GET /map.png", s.handleMapCard)
	s.handle(mux, "GET /api/regions", s.handleAPIRegions)
	s.handle(mux, "POST /api/visualize", s.handleAPIVisualize)
	s.handle(mux, "POST /api/map", s.handleAPIMap)
	s.handle(mux, "GET /api/legend", s.handleAPILegend)
	s.handle(mux, "GET /api/export.csv", s.handleAPIExport)
	s.handle(mux, "GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// handle registers h under pattern with request IDs, access logging and
// request counting.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)

		metrics.HTTPRequestsTotal.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// statusFor maps an error to the HTTP status and the message shown to the
// client.
func statusFor(err error) (int, string) {
	var verr *dashboard.ValidationError
	var apiErr *climate.APIError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, apiErr.Message
	case errors.Is(err, series.ErrInvalidDate), errors.Is(err, series.ErrShapeMismatch):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes v before sending the status, so an unencodable value
// becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = json.Marshal(map[string]string{"error": "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(b, '\n'))
}
