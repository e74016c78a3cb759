package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climateviz_upstream_calls_total",
			Help: "Total climate API calls",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "climateviz_upstream_latency_seconds",
			Help:    "Climate API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	UpstreamUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "climateviz_upstream_up",
			Help: "1 if the last climate API health probe succeeded",
		},
	)

	UpstreamDataFiles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "climateviz_upstream_data_file_present",
			Help: "1 if the climate API reports the data file as present",
		},
		[]string{"file"},
	)

	RecordsMerged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climateviz_records_merged_total",
			Help: "Total merged chart records produced",
		},
		[]string{"region"},
	)

	MergeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "climateviz_merge_errors_total",
			Help: "Total merges rejected because of malformed series data",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climateviz_http_requests_total",
			Help: "Total HTTP requests served",
		},
		[]string{"route", "code"},
	)
)
