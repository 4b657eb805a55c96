package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"devenv-keeper/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devenv_request_total",
			Help: "Total status API requests",
		},
		[]string{"path"},
	)

	requestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devenv_request_errors_total",
			Help: "Status API requests answered with status >= 400",
		},
		[]string{"path"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devenv_request_duration_seconds",
			Help:    "Duration of status API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	probeCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devenv_probe_total",
			Help: "Probe runs by kind and verdict",
		},
		[]string{"kind", "healthy"},
	)

	probeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devenv_probe_duration_seconds",
			Help:    "Duration of probe runs",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	environmentHealthy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "devenv_environment_healthy",
			Help: "1 when the last aggregate check of the scope was healthy",
		},
		[]string{"scope"},
	)

	totalRequests atomic.Int64
	totalErrors   atomic.Int64
	totalProbes   atomic.Int64
)

func init() {
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(requestErrors)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(probeCount)
	prometheus.MustRegister(probeDuration)
	prometheus.MustRegister(environmentHealthy)
}

func IncrementRequestCount(path string) {
	totalRequests.Add(1)
	requestCount.WithLabelValues(path).Inc()
}

func IncrementErrorCount(path string) {
	totalErrors.Add(1)
	requestErrors.WithLabelValues(path).Inc()
}

func RecordRequestDuration(path string, seconds float64) {
	requestDuration.WithLabelValues(path).Observe(seconds)
}

// GetTotalRequestCount requests served since start
func GetTotalRequestCount() int64 {
	return totalRequests.Load()
}

// GetTotalErrorCount failed requests since start
func GetTotalErrorCount() int64 {
	return totalErrors.Load()
}

// GetTotalProbeCount probes run since start
func GetTotalProbeCount() int64 {
	return totalProbes.Load()
}

// RecordProbe counts one finished probe
func RecordProbe(res models.ProbeResult) {
	totalProbes.Add(1)
	probeCount.WithLabelValues(string(res.Kind), strconv.FormatBool(res.Healthy)).Inc()
	probeDuration.WithLabelValues(string(res.Kind)).Observe(res.Latency.Seconds())
}

// RecordReport publishes the verdict of an aggregate report
func RecordReport(report *models.AggregateReport) {
	v := 0.0
	if report.Overall {
		v = 1
	}
	environmentHealthy.WithLabelValues(report.Scope.String()).Set(v)
}

/**
 * Push the devenv metrics to a Pushgateway
 * @param {context.Context} ctx - Bounds the push request
 * @param {string} addr - Pushgateway URL
 * @param {string} job - Job label of the pushed group
 * @returns {error} Returns error when the gateway rejects or cannot be reached
 */
func PushMetrics(ctx context.Context, addr, job string) error {
	if addr == "" {
		return fmt.Errorf("pushgateway address: %w", models.ErrInvalidInput)
	}
	err := push.New(addr, job).
		Collector(probeCount).
		Collector(probeDuration).
		Collector(environmentHealthy).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", addr, err)
	}
	return nil
}

// WriteMetrics writes the devenv_* families in the text exposition format
func WriteMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "devenv_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
