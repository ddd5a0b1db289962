package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI dispatch latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "model", "success"},
	)

	aiPromptTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_prompt_tokens",
			Help:    "Prompt tokens per dispatch, as counted by the provider.",
			Buckets: []float64{16, 32, 64, 128, 256, 512, 1024, 2048, 4096},
		},
		[]string{"provider"},
	)

	aiTopicsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_topics_extracted_total",
			Help: "Sum of related topics extracted from AI replies per provider.",
		},
		[]string{"provider"},
	)

	aiFailureNotices = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_failure_notices_total",
			Help: "Synthetic assistant failure messages appended per provider.",
		},
		[]string{"provider"},
	)

	slotSaveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_save_failures_total",
			Help: "Best-effort slot writes that failed and were swallowed.",
		},
		[]string{"slot"},
	)

	slotCorruptLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_corrupt_loads_total",
			Help: "Slot reads that held unparsable data and fell back to defaults.",
		},
		[]string{"slot"},
	)

	snapshotWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_writes_total",
			Help: "Durable slot snapshots by outcome (ok/error).",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "API requests by route and status.",
		},
		[]string{"route", "status"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			aiCallsLatencyMs, aiPromptTokens, aiTopicsExtracted, aiFailureNotices,
			slotSaveFailures, slotCorruptLoads, snapshotWrites,
			httpRequests,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- AI helpers --------

func ObserveChatCall(provider, model string, latencyMs int, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func ObservePromptTokens(provider string, n int) {
	aiPromptTokens.WithLabelValues(norm(provider)).Observe(float64(n))
}

func AddTopicsExtracted(provider string, n int) {
	aiTopicsExtracted.WithLabelValues(norm(provider)).Add(float64(n))
}

func IncFailureNotice(provider string) {
	aiFailureNotices.WithLabelValues(norm(provider)).Inc()
}

// -------- persistence helpers --------

func IncSlotSaveFailure(slot string) {
	slotSaveFailures.WithLabelValues(norm(slot)).Inc()
}

func IncSlotCorrupt(slot string) {
	slotCorruptLoads.WithLabelValues(norm(slot)).Inc()
}

func IncSnapshot(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	snapshotWrites.WithLabelValues(outcome).Inc()
}

// -------- HTTP helpers --------

func IncHTTPRequest(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
