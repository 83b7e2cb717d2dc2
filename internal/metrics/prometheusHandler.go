package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var pipelineBusy = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "docqa_pipeline_busy",
	Help: "1 while a question or an ingestion is being processed",
})

var chunksIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docqa_chunks_ingested_total",
	Help: "Number of chunks embedded and stored",
})

var documentsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "docqa_documents_ingested_total",
	Help: "Ingestion attempts labelled by outcome",
}, []string{"outcome"})

var storeRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "docqa_store_repairs_total",
	Help: "Vector index delete-and-reinitialise runs labelled by trigger",
}, []string{"trigger"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func SetPipelineBusy(busy bool) {
	if busy {
		pipelineBusy.Set(1)
		return
	}
	pipelineBusy.Set(0)
}

func AddChunksIngested(n int) {
	chunksIngested.Add(float64(n))
}

func CaptureIngestOutcome(outcome string) {
	documentsIngested.WithLabelValues(outcome).Inc()
}

func CaptureStoreRepair(trigger string) {
	storeRepairs.WithLabelValues(trigger).Inc()
}

var askDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "docqa_ask_duration_seconds",
	Help:    "Total time spent answering one question.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureAskMetrics(status string, timeElapsed time.Duration) {
	askDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}
