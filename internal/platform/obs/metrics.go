package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pitstop",
		Name:      "operation_duration_seconds",
		Help:      "Duration of store and source operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op", "outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitstop",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pitstop",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	IngestTargets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitstop",
		Name:      "ingest_targets_total",
		Help:      "Query targets processed by ingestion, by source and outcome.",
	}, []string{"source", "outcome"})

	IngestPlaces = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitstop",
		Name:      "ingest_places_total",
		Help:      "Places fetched from sources and committed to the store.",
	}, []string{"stage"})
)
