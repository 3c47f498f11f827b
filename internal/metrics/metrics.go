package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	identifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecovision",
			Name:      "identify_requests_total",
			Help:      "Identification requests by image source and result",
		},
		[]string{"source", "result"},
	)

	identifyLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ecovision",
			Name:      "identify_request_duration_seconds",
			Help:      "Duration of identification requests by image source",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	recognizerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecovision",
			Name:      "recognizer_calls_total",
			Help:      "Recognizer calls by recognizer and result",
		},
		[]string{"recognizer", "result"},
	)

	recognizerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ecovision",
			Name:      "recognizer_duration_seconds",
			Help:      "Duration of recognizer calls",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"recognizer"},
	)

	tokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ecovision",
			Name:      "tokens_issued_total",
			Help:      "Access tokens issued",
		},
	)

	imagesResized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ecovision",
			Name:      "images_resized_total",
			Help:      "Images downscaled before recognition",
		},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(identifyRequests, identifyLatency, recognizerCalls, recognizerLatency, tokensIssued, imagesResized)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveIdentify(source, result string, dur time.Duration) {
	identifyRequests.WithLabelValues(source, result).Inc()
	identifyLatency.WithLabelValues(source).Observe(dur.Seconds())
}

func ObserveRecognizer(recognizer, result string, dur time.Duration) {
	recognizerCalls.WithLabelValues(recognizer, result).Inc()
	recognizerLatency.WithLabelValues(recognizer).Observe(dur.Seconds())
}

func IncTokensIssued() { tokensIssued.Inc() }
func IncResized()      { imagesResized.Inc() }
