package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ns = "disclosurebot"

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns, Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	PortalRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "portal_requests_total", Help: "Portal API requests",
	}, []string{"endpoint", "code"})
	PortalLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Name: "portal_request_seconds", Help: "Portal API latency",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 180},
	}, []string{"endpoint"})
	Uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "uploads_total", Help: "Disclosure uploads by outcome",
	}, []string{"section", "outcome"})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, DBPing, PortalRequests, PortalLatency, Uploads)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// ObservePortal — code=0 означает транспортную ошибку.
func ObservePortal(endpoint string, code int, d time.Duration) {
	class := "err"
	if code > 0 {
		class = strconv.Itoa(code/100) + "xx"
	}
	PortalRequests.WithLabelValues(endpoint, class).Inc()
	PortalLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

func ObserveUpload(section, outcome string) { Uploads.WithLabelValues(section, outcome).Inc() }
