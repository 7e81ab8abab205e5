package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Diary lifecycle events counted by RecordDiaryEvent.
const (
	EventDiaryCreated   = "diary_created"
	EventMemberJoined   = "member_joined"
	EventMemberLeft     = "member_left"
	EventHistoryStarted = "history_started"
	EventHistoryClosed  = "history_closed"
	EventAccountDeleted = "account_deleted"
)

// Login outcomes counted by RecordLogin.
const (
	LoginNewUser      = "new_user"
	LoginExistingUser = "existing_user"
	LoginDeletedUser  = "deleted_user"
	LoginFailed       = "failed"
)

// Recorder is the metrics surface used by services and workers.
type Recorder interface {
	RecordDiaryEvent(event string)
	RecordLogin(outcome string)
	RecordNotification(success bool)
}

// Collector records application metrics into a Prometheus registry.
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	diaryEvents   *prometheus.CounterVec
	logins        *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "palette_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "palette_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		diaryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "palette_diary_events_total",
			Help: "Diary lifecycle events.",
		}, []string{"event"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "palette_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "palette_notifications_total",
			Help: "Published notifications by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.diaryEvents,
		c.logins,
		c.notifications,
	)

	return c
}

// RecordDiaryEvent counts a diary lifecycle event.
func (c *Collector) RecordDiaryEvent(event string) {
	c.diaryEvents.WithLabelValues(event).Inc()
}

// RecordLogin counts a login attempt.
func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// RecordNotification counts a notification publish attempt.
func (c *Collector) RecordNotification(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.notifications.WithLabelValues(result).Inc()
}

// RecordHTTPRequest counts a served request and observes its latency.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Middleware records every request passing through a chi router.
// Requests are labelled with the matched route pattern, not the raw path,
// so that path parameters do not explode label cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.RecordHTTPRequest(r.Method, routePattern(r), status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopRecorder discards every measurement.
type NopRecorder struct{}

func (NopRecorder) RecordDiaryEvent(string) {}
func (NopRecorder) RecordLogin(string)      {}
func (NopRecorder) RecordNotification(bool) {}
