// Package metrics exposes Prometheus instrumentation for the rally SDK.
//
// All constructors take an explicit prometheus.Registerer so embedding
// applications control the registry; nil receivers are no-ops so the
// SDK never forces instrumentation on its callers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Session instruments the session manager lifecycle.
type Session struct {
	state       prometheus.Gauge
	transitions *prometheus.CounterVec
	logins      *prometheus.CounterVec
	renewals    *prometheus.CounterVec
}

// Session state gauge values.
const (
	StateUndetermined  = 0
	StateAnonymous     = 1
	StateAuthenticated = 2
)

// NewSession creates and registers session metrics.
func NewSession(reg prometheus.Registerer) *Session {
	s := &Session{
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rally_session_state",
			Help: "Current session state (0=undetermined, 1=anonymous, 2=authenticated).",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_session_transitions_total",
			Help: "Session state transitions by resulting state.",
		}, []string{"state"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_session_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_session_renewals_total",
			Help: "Token renewal attempts by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(s.state, s.transitions, s.logins, s.renewals)
	}
	return s
}

// SetState records the current session state gauge value.
func (s *Session) SetState(v float64) {
	if s == nil {
		return
	}
	s.state.Set(v)
}

// ObserveTransition counts a transition into the named state.
func (s *Session) ObserveTransition(state string) {
	if s == nil {
		return
	}
	s.transitions.WithLabelValues(state).Inc()
}

// ObserveLogin counts a login attempt: "ok", "rejected", or "error".
func (s *Session) ObserveLogin(result string) {
	if s == nil {
		return
	}
	s.logins.WithLabelValues(result).Inc()
}

// ObserveRenewal counts a renewal attempt: "ok", "expired", or "error".
func (s *Session) ObserveRenewal(result string) {
	if s == nil {
		return
	}
	s.renewals.WithLabelValues(result).Inc()
}

// Client instruments outbound API requests.
type Client struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewClient creates and registers API client metrics.
func NewClient(reg prometheus.Registerer) *Client {
	c := &Client{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_api_requests_total",
			Help: "API requests by route and status.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rally_api_request_duration_seconds",
			Help:    "API request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	if reg != nil {
		reg.MustRegister(c.requests, c.duration)
	}
	return c
}

// ObserveRequest records one completed (or transport-failed) request.
func (c *Client) ObserveRequest(route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(route, status).Inc()
	c.duration.WithLabelValues(route).Observe(d.Seconds())
}
