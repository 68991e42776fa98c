// Package metrics exports Prometheus metrics for client requests and
// realtime sessions, fed by the callback registry.
//
//	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := oaikit.NewClient(collector.Attach(oaikit.WithAPIKey(key))...)
//
//	sess, err := realtime.Connect(ctx, client.Provider(), "",
//	    realtime.WithCallbacks(collector.Registry()))
package metrics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	oaikit "github.com/blue-context/oaikit"
	"github.com/blue-context/oaikit/callback"
)

// LatencyBuckets suit model inference latencies, from 100ms to 2 minutes.
var LatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Collector holds the oaikit metrics.
//
// Thread Safety: Collector is safe for concurrent use.
type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
	realtime *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oaikit_requests_total",
				Help: "API requests by endpoint and status class",
			},
			[]string{"endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oaikit_request_duration_seconds",
				Help:    "API request duration including retries",
				Buckets: LatencyBuckets,
			},
			[]string{"endpoint"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oaikit_tokens_total",
				Help: "Tokens reported in response usage",
			},
			[]string{"endpoint", "model"},
		),
		realtime: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oaikit_realtime_events_total",
				Help: "Realtime events by direction and type",
			},
			[]string{"direction", "type"},
		),
	}
	for _, m := range []prometheus.Collector{c.requests, c.duration, c.tokens, c.realtime} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("%w: register metrics: %v", oaikit.ErrInvalidArgument, err)
		}
	}
	return c, nil
}

// ObserveSuccess records a successful request.
func (c *Collector) ObserveSuccess(_ context.Context, ev *callback.SuccessEvent) {
	c.requests.WithLabelValues(ev.Endpoint, statusClass(ev.StatusCode)).Inc()
	c.duration.WithLabelValues(ev.Endpoint).Observe(ev.Duration.Seconds())
	if ev.Tokens > 0 {
		c.tokens.WithLabelValues(ev.Endpoint, ev.Model).Add(float64(ev.Tokens))
	}
}

// ObserveFailure records a failed request. Transport failures have status
// "error".
func (c *Collector) ObserveFailure(_ context.Context, ev *callback.FailureEvent) {
	c.requests.WithLabelValues(ev.Endpoint, statusClass(ev.StatusCode)).Inc()
	c.duration.WithLabelValues(ev.Endpoint).Observe(ev.Duration.Seconds())
}

// ObserveRealtime records a realtime event.
func (c *Collector) ObserveRealtime(_ context.Context, ev *callback.RealtimeEvent) {
	c.realtime.WithLabelValues(string(ev.Direction), ev.Type).Inc()
}

// Registry returns a callback registry feeding the collector.
func (c *Collector) Registry() *callback.Registry {
	r := callback.NewRegistry()
	r.RegisterSuccess(c.ObserveSuccess)
	r.RegisterFailure(c.ObserveFailure)
	r.RegisterRealtime(c.ObserveRealtime)
	return r
}

// Attach appends the collector's callbacks to client options.
func (c *Collector) Attach(opts ...oaikit.ClientOption) []oaikit.ClientOption {
	return append(opts, oaikit.WithCallbacks(c.Registry()))
}

func statusClass(code int) string {
	if code < 100 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}
