// Package metrics holds the Prometheus collectors of the invitation server.
package metrics

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of one server.
type Metrics struct {
	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec

	InvitationsCreated prometheus.Counter
	CommentsPosted     *prometheus.CounterVec
	GiftsSent          prometheus.Counter
	GiftsConfirmed     prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weddingcard",
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and Connect code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weddingcard",
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling time by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		InvitationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weddingcard",
			Name:      "invitations_created_total",
			Help:      "Invitations created.",
		}),
		CommentsPosted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weddingcard",
			Name:      "comments_posted_total",
			Help:      "Guestbook comments by attendance answer.",
		}, []string{"attendance"}),
		GiftsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weddingcard",
			Name:      "gifts_sent_total",
			Help:      "Gift records submitted by guests.",
		}),
		GiftsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weddingcard",
			Name:      "gifts_confirmed_total",
			Help:      "Gifts confirmed by invitation owners.",
		}),
	}
	reg.MustRegister(
		m.rpcRequests,
		m.rpcDuration,
		m.InvitationsCreated,
		m.CommentsPosted,
		m.GiftsSent,
		m.GiftsConfirmed,
	)
	return m
}

// Interceptor records call counts and latency for every unary RPC.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			m.rpcDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			m.rpcRequests.WithLabelValues(procedure, codeLabel(err)).Inc()
			return resp, err
		}
	}
}

func codeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String()
	}
	return connect.CodeUnknown.String()
}
