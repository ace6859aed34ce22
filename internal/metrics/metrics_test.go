package metrics

import (
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.InvitationsCreated.Inc()
	m.CommentsPosted.WithLabelValues("yes").Inc()
	m.CommentsPosted.WithLabelValues("yes").Inc()
	m.GiftsSent.Inc()

	if got := testutil.ToFloat64(m.InvitationsCreated); got != 1 {
		t.Errorf("invitations created: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CommentsPosted.WithLabelValues("yes")); got != 2 {
		t.Errorf("comments posted: got %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"weddingcard_invitations_created_total",
		"weddingcard_comments_posted_total",
		"weddingcard_gifts_sent_total",
	} {
		if !names[want] {
			t.Errorf("expected %s to be gathered", want)
		}
	}
}

func TestCodeLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{connect.NewError(connect.CodeNotFound, errors.New("x")), "not_found"},
		{errors.New("plain"), "unknown"},
	}
	for _, tt := range tests {
		if got := codeLabel(tt.err); got != tt.want {
			t.Errorf("codeLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
