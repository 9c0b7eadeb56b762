package llm

import (
	"context"
	"time"

	"github.com/universal-automation-wiki/iterate/internal/metrics"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

// Instrumented wraps a completer with request and latency metrics.
type Instrumented struct {
	next ports.Completer
	m    *metrics.Metrics
}

// NewInstrumented decorates a completer with the shared collectors.
func NewInstrumented(next ports.Completer, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: next, m: m}
}

func (i *Instrumented) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	start := time.Now()
	content, err := i.next.Complete(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.m.CompletionRequests.WithLabelValues(req.Model, outcome).Inc()
	i.m.CompletionSeconds.WithLabelValues(req.Model).Observe(time.Since(start).Seconds())

	return content, err
}
