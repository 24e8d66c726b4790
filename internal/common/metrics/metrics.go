// internal/common/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Request outcome label values.
const (
	OutcomeOK                    = "ok"
	OutcomeNullResult            = "null_result"
	OutcomeConnectionUnavailable = "connection_unavailable"
	OutcomeTransportFailed       = "transport_failed"
	OutcomeMalformedResponse     = "malformed_response"
)

// Submission result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultAborted = "aborted"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_submitter_requests_total",
			Help: "Total number of requests sent to the flashcard endpoint",
		},
		[]string{"action", "outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "card_submitter_request_duration_seconds",
			Help: "Duration of flashcard endpoint requests in seconds",
		},
		[]string{"action"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_submitter_submissions_total",
			Help: "Total number of card submissions by result",
		},
		[]string{"result"},
	)
)

// Push sends everything in gatherer to a Pushgateway under the given job name.
func Push(ctx context.Context, pushgatewayURL, job string, gatherer prometheus.Gatherer) error {
	if err := push.New(pushgatewayURL, job).Gatherer(gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", pushgatewayURL, err)
	}
	return nil
}
