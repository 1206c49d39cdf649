package bundler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submittedOperations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relayer_operations_submitted_total",
		Help: "Number of operations submitted to the bundler.",
	})

	submissionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relayer_operation_submission_failures_total",
		Help: "Number of operation submissions rejected by the bundler.",
	})
)
