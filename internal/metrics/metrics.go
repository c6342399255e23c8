// Package metrics holds the Prometheus collectors of the intake server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes.
const (
	OutcomeOK               = "ok"
	OutcomeMethodNotAllowed = "method_not_allowed"
	OutcomeMissingToken     = "missing_token"
	OutcomeInvalidJSON      = "invalid_json"
	OutcomeMissingFields    = "missing_fields"
	OutcomeFetchGitHub      = "fetch_github"
	OutcomeGitHubNon2xx     = "github_non_2xx"
	OutcomeRateLimited      = "rate_limited"
)

var (
	// Submissions counts submit requests by outcome.
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surveyrelay",
		Name:      "submissions_total",
		Help:      "Survey submissions by outcome.",
	}, []string{"outcome"})

	// UpstreamDuration observes GitHub API calls.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "surveyrelay",
		Name:      "github_request_duration_seconds",
		Help:      "GitHub API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
