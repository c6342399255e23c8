package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"surveyrelay/internal/metrics"
	"surveyrelay/internal/model"
	"surveyrelay/internal/service"
	"surveyrelay/internal/transport/rest/middleware"
)

// maxUpstreamBody caps the GitHub body echoed back on a non-2xx reply.
const maxUpstreamBody = 4000

// maxRequestBody caps the submit request body.
const maxRequestBody = 64 << 10

var errTrailingData = errors.New("unexpected data after JSON value")

// SubmitHandler handles survey submissions
type SubmitHandler struct {
	submitSvc *service.SubmitService
	now       func() time.Time
}

// NewSubmitHandler creates a new submit handler
func NewSubmitHandler(submitSvc *service.SubmitService) *SubmitHandler {
	return &SubmitHandler{submitSvc: submitSvc, now: time.Now}
}

// envelope carries the fields present on every submit response.
type envelope struct {
	OK        bool   `json:"ok"`
	RequestID string `json:"requestId"`
	Time      string `json:"time"`
	Ray       string `json:"ray"`
}

// SubmitResponse is the 200 body
type SubmitResponse struct {
	envelope
	Message string          `json:"message"`
	Issue   *model.IssueRef `json:"issue"`
}

// ErrorResponse is the body of every failed submission. Only the fields
// relevant to the failure are set.
type ErrorResponse struct {
	envelope
	Error            string            `json:"error"`
	Stage            string            `json:"stage,omitempty"`
	Detail           *errorDetail      `json:"detail,omitempty"`
	Missing          []string          `json:"missing,omitempty"`
	Received         *model.Submission `json:"received,omitempty"`
	TimeoutMS        int64             `json:"timeoutMs,omitempty"`
	GHURL            string            `json:"ghUrl,omitempty"`
	GitHubStatus     int               `json:"githubStatus,omitempty"`
	GitHubStatusText string            `json:"githubStatusText,omitempty"`
	GitHubBody       *string           `json:"githubBody,omitempty"`
	Hint             interface{}       `json:"hint,omitempty"`
}

// usageHint is returned with 405 responses.
type usageHint struct {
	URL         string            `json:"url"`
	Method      string            `json:"method"`
	Headers     map[string]string `json:"headers"`
	BodyExample model.Submission  `json:"body_example"`
}

var upstreamHint = []string{
	"1) check that GITHUB_TOKEN can create issues in the repository",
	"2) check GITHUB_OWNER and GITHUB_REPO",
	"3) GitHub may be rate limiting or degraded",
}

// Submit handles POST /api/submit
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	env := envelope{
		RequestID: middleware.GetRequestID(r.Context()),
		Time:      nowString(now),
		Ray:       r.Header.Get("CF-Ray"),
	}

	if r.Method != http.MethodPost {
		metrics.Submissions.WithLabelValues(metrics.OutcomeMethodNotAllowed).Inc()
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			envelope: env,
			Error:    "Use POST only.",
			Hint: usageHint{
				URL:     r.URL.Path,
				Method:  http.MethodPost,
				Headers: map[string]string{"Content-Type": "application/json"},
				BodyExample: model.Submission{
					Language:   "en",
					PlayerName: "TEST",
					Q2Time:     "A",
					Q3Time:     "B",
					Q4Day:      "C",
				},
			},
		})
		return
	}

	if err := h.submitSvc.CheckConfig(); err != nil {
		metrics.Submissions.WithLabelValues(metrics.OutcomeMissingToken).Inc()
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			envelope: env,
			Error:    "Missing GITHUB_TOKEN in server configuration.",
		})
		return
	}

	var req model.SubmitRequest
	if err := decodeBody(w, r, &req); err != nil {
		metrics.Submissions.WithLabelValues(metrics.OutcomeInvalidJSON).Inc()
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			envelope: env,
			Error:    "Invalid JSON body.",
			Detail:   detailOf("SyntaxError", err),
		})
		return
	}

	v := req.Validate()
	if !v.OK() {
		metrics.Submissions.WithLabelValues(metrics.OutcomeMissingFields).Inc()
		received := v.Submission
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			envelope: env,
			Error:    "Missing required fields.",
			Missing:  v.Missing,
			Received: &received,
		})
		return
	}

	sub := v.Submission
	sub.Timestamp = env.Time

	issue, err := h.submitSvc.Submit(r.Context(), sub)
	if err != nil {
		h.writeUpstreamError(w, env, err)
		return
	}

	metrics.Submissions.WithLabelValues(metrics.OutcomeOK).Inc()
	resp := SubmitResponse{envelope: env, Message: "Submitted."}
	resp.OK = true
	if issue != nil {
		resp.Issue = &model.IssueRef{Number: issue.Number, URL: issue.HTMLURL}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SubmitHandler) writeUpstreamError(w http.ResponseWriter, env envelope, err error) {
	var statusErr *service.StatusError
	if errors.As(err, &statusErr) {
		metrics.Submissions.WithLabelValues(metrics.OutcomeGitHubNon2xx).Inc()
		body := service.LimitText(statusErr.Body, maxUpstreamBody)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			envelope:         env,
			Stage:            statusErr.Stage(),
			Error:            "GitHub API returned error.",
			GitHubStatus:     statusErr.StatusCode,
			GitHubStatusText: statusErr.StatusText,
			GitHubBody:       &body,
			Hint:             upstreamHint,
		})
		return
	}

	if errors.Is(err, service.ErrMissingToken) {
		metrics.Submissions.WithLabelValues(metrics.OutcomeMissingToken).Inc()
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			envelope: env,
			Error:    "Missing GITHUB_TOKEN in server configuration.",
		})
		return
	}

	// Anything else failed before a response arrived.
	metrics.Submissions.WithLabelValues(metrics.OutcomeFetchGitHub).Inc()
	name := "Error"
	var fetchErr *service.FetchError
	if errors.As(err, &fetchErr) && errors.Is(err, context.DeadlineExceeded) {
		name = "AbortError"
	}
	writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
		envelope:  env,
		Stage:     service.StageFetchGitHub,
		Error:     "Upstream request failed (fetch/GitHub).",
		Detail:    detailOf(name, err),
		TimeoutMS: h.submitSvc.Timeout().Milliseconds(),
		GHURL:     h.submitSvc.IssuesURL(),
	})
}

// decodeBody reads exactly one JSON value from the request body.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// RateLimited writes the 429 body used by the submit route limiter
func RateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.Submissions.WithLabelValues(metrics.OutcomeRateLimited).Inc()
	writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
		envelope: envelope{
			RequestID: middleware.GetRequestID(r.Context()),
			Time:      nowString(time.Now()),
			Ray:       r.Header.Get("CF-Ray"),
		},
		Stage: metrics.OutcomeRateLimited,
		Error: "Too many submissions, try again later.",
	})
}
