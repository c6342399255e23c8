package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"surveyrelay/internal/config"
	"surveyrelay/internal/model"
)

// IssueCreator opens issues in the tracker
type IssueCreator interface {
	CreateIssue(ctx context.Context, issue model.IssueRequest) (*model.Issue, error)
	IssuesURL() string
	Timeout() time.Duration
}

// SubmitService relays validated submissions to the issue tracker
type SubmitService struct {
	cfg    config.GitHubConfig
	issues IssueCreator
	log    logrus.FieldLogger
}

// NewSubmitService creates a new submit service
func NewSubmitService(cfg config.GitHubConfig, issues IssueCreator, log logrus.FieldLogger) *SubmitService {
	return &SubmitService{
		cfg:    cfg,
		issues: issues,
		log:    log.WithField("component", "submit"),
	}
}

// CheckConfig reports ErrMissingToken when the relay cannot authenticate.
func (s *SubmitService) CheckConfig() error {
	if !s.cfg.HasToken() {
		return ErrMissingToken
	}
	return nil
}

// HasToken returns true if a GitHub token is configured
func (s *SubmitService) HasToken() bool {
	return s.cfg.HasToken()
}

// IssuesURL returns the upstream endpoint submissions are sent to
func (s *SubmitService) IssuesURL() string {
	return s.issues.IssuesURL()
}

// Timeout returns the upstream time budget
func (s *SubmitService) Timeout() time.Duration {
	return s.issues.Timeout()
}

// Submit creates one issue for the submission. The issue is nil when the
// tracker accepted the request but its reply could not be read.
func (s *SubmitService) Submit(ctx context.Context, sub model.Submission) (*model.Issue, error) {
	if err := s.CheckConfig(); err != nil {
		return nil, err
	}

	req, err := BuildIssue(sub, s.cfg.Label)
	if err != nil {
		return nil, err
	}

	issue, err := s.issues.CreateIssue(ctx, req)
	if err != nil {
		s.log.WithError(err).WithField("player_name", sub.PlayerName).Error("failed to relay submission")
		return nil, err
	}

	fields := logrus.Fields{"player_name": sub.PlayerName}
	if issue != nil {
		fields["issue"] = issue.Number
	}
	s.log.WithFields(fields).Info("submission relayed")
	return issue, nil
}

// BuildIssue renders a submission as an issue: one "key: value" line per
// field followed by the same data as a fenced JSON block.
func BuildIssue(sub model.Submission, label string) (model.IssueRequest, error) {
	var doc bytes.Buffer
	enc := json.NewEncoder(&doc)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sub); err != nil {
		return model.IssueRequest{}, fmt.Errorf("failed to encode submission: %w", err)
	}

	values := sub.Values()
	lines := make([]string, 0, len(values)+4)
	for i, col := range model.AnswerColumns {
		lines = append(lines, col+": "+values[i])
	}
	lines = append(lines, "", "```json", strings.TrimRight(doc.String(), "\n"), "```")

	return model.IssueRequest{
		Title:  "survey:" + sub.PlayerName,
		Body:   strings.Join(lines, "\n"),
		Labels: []string{label},
	}, nil
}
