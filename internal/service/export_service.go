package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"surveyrelay/internal/model"
)

const exportPageSize = 100

// IssueLister pages through labelled issues
type IssueLister interface {
	ListIssues(ctx context.Context, label string, page, perPage int) ([]model.Issue, error)
}

// ExportService rebuilds the answers CSV from the relayed issues
type ExportService struct {
	issues IssueLister
	label  string
	log    logrus.FieldLogger
}

// NewExportService creates a new export service
func NewExportService(issues IssueLister, label string, log logrus.FieldLogger) *ExportService {
	return &ExportService{
		issues: issues,
		label:  label,
		log:    log.WithField("component", "export"),
	}
}

// Collect fetches every labelled issue and decodes its submission, oldest
// first. Pull requests and issues without a player name are skipped. Paging
// stops at the first page shorter than the page size.
func (s *ExportService) Collect(ctx context.Context) ([]model.Submission, error) {
	var subs []model.Submission
	for page := 1; ; page++ {
		issues, err := s.issues.ListIssues(ctx, s.label, page, exportPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues (page %d): %w", page, err)
		}
		for _, is := range issues {
			if is.PullRequest != nil {
				continue
			}
			sub, ok := ParseIssue(is)
			if !ok {
				s.log.WithField("issue", is.Number).Warn("skipping issue without submission")
				continue
			}
			subs = append(subs, sub)
		}
		if len(issues) < exportPageSize {
			break
		}
	}

	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Timestamp < subs[j].Timestamp
	})
	return subs, nil
}

// Export writes the collected submissions to path and returns the row count.
func (s *ExportService) Export(ctx context.Context, path string) (int, error) {
	subs, err := s.Collect(ctx)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, subs); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", path, err)
	}

	s.log.WithFields(logrus.Fields{"output": path, "rows": len(subs)}).Info("wrote answers")
	return len(subs), nil
}

// WriteCSV writes the header and one line per submission. Line breaks
// inside values are flattened so every record stays on one line.
func WriteCSV(w io.Writer, subs []model.Submission) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.AnswerColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	flatten := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	for _, sub := range subs {
		values := sub.Values()
		for i, v := range values {
			values[i] = flatten.Replace(v)
		}
		if err := cw.Write(values); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseIssue recovers the submission from an issue created by BuildIssue.
// The fenced JSON block is preferred; the "key: value" lines and the title
// are fallbacks for hand-edited issues.
func ParseIssue(is model.Issue) (model.Submission, bool) {
	sub, ok := parseFencedJSON(is.Body)
	if !ok {
		sub = parseKeyLines(is.Body)
	}
	if sub.PlayerName == "" {
		if name, ok := strings.CutPrefix(is.Title, "survey:"); ok {
			sub.PlayerName = strings.TrimSpace(name)
		}
	}
	if sub.Timestamp == "" && !is.CreatedAt.IsZero() {
		sub.Timestamp = is.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z")
	}
	return sub, sub.PlayerName != ""
}

func parseFencedJSON(body string) (model.Submission, bool) {
	const open = "```json"
	start := strings.Index(body, open)
	if start < 0 {
		return model.Submission{}, false
	}
	rest := body[start+len(open):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return model.Submission{}, false
	}

	var sub model.Submission
	if err := json.Unmarshal([]byte(rest[:end]), &sub); err != nil {
		return model.Submission{}, false
	}
	return trimSubmission(sub), true
}

func parseKeyLines(body string) model.Submission {
	var sub model.Submission
	for _, line := range strings.Split(body, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case model.ColTimestamp:
			if sub.Timestamp == "" {
				sub.Timestamp = value
			}
		case model.ColLanguage:
			sub.Language = value
		case model.ColPlayerName:
			sub.PlayerName = value
		case model.ColQ2Time:
			sub.Q2Time = value
		case model.ColQ3Time:
			sub.Q3Time = value
		case model.ColQ4Day:
			sub.Q4Day = value
		}
	}
	return sub
}

func trimSubmission(sub model.Submission) model.Submission {
	sub.Timestamp = strings.TrimSpace(sub.Timestamp)
	sub.Language = strings.TrimSpace(sub.Language)
	sub.PlayerName = strings.TrimSpace(sub.PlayerName)
	sub.Q2Time = strings.TrimSpace(sub.Q2Time)
	sub.Q3Time = strings.TrimSpace(sub.Q3Time)
	sub.Q4Day = strings.TrimSpace(sub.Q4Day)
	return sub
}
