package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyrelay/internal/model"
	"surveyrelay/internal/summary"
)

type fakeIssueLister struct {
	pages [][]model.Issue
	calls int
	err   error
}

func (f *fakeIssueLister) ListIssues(_ context.Context, _ string, page, _ int) ([]model.Issue, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if page-1 >= len(f.pages) {
		return nil, nil
	}
	return f.pages[page-1], nil
}

func issueFor(t *testing.T, number int, sub model.Submission) model.Issue {
	t.Helper()
	req, err := BuildIssue(sub, "survey")
	require.NoError(t, err)
	return model.Issue{Number: number, Title: req.Title, Body: req.Body}
}

func TestParseIssue(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		sub, ok := ParseIssue(issueFor(t, 1, testSubmission))
		require.True(t, ok)
		assert.Equal(t, testSubmission, sub)
	})

	t.Run("key lines", func(t *testing.T) {
		sub, ok := ParseIssue(model.Issue{
			Title: "survey:C",
			Body:  "timestamp: 2025-01-01T10:00:00.000Z\nplayer_name: C\nQ2_time: x\n",
		})
		require.True(t, ok)
		assert.Equal(t, "2025-01-01T10:00:00.000Z", sub.Timestamp)
		assert.Equal(t, "C", sub.PlayerName)
		assert.Equal(t, "x", sub.Q2Time)
	})

	t.Run("title and creation time fallback", func(t *testing.T) {
		sub, ok := ParseIssue(model.Issue{
			Title:     "survey: D ",
			CreatedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
		})
		require.True(t, ok)
		assert.Equal(t, "D", sub.PlayerName)
		assert.Equal(t, "2025-02-03T04:05:06.000Z", sub.Timestamp)
	})

	t.Run("unrelated issue", func(t *testing.T) {
		_, ok := ParseIssue(model.Issue{Title: "bug report", Body: "it broke"})
		assert.False(t, ok)
	})
}

func TestWriteCSV_ReadableBySummaryParser(t *testing.T) {
	subs := []model.Submission{
		{Timestamp: "2025-01-01T00:00:00.000Z", Language: "en", PlayerName: "A", Q2Time: `say "hi", then`, Q3Time: "line\nbreak", Q4Day: "sat"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, subs))

	_, rows, ok := summary.Parse(buf.String())
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, `say "hi", then`, rows[0].Q2Time)
	assert.Equal(t, "line break", rows[0].Q3Time)
	assert.Equal(t, "sat", rows[0].Q4Day)
}

func TestExportService_Export(t *testing.T) {
	full := make([]model.Issue, 0, exportPageSize)
	for i := 0; i < exportPageSize; i++ {
		sub := testSubmission
		sub.PlayerName = "P"
		sub.Timestamp = time.Date(2025, 1, 2, 0, 0, i, 0, time.UTC).Format("2006-01-02T15:04:05.000Z")
		full = append(full, issueFor(t, i+1, sub))
	}
	early := testSubmission
	early.Timestamp = "2024-12-31T00:00:00.000Z"
	lister := &fakeIssueLister{pages: [][]model.Issue{
		full,
		{issueFor(t, 999, early), {Number: 1000, Title: "unrelated"}},
	}}
	logger, _ := test.NewNullLogger()
	svc := NewExportService(lister, "survey", logger)

	path := filepath.Join(t.TempDir(), "data", "answers.csv")
	n, err := svc.Export(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, exportPageSize+1, n)
	assert.Equal(t, 2, lister.calls)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	header, rows, ok := summary.Parse(string(data))
	require.True(t, ok)
	assert.Equal(t, model.AnswerColumns, header)
	require.Len(t, rows, exportPageSize+1)
	assert.Equal(t, "A & B", rows[0].PlayerName, "oldest first")
}

func TestExportService_FullPageWithPullRequestKeepsPaging(t *testing.T) {
	first := make([]model.Issue, 0, exportPageSize)
	for i := 0; i < exportPageSize-1; i++ {
		sub := testSubmission
		sub.Timestamp = time.Date(2025, 1, 2, 0, 0, i, 0, time.UTC).Format("2006-01-02T15:04:05.000Z")
		first = append(first, issueFor(t, i+1, sub))
	}
	first = append(first, model.Issue{Number: 500, Title: "survey:PR", PullRequest: &struct{}{}})
	last := testSubmission
	last.Timestamp = "2025-02-01T00:00:00.000Z"
	lister := &fakeIssueLister{pages: [][]model.Issue{first, {issueFor(t, 501, last)}}}
	logger, _ := test.NewNullLogger()
	svc := NewExportService(lister, "survey", logger)

	subs, err := svc.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
	require.Len(t, subs, exportPageSize)
	assert.Equal(t, "2025-02-01T00:00:00.000Z", subs[len(subs)-1].Timestamp)
}

func TestExportService_ListError(t *testing.T) {
	lister := &fakeIssueLister{err: errors.New("down")}
	logger, _ := test.NewNullLogger()
	svc := NewExportService(lister, "survey", logger)

	_, err := svc.Export(context.Background(), filepath.Join(t.TempDir(), "answers.csv"))
	require.Error(t, err)
}
