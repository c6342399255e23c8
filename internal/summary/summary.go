package summary

import (
	"sort"
	"strings"
	"time"

	"surveyrelay/internal/model"
)

// TimeFormat matches the millisecond UTC form used by the intake timestamps.
const TimeFormat = "2006-01-02T15:04:05.000Z"

const bom = "\ufeff"

// Parse reads header and data rows out of raw CSV text. It reports false
// when there is nothing to summarize: blank input or a header with no data.
// A leading byte order mark is dropped.
func Parse(raw string) ([]string, []model.Row, bool) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, bom))
	if raw == "" {
		return nil, nil, false
	}
	lines := splitLines(raw)
	if len(lines) <= 1 {
		return nil, nil, false
	}

	header := ParseLine(lines[0])
	rows := make([]model.Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, NewRow(header, ParseLine(line)))
	}
	return header, rows, true
}

// SortNewestFirst orders rows by timestamp descending using plain string
// comparison. This is chronological only for same-width ISO-8601 UTC
// timestamps; empty timestamps end up last. Equal timestamps keep their
// input order.
func SortNewestFirst(rows []model.Row) []model.Row {
	sorted := make([]model.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	return sorted
}

// LatestByPlayer keeps the first row seen for every non-empty trimmed
// player name. Fed with SortNewestFirst output it yields each player's
// newest row, in sort order.
func LatestByPlayer(sorted []model.Row) []model.Row {
	seen := make(map[string]struct{})
	latest := make([]model.Row, 0)
	for _, r := range sorted {
		name := strings.TrimSpace(r.PlayerName)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		latest = append(latest, r)
	}
	return latest
}

// CountBy tallies trimmed, non-empty values of column across rows.
func CountBy(rows []model.Row, column string) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		v := strings.TrimSpace(r.Get(column))
		if v == "" {
			continue
		}
		counts[v]++
	}
	return counts
}

// Summarize builds the summary document from parsed rows.
func Summarize(rows []model.Row, now time.Time) *model.Summary {
	latest := LatestByPlayer(SortNewestFirst(rows))
	return &model.Summary{
		GeneratedAt:    now.UTC().Format(TimeFormat),
		TotalRows:      len(rows),
		UniquePlayers:  len(latest),
		LatestByPlayer: latest,
		Counts: model.Counts{
			Q2Time:   CountBy(latest, model.ColQ2Time),
			Q3Time:   CountBy(latest, model.ColQ3Time),
			Q4Day:    CountBy(latest, model.ColQ4Day),
			Language: CountBy(latest, model.ColLanguage),
		},
	}
}
