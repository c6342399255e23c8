// Package summary turns an answers CSV export into the summary document:
// latest answer per player and answer counts per question.
package summary

import "strings"

// ParseLine splits a single CSV line into fields.
//
// Commas inside double-quoted regions are literal and "" inside a quoted
// region is one quote. Malformed quoting never fails: an unterminated quote
// simply keeps the rest of the line inside the region. At least one field is
// always returned.
func ParseLine(line string) []string {
	var (
		out []string
		cur strings.Builder
		inQ bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]

		if inQ {
			switch {
			case ch == '"' && i+1 < len(line) && line[i+1] == '"':
				cur.WriteByte('"')
				i++
			case ch == '"':
				inQ = false
			default:
				cur.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '"':
			inQ = true
		case ',':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(out, cur.String())
}

// splitLines splits on \n and \r\n and drops empty lines.
func splitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		if p == "" {
			continue
		}
		lines = append(lines, p)
	}
	return lines
}
