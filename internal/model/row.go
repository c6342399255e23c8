package model

import (
	"bytes"
	"encoding/json"
)

// Column names the aggregation reads. Everything else in the header is
// carried through untouched.
const (
	ColTimestamp  = "timestamp"
	ColLanguage   = "language"
	ColPlayerName = "player_name"
	ColQ2Time     = "Q2_time"
	ColQ3Time     = "Q3_time"
	ColQ4Day      = "Q4_day"
)

// AnswerColumns is the canonical column order of an answers CSV.
var AnswerColumns = []string{ColTimestamp, ColLanguage, ColPlayerName, ColQ2Time, ColQ3Time, ColQ4Day}

// Row is one parsed answers CSV record. Every value is a string; a column
// with no value on the line holds "".
type Row struct {
	Timestamp  string
	Language   string
	PlayerName string
	Q2Time     string
	Q3Time     string
	Q4Day      string

	// Extra holds header columns outside AnswerColumns, in header order.
	Extra []Cell
}

// Cell is a named value of a column the aggregation does not interpret.
type Cell struct {
	Name  string
	Value string
}

// Get returns the value of the named column, or "" when the row has no such column.
func (r Row) Get(name string) string {
	switch name {
	case ColTimestamp:
		return r.Timestamp
	case ColLanguage:
		return r.Language
	case ColPlayerName:
		return r.PlayerName
	case ColQ2Time:
		return r.Q2Time
	case ColQ3Time:
		return r.Q3Time
	case ColQ4Day:
		return r.Q4Day
	}
	for _, c := range r.Extra {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// MarshalJSON writes the known columns in canonical order followed by the
// extra columns in header order, so output is stable across runs.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(name, value string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := marshalString(name)
		if err != nil {
			return err
		}
		v, err := marshalString(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}
	for _, name := range AnswerColumns {
		if err := write(name, r.Get(name)); err != nil {
			return nil, err
		}
	}
	for _, c := range r.Extra {
		if err := write(c.Name, c.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
