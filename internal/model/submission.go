package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AnswerField is a submitted value coerced to a trimmed string. Any JSON
// value is accepted; null becomes "".
type AnswerField string

// UnmarshalJSON implements json.Unmarshaler
func (f *AnswerField) UnmarshalJSON(data []byte) error {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*f = AnswerField(strings.TrimSpace(textOf(v)))
	return nil
}

// textOf renders a decoded JSON value as text: numbers in shortest form
// (1.0 is "1"), arrays as comma-joined elements, objects as
// "[object Object]".
func textOf(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return numberText(n)
	case []interface{}:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = textOf(e)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

func numberText(n float64) string {
	if n == 0 {
		return "0"
	}
	if a := math.Abs(n); a >= 1e21 || a < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		// 1e-07 -> 1e-7
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// SubmitRequest is the request body of POST /api/submit
type SubmitRequest struct {
	Language   AnswerField `json:"language"`
	PlayerName AnswerField `json:"player_name"`
	Q2Time     AnswerField `json:"Q2_time"`
	Q3Time     AnswerField `json:"Q3_time"`
	Q4Day      AnswerField `json:"Q4_day"`
}

// Submission is a validated survey answer set. Field order is the order
// used in the relayed issue.
type Submission struct {
	Timestamp  string `json:"timestamp,omitempty"`
	Language   string `json:"language"`
	PlayerName string `json:"player_name"`
	Q2Time     string `json:"Q2_time"`
	Q3Time     string `json:"Q3_time"`
	Q4Day      string `json:"Q4_day"`
}

// Validation is the outcome of checking a SubmitRequest. Missing lists the
// empty required fields; the submission is usable only when it is empty.
type Validation struct {
	Submission Submission
	Missing    []string
}

// OK returns true if every required field is present
func (v Validation) OK() bool {
	return len(v.Missing) == 0
}

// Validate trims every field and records the missing ones.
func (r SubmitRequest) Validate() Validation {
	sub := Submission{
		Language:   string(r.Language),
		PlayerName: string(r.PlayerName),
		Q2Time:     string(r.Q2Time),
		Q3Time:     string(r.Q3Time),
		Q4Day:      string(r.Q4Day),
	}

	missing := []string{}
	required := []struct {
		name  string
		value string
	}{
		{ColPlayerName, sub.PlayerName},
		{ColLanguage, sub.Language},
		{ColQ2Time, sub.Q2Time},
		{ColQ3Time, sub.Q3Time},
		{ColQ4Day, sub.Q4Day},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return Validation{Submission: sub, Missing: missing}
}

// Values returns the submission in AnswerColumns order.
func (s Submission) Values() []string {
	return []string{s.Timestamp, s.Language, s.PlayerName, s.Q2Time, s.Q3Time, s.Q4Day}
}
