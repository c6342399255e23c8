package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// timeFormat is the ISO-8601 UTC form used for every "time" field.
const timeFormat = "2006-01-02T15:04:05.000Z"

func nowString(now time.Time) string {
	return now.UTC().Format(timeFormat)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorDetail mirrors an error as {name, message}.
type errorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func detailOf(name string, err error) *errorDetail {
	if err == nil {
		return nil
	}
	return &errorDetail{Name: name, Message: err.Error()}
}
