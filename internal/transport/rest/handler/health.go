package handler

import (
	"net/http"
	"time"
)

// HealthHandler handles the liveness probe
type HealthHandler struct {
	hasToken func() bool
	now      func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(hasToken func() bool) *HealthHandler {
	return &HealthHandler{hasToken: hasToken, now: time.Now}
}

// HealthResponse is the liveness document
type HealthResponse struct {
	OK       bool    `json:"ok"`
	Message  string  `json:"message"`
	Method   string  `json:"method"`
	Path     string  `json:"path"`
	HasToken bool    `json:"hasToken"`
	Time     string  `json:"time"`
	Ray      string  `json:"ray"`
	Colo     *string `json:"colo"`
	Country  *string `json:"country"`
}

// Health handles any method on /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		OK:       true,
		Message:  "survey relay is alive",
		Method:   r.Method,
		Path:     r.URL.Path,
		HasToken: h.hasToken(),
		Time:     nowString(h.now()),
		Ray:      r.Header.Get("CF-Ray"),
		Colo:     headerOrNil(r, "CF-Colo"),
		Country:  headerOrNil(r, "CF-IPCountry"),
	})
}

func headerOrNil(r *http.Request, name string) *string {
	v := r.Header.Get(name)
	if v == "" {
		return nil
	}
	return &v
}
