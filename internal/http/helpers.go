package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"paisa/internal/core"
	"paisa/internal/log"
)

// ownerHeader identifies the caller. The gateway in front of this service
// sets it after authentication; 0 means unauthenticated.
const ownerHeader = "X-Owner-ID"

// ownerID extracts the authenticated owner from the request. Returns 0 when
// the header is missing or malformed; handlers treat 0 as "no data".
func ownerID(r *http.Request) int64 {
	v := strings.TrimSpace(r.Header.Get(ownerHeader))
	if v == "" {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return 0
	}
	return id
}

// queryMonth reads a YYYY-MM month parameter, defaulting to the current
// month when absent.
func queryMonth(r *http.Request, name string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(name)); v != "" {
		return v
	}
	return core.MonthKey(time.Now())
}

// queryMonths reads a positive month-count parameter with a fallback.
func queryMonths(r *http.Request, name string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// queryDate reads an optional YYYY-MM-DD parameter; nil when absent or
// malformed.
func queryDate(r *http.Request, name string) *time.Time {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	logger := log.FromContext(r.Context())
	fields := log.NewFields().WithError(err)
	fields[log.FieldPath] = r.URL.Path
	logger.ErrorContext(r.Context(), msg, fields.ToSlice()...)
	writeJSON(w, status, map[string]string{"error": msg})
}
