package rest

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// MonthLayout is the wire format of months.
const MonthLayout = "2006-01"

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON encodes body as the JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// WriteError writes an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, status int, message string, details string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// ParseDate parses a date in DateLayout as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// ParseMonth parses a month in MonthLayout as the first day of that month.
func ParseMonth(value string) (time.Time, error) {
	return time.ParseInLocation(MonthLayout, value, time.UTC)
}

// FormatDate formats a date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatOptionalDate formats a date pointer, returning nil for a missing date.
func FormatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ParseOptionalDate is the inverse of FormatOptionalDate.
func ParseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
