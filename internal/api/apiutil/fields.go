package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// LimitFromQuery reads ?limit=, defaulting to DefaultListLimit and capping at MaxListLimit.
func LimitFromQuery(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return DefaultListLimit, nil
	}
	limit, err := ParsePositiveInt64Field(raw, "limit")
	if err != nil {
		return 0, err
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, nil
}
