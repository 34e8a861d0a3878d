// Package domains exposes the five fixed Q-C2M2 framework domains.
// Rows are seeded by migration and have no write path.
package domains

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrNotFound indicates no domain matches the requested id.
var ErrNotFound = errors.New("domain not found")

// MapHTTPStatus maps domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Domain is a framework domain with the maturity levels it recognizes.
type Domain struct {
	ID             int64  `json:"id"`
	Name           string `json:"domain_name"`
	Code           string `json:"domain_code"`
	Description    string `json:"description"`
	MaturityLevels []int  `json:"maturity_levels"`
}

// parseLevels reads the comma-separated maturity_levels column, skipping malformed entries.
func parseLevels(s string) []int {
	levels := make([]int, 0, 3)
	for part := range strings.SplitSeq(s, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			levels = append(levels, n)
		}
	}
	return levels
}
