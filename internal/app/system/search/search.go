// internal/app/system/search/search.go
package search

import (
	"strings"

	"github.com/dalemusser/crms/internal/domain/models"
)

// EmailPivot reports whether a paged user search should default to sorting
// by email instead of creation time.
//
// It pivots when:
//   - the query looks like an email (contains '@'), and
//   - the result set is constrained by a valid status or role, so the
//     email index keeps the scan selective.
//
// Typical usage in the user list:
//
//	def := "created_at"
//	if search.EmailPivot(q, status, role) {
//	    def = "email"
//	}
func EmailPivot(query, status, role string) bool {
	if !strings.Contains(query, "@") {
		return false
	}
	return equalsAnyFold(status, models.Statuses...) || equalsAnyFold(role, models.Roles...)
}

func equalsAnyFold(s string, vals ...string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, v := range vals {
		if s == strings.ToLower(v) {
			return true
		}
	}
	return false
}
