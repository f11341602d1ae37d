package search

import "testing"

func TestEmailPivot(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status string
		role   string
		want   bool
	}{
		// Should pivot
		{"email with active status", "user@example.com", "active", "", true},
		{"partial email with suspended status", "@precinct", "suspended", "", true},
		{"email with role only", "user@", "", "police", true},

		// Should NOT pivot - missing @
		{"name search with status", "john doe", "active", "admin", false},
		{"empty search", "", "active", "", false},

		// Should NOT pivot - nothing constrains the set
		{"email without filters", "user@example.com", "", "", false},
		{"email with unknown status", "user@example.com", "pending", "", false},
		{"email with unknown role", "user@example.com", "", "clerk", false},

		// Case insensitivity
		{"email with ACTIVE status", "user@example.com", "ACTIVE", "", true},
		{"email with Police role", "user@example.com", "", "Police", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EmailPivot(tt.query, tt.status, tt.role)
			if got != tt.want {
				t.Errorf("EmailPivot(%q, %q, %q) = %v, want %v",
					tt.query, tt.status, tt.role, got, tt.want)
			}
		})
	}
}
