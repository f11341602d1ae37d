// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/crms/internal/app/store/audit"
)

// listItem is a single audit event with actor and target names resolved.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	ActorID       string            `json:"actorId,omitempty"`
	ActorName     string            `json:"actorName,omitempty"`
	UserID        string            `json:"userId,omitempty"`
	TargetName    string            `json:"targetName,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// categoryOption describes a category for filter pickers.
type categoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
		{Value: audit.CategoryCase, Label: "Cases"},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedAccountLocked,
		audit.EventLoginFailedInactive,
		audit.EventLoginFailedRateLimit,
		audit.EventAccountLocked,
		audit.EventLogout,
		audit.EventPasswordChanged,
	}

	adminEvents := []string{
		audit.EventUserCreated,
		audit.EventUserUpdated,
		audit.EventUserDeleted,
		audit.EventUserUnlocked,
		audit.EventPasswordReset,
		audit.EventStationCreated,
		audit.EventStationUpdated,
		audit.EventStationDeleted,
	}

	caseEvents := []string{
		audit.EventCaseCreated,
		audit.EventCaseDeleted,
		audit.EventCaseConflict,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case audit.CategoryCase:
		return caseEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents)+len(caseEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		all = append(all, caseEvents...)
		return all
	default:
		return nil
	}
}
