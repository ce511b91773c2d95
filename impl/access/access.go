// Package access decides whether a caller may operate on an event.
// The check is repeated explicitly at the top of every staff operation
// instead of hiding behind middleware, so each decision stays auditable.
package access

import (
	"fmt"

	"guestlist/entity"
)

// Allowed reports whether email belongs to the event admin or one of its
// receptionists.
func Allowed(event *entity.Event, email string) bool {
	if event.AdminEmail == email {
		return true
	}
	for _, r := range event.Receptionists {
		if r == email {
			return true
		}
	}
	return false
}

// Authorize returns ErrForbidden when the caller has no access to the event.
func Authorize(event *entity.Event, email string) error {
	if !Allowed(event, email) {
		return fmt.Errorf("%w: %s", entity.ErrForbidden, event.Slug)
	}
	return nil
}
