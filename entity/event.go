package entity

import "time"

type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventCancelled EventStatus = "cancelled"
)

// Event is read-only input for this service: lifecycle (create/edit/cancel,
// slug uniqueness) belongs to the events application that owns the collection.
// Admin email and the receptionist set are embedded in the document so a single
// lookup carries everything the access guard needs.
type Event struct {
	Id                    string      `json:"id" bson:"_id"`
	Slug                  string      `json:"slug" bson:"slug"`
	Name                  string      `json:"name" bson:"name"`
	Description           string      `json:"description,omitempty" bson:"description,omitempty"`
	Date                  string      `json:"date,omitempty" bson:"date,omitempty"`
	Time                  string      `json:"time,omitempty" bson:"time,omitempty"`
	Location              string      `json:"location,omitempty" bson:"location,omitempty"`
	Status                EventStatus `json:"status" bson:"status"`
	ConfirmationDeadline  *time.Time  `json:"confirmation_deadline,omitempty" bson:"confirmation_deadline,omitempty"`
	MaxChildrenAge        int         `json:"max_children_age" bson:"max_children_age"`
	MaxChildrenPerGuest   *int        `json:"max_children_per_guest,omitempty" bson:"max_children_per_guest,omitempty"`
	MaxCompanionsPerGuest *int        `json:"max_companions_per_guest,omitempty" bson:"max_companions_per_guest,omitempty"`
	AdminEmail            string      `json:"admin_email" bson:"admin_email"`
	Receptionists         []string    `json:"receptionists,omitempty" bson:"receptionists,omitempty"`
	CreatedAt             time.Time   `json:"created_at" bson:"created_at"`
}

func (e *Event) IsCancelled() bool {
	return e.Status == EventCancelled
}

// DeadlineExpired reports whether the confirmation window is closed.
// No deadline set means confirmations stay open.
func (e *Event) DeadlineExpired(now time.Time) bool {
	if e.ConfirmationDeadline == nil {
		return false
	}
	return now.After(*e.ConfirmationDeadline)
}
