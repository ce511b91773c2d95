package entity

import "time"

// GuestChild is a minor registered during the parent guest's confirmation.
// Children cannot be added afterwards; only their check-in state mutates.
// ChildFilter narrows child counting queries. Nil/empty fields are ignored.
type ChildFilter struct {
	ParentStatus []GuestStatus
	CheckedIn    *bool
}

type GuestChild struct {
	Id          string     `json:"id" bson:"_id"`
	GuestId     string     `json:"guest_id" bson:"guest_id"`
	Name        string     `json:"name" bson:"name"`
	Age         int        `json:"age" bson:"age"`
	CheckedIn   bool       `json:"checked_in" bson:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty" bson:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}
