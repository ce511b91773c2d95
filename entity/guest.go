package entity

import "time"

// GuestStatus tracks the invitation lifecycle. A guest answers exactly once:
// pending -> confirmed or pending -> declined. Present is reachable only
// through check-in and reverts back to confirmed, never set by an RSVP.
type GuestStatus string

const (
	StatusPending   GuestStatus = "pending"
	StatusConfirmed GuestStatus = "confirmed"
	StatusDeclined  GuestStatus = "declined"
	StatusPresent   GuestStatus = "present"
)

// Guest is one invited person. The code is unique within its event only,
// enforced by a unique index on (event_id, code).
type Guest struct {
	Id                 string      `json:"id" bson:"_id"`
	EventId            string      `json:"event_id" bson:"event_id"`
	Name               string      `json:"name" bson:"name"`
	Email              string      `json:"email,omitempty" bson:"email,omitempty"`
	Phone              string      `json:"phone,omitempty" bson:"phone,omitempty"`
	Code               string      `json:"code" bson:"code"`
	Status             GuestStatus `json:"status" bson:"status"`
	ConfirmedByGuestId string      `json:"confirmed_by_guest_id,omitempty" bson:"confirmed_by_guest_id,omitempty"`
	RespondedAt        *time.Time  `json:"responded_at,omitempty" bson:"responded_at,omitempty"`
	CheckedIn          bool        `json:"checked_in" bson:"checked_in"`
	CheckedInAt        *time.Time  `json:"checked_in_at,omitempty" bson:"checked_in_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at" bson:"created_at"`
}

// IsConfirmed reports whether the guest counts as a confirmed attendee.
// Present guests arrived, so they are still confirmed for display purposes.
func (g *Guest) IsConfirmed() bool {
	return g.Status == StatusConfirmed || g.Status == StatusPresent
}

func (g *Guest) HasResponded() bool {
	return g.Status != StatusPending
}

// GuestRef is the short form embedded in detail views.
type GuestRef struct {
	Id     string      `json:"id" bson:"_id"`
	Name   string      `json:"name" bson:"name"`
	Code   string      `json:"code" bson:"code"`
	Status GuestStatus `json:"status,omitempty" bson:"status,omitempty"`
}

// GuestDetails is the full record returned by invitation lookups and the
// staff-facing validate-code operation: the guest plus linked companions,
// registered children and the guest whose confirmation brought this one in.
type GuestDetails struct {
	Guest       `bson:",inline"`
	Companions  []*GuestRef   `json:"companions" bson:"-"`
	Children    []*GuestChild `json:"children" bson:"-"`
	ConfirmedBy *GuestRef     `json:"confirmed_by,omitempty" bson:"-"`
}

// GuestCompanion records that companion_guest_id attended as part of
// guest_id's confirmation. Directional, written once, removed only when a
// guest is deleted.
type GuestCompanion struct {
	GuestId          string `json:"guest_id" bson:"guest_id"`
	CompanionGuestId string `json:"companion_guest_id" bson:"companion_guest_id"`
}
