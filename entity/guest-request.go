package entity

import (
	"net/http"

	"guestlist/lib/validate"
)

// CreateGuestRequest is the admin-side guest registration. The code is never
// supplied by the caller; it is generated server-side per event.
type CreateGuestRequest struct {
	EventId string `json:"event_id" validate:"required,uuid4"`
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty"`
}

func (c *CreateGuestRequest) Bind(_ *http.Request) error {
	return validate.Struct(c)
}

// UpdateGuestRequest changes contact details only. Status, code and check-in
// state are owned by the RSVP and check-in flows.
type UpdateGuestRequest struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty"`
}

func (u *UpdateGuestRequest) Bind(_ *http.Request) error {
	return validate.Struct(u)
}
