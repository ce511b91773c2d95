package entity

import (
	"net/http"

	"guestlist/lib/validate"
)

// ValidateCodeRequest is the staff-side code lookup done before committing to
// a check-in. The code arrives as plain text, already decoded from whatever
// the guest presented.
type ValidateCodeRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

func (v *ValidateCodeRequest) Bind(_ *http.Request) error {
	return validate.Struct(v)
}

type CheckInRequest struct {
	GuestId string `json:"guest_id" validate:"required,uuid4"`
}

func (c *CheckInRequest) Bind(_ *http.Request) error {
	return validate.Struct(c)
}

type ChildCheckInRequest struct {
	ChildId string `json:"child_id" validate:"required,uuid4"`
}

func (c *ChildCheckInRequest) Bind(_ *http.Request) error {
	return validate.Struct(c)
}
