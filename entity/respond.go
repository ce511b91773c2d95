package entity

import (
	"net/http"

	"guestlist/lib/validate"
)

type ResponseAction string

const (
	ActionConfirm ResponseAction = "confirm"
	ActionDecline ResponseAction = "decline"
)

// ChildInput is a child registered along with a confirmation. The upper age
// bound is event-defined and checked by the RSVP engine, not here.
type ChildInput struct {
	Name string `json:"name" bson:"name" validate:"required,min=2"`
	Age  int    `json:"age" bson:"age" validate:"min=0"`
}

// RespondRequest is a guest's answer to an invitation. Companions are the
// six-character codes of other guests of the same event; both lists are
// ignored on decline.
type RespondRequest struct {
	Slug       string         `json:"slug" validate:"required"`
	Code       string         `json:"code" validate:"required,len=6"`
	Action     ResponseAction `json:"action" validate:"required,oneof=confirm decline"`
	Companions []string       `json:"companions,omitempty" validate:"omitempty,dive,len=6"`
	Children   []ChildInput   `json:"children,omitempty" validate:"omitempty,dive"`
}

func (r *RespondRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}
