package entity

import "time"

// User is an authenticated staff identity (event admin or receptionist).
// Tokens are issued by the auth application; this service only resolves them.
type User struct {
	Username     string    `json:"username" bson:"username" validate:"required"`
	Name         string    `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty"`
	Email        string    `json:"email" bson:"email" validate:"required,email"`
	Token        string    `json:"token" bson:"token" validate:"required,min=1"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}
