package entity

import "errors"

// Business outcomes of the invitation and check-in flows. Engines wrap these
// with detail via fmt.Errorf("%w: ..."); handlers match with errors.Is to pick
// the HTTP status. Anything else is treated as an internal failure.
var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("no permission for this event")
	ErrEventCancelled       = errors.New("event has been cancelled")
	ErrDeadlinePassed       = errors.New("confirmation deadline has passed")
	ErrAlreadyResponded     = errors.New("invitation already responded")
	ErrCompanionLimit       = errors.New("companion limit exceeded")
	ErrChildLimit           = errors.New("children limit exceeded")
	ErrChildAge             = errors.New("child age above event limit")
	ErrInvalidCompanionCode = errors.New("invalid companion code")
	ErrSelfCompanion        = errors.New("guest cannot be own companion")
	ErrCompanionDeclined    = errors.New("companion has declined the invitation")
	ErrAlreadyCheckedIn     = errors.New("check-in already done")
	ErrNotConfirmed         = errors.New("guest has not confirmed")
	ErrNotCheckedIn         = errors.New("check-in not done")
	ErrGuardianNotConfirmed = errors.New("guardian has not confirmed")
	ErrCodeSpaceExhausted   = errors.New("could not generate a unique code")
)
