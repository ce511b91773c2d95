package errors

import (
	stderrors "errors"
	"net/http"

	"guestlist/entity"
)

// StatusOf maps business outcomes to HTTP status codes: missing resources to
// 404, authorization to 403, every other expected rule violation to 400.
// Unrecognized errors are internal failures.
func StatusOf(err error) int {
	switch {
	case stderrors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, entity.ErrEventCancelled),
		stderrors.Is(err, entity.ErrDeadlinePassed),
		stderrors.Is(err, entity.ErrAlreadyResponded),
		stderrors.Is(err, entity.ErrCompanionLimit),
		stderrors.Is(err, entity.ErrChildLimit),
		stderrors.Is(err, entity.ErrChildAge),
		stderrors.Is(err, entity.ErrInvalidCompanionCode),
		stderrors.Is(err, entity.ErrSelfCompanion),
		stderrors.Is(err, entity.ErrCompanionDeclined),
		stderrors.Is(err, entity.ErrAlreadyCheckedIn),
		stderrors.Is(err, entity.ErrNotConfirmed),
		stderrors.Is(err, entity.ErrNotCheckedIn),
		stderrors.Is(err, entity.ErrGuardianNotConfirmed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the error text for expected outcomes and a generic message
// for internal failures, which are logged but not leaked to callers.
func Message(err error) string {
	if StatusOf(err) == http.StatusInternalServerError {
		return "Internal error"
	}
	return err.Error()
}
