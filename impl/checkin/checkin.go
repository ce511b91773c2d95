// Package checkin toggles physical presence for guests and children.
// Check-in state is layered on top of the RSVP status: only confirmed (or
// already present) guests can be checked in, and a revert always restores
// confirmed since present is reachable from confirmed alone.
package checkin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"guestlist/entity"
	"guestlist/impl/access"
	"guestlist/lib/sl"
)

type Store interface {
	EventBySlug(ctx context.Context, slug string) (*entity.Event, error)
	GuestByID(ctx context.Context, eventID, guestID string) (*entity.Guest, error)
	GuestDetails(ctx context.Context, eventID, code string) (*entity.GuestDetails, error)
	GuestsByEvent(ctx context.Context, eventID string) ([]*entity.GuestDetails, error)
	ChildByID(ctx context.Context, eventID, childID string) (*entity.GuestChild, *entity.Guest, error)
	CheckInGuest(ctx context.Context, guestID string, at time.Time) error
	RevertGuestCheckIn(ctx context.Context, guestID string) error
	CheckInChild(ctx context.Context, childID string, at time.Time) error
	RevertChildCheckIn(ctx context.Context, childID string) error
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

type Engine struct {
	db  Store
	log *slog.Logger
}

func New(db Store, log *slog.Logger) *Engine {
	if db == nil {
		panic("checkin store is nil")
	}
	return &Engine{
		db:  db,
		log: log.With(sl.Module("checkin")),
	}
}

// event resolves the slug and runs the access guard; every operation of this
// package starts here.
func (e *Engine) event(ctx context.Context, slug, callerEmail string) (*entity.Event, error) {
	event, err := e.db.EventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %s", entity.ErrNotFound, slug)
	}
	if err = access.Authorize(event, callerEmail); err != nil {
		return nil, err
	}
	return event, nil
}

// ValidateCode is the staff lookup done before committing to a check-in.
// Present guests pass too, so the desk can review someone already inside.
func (e *Engine) ValidateCode(ctx context.Context, slug, code, callerEmail string) (*entity.GuestDetails, error) {
	event, err := e.event(ctx, slug, callerEmail)
	if err != nil {
		return nil, err
	}
	details, err := e.db.GuestDetails(ctx, event.Id, code)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, fmt.Errorf("%w: invitation code", entity.ErrNotFound)
	}
	if !details.IsConfirmed() {
		return nil, entity.ErrNotConfirmed
	}
	return details, nil
}

// Guests returns the full reception list for the event.
func (e *Engine) Guests(ctx context.Context, slug, callerEmail string) ([]*entity.GuestDetails, error) {
	event, err := e.event(ctx, slug, callerEmail)
	if err != nil {
		return nil, err
	}
	return e.db.GuestsByEvent(ctx, event.Id)
}

func (e *Engine) CheckInGuest(ctx context.Context, slug, guestID, callerEmail string) (*entity.Guest, error) {
	var result *entity.Guest

	err := e.db.Atomic(ctx, func(ctx context.Context) error {
		event, err := e.event(ctx, slug, callerEmail)
		if err != nil {
			return err
		}
		guest, err := e.db.GuestByID(ctx, event.Id, guestID)
		if err != nil {
			return err
		}
		if guest == nil {
			return fmt.Errorf("%w: guest", entity.ErrNotFound)
		}
		if guest.CheckedIn {
			return entity.ErrAlreadyCheckedIn
		}
		if !guest.IsConfirmed() {
			return entity.ErrNotConfirmed
		}

		now := time.Now().UTC()
		if err = e.db.CheckInGuest(ctx, guest.Id, now); err != nil {
			return err
		}
		guest.Status = entity.StatusPresent
		guest.CheckedIn = true
		guest.CheckedInAt = &now
		result = guest
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.With(
		slog.String("event", slug),
		slog.String("guest", guestID),
	).Debug("guest checked in")
	return result, nil
}

func (e *Engine) RevertGuest(ctx context.Context, slug, guestID, callerEmail string) (*entity.Guest, error) {
	var result *entity.Guest

	err := e.db.Atomic(ctx, func(ctx context.Context) error {
		event, err := e.event(ctx, slug, callerEmail)
		if err != nil {
			return err
		}
		guest, err := e.db.GuestByID(ctx, event.Id, guestID)
		if err != nil {
			return err
		}
		if guest == nil {
			return fmt.Errorf("%w: guest", entity.ErrNotFound)
		}
		if !guest.CheckedIn {
			return entity.ErrNotCheckedIn
		}

		if err = e.db.RevertGuestCheckIn(ctx, guest.Id); err != nil {
			return err
		}
		guest.Status = entity.StatusConfirmed
		guest.CheckedIn = false
		guest.CheckedInAt = nil
		result = guest
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.With(
		slog.String("event", slug),
		slog.String("guest", guestID),
	).Debug("guest check-in reverted")
	return result, nil
}

// CheckInChild marks a child's arrival. The guardian must be confirmed or
// present; the guardian's own state is never touched.
func (e *Engine) CheckInChild(ctx context.Context, slug, childID, callerEmail string) (*entity.GuestChild, error) {
	var result *entity.GuestChild

	err := e.db.Atomic(ctx, func(ctx context.Context) error {
		event, err := e.event(ctx, slug, callerEmail)
		if err != nil {
			return err
		}
		child, parent, err := e.db.ChildByID(ctx, event.Id, childID)
		if err != nil {
			return err
		}
		if child == nil {
			return fmt.Errorf("%w: child", entity.ErrNotFound)
		}
		if !parent.IsConfirmed() {
			return entity.ErrGuardianNotConfirmed
		}
		if child.CheckedIn {
			return entity.ErrAlreadyCheckedIn
		}

		now := time.Now().UTC()
		if err = e.db.CheckInChild(ctx, child.Id, now); err != nil {
			return err
		}
		child.CheckedIn = true
		child.CheckedInAt = &now
		result = child
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.With(
		slog.String("event", slug),
		slog.String("child", childID),
	).Debug("child checked in")
	return result, nil
}

func (e *Engine) RevertChild(ctx context.Context, slug, childID, callerEmail string) (*entity.GuestChild, error) {
	var result *entity.GuestChild

	err := e.db.Atomic(ctx, func(ctx context.Context) error {
		event, err := e.event(ctx, slug, callerEmail)
		if err != nil {
			return err
		}
		child, _, err := e.db.ChildByID(ctx, event.Id, childID)
		if err != nil {
			return err
		}
		if child == nil {
			return fmt.Errorf("%w: child", entity.ErrNotFound)
		}
		if !child.CheckedIn {
			return entity.ErrNotCheckedIn
		}

		if err = e.db.RevertChildCheckIn(ctx, child.Id); err != nil {
			return err
		}
		child.CheckedIn = false
		child.CheckedInAt = nil
		result = child
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.With(
		slog.String("event", slug),
		slog.String("child", childID),
	).Debug("child check-in reverted")
	return result, nil
}
