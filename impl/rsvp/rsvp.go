// Package rsvp applies a guest's answer to an invitation: a one-time
// confirm or decline, with companions and children attached during the
// same confirmation and never afterwards.
package rsvp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"guestlist/entity"
	"guestlist/lib/sl"
)

type Store interface {
	EventBySlug(ctx context.Context, slug string) (*entity.Event, error)
	GuestByCode(ctx context.Context, eventID, code string) (*entity.Guest, error)
	GuestDetails(ctx context.Context, eventID, code string) (*entity.GuestDetails, error)
	GuestsByCodes(ctx context.Context, eventID string, codes []string) ([]*entity.Guest, error)
	ConfirmGuest(ctx context.Context, guestID string, at time.Time) error
	DeclineGuest(ctx context.Context, guestID string, at time.Time) error
	ConfirmCompanions(ctx context.Context, ids []string, confirmedBy string, at time.Time) error
	CreateCompanionLinks(ctx context.Context, links []*entity.GuestCompanion) error
	CreateChildren(ctx context.Context, children []*entity.GuestChild) error
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

type Engine struct {
	db  Store
	log *slog.Logger
}

func New(db Store, log *slog.Logger) *Engine {
	if db == nil {
		panic("rsvp store is nil")
	}
	return &Engine{
		db:  db,
		log: log.With(sl.Module("rsvp")),
	}
}

// Lookup resolves an invitation by event slug and guest code, with linked
// companions, children and confirmer. Public, read-only.
func (e *Engine) Lookup(ctx context.Context, slug, code string) (*entity.GuestDetails, error) {
	event, err := e.db.EventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %s", entity.ErrNotFound, slug)
	}
	details, err := e.db.GuestDetails(ctx, event.Id, code)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, fmt.Errorf("%w: invitation code", entity.ErrNotFound)
	}
	return details, nil
}

// Respond applies a confirm or decline. Every read and write of one call runs
// in a single transaction: either the whole response lands (status changes,
// companion links, child rows) or none of it does.
func (e *Engine) Respond(ctx context.Context, req *entity.RespondRequest) (*entity.Guest, error) {
	var result *entity.Guest

	err := e.db.Atomic(ctx, func(ctx context.Context) error {
		event, err := e.db.EventBySlug(ctx, req.Slug)
		if err != nil {
			return err
		}
		if event == nil {
			return fmt.Errorf("%w: event %s", entity.ErrNotFound, req.Slug)
		}
		guest, err := e.db.GuestByCode(ctx, event.Id, req.Code)
		if err != nil {
			return err
		}
		if guest == nil {
			return fmt.Errorf("%w: invitation code", entity.ErrNotFound)
		}

		if event.IsCancelled() {
			return entity.ErrEventCancelled
		}
		now := time.Now().UTC()
		if event.DeadlineExpired(now) {
			return entity.ErrDeadlinePassed
		}
		if guest.HasResponded() {
			return entity.ErrAlreadyResponded
		}

		if req.Action == entity.ActionDecline {
			if err = e.db.DeclineGuest(ctx, guest.Id, now); err != nil {
				return err
			}
			guest.Status = entity.StatusDeclined
			guest.RespondedAt = &now
			result = guest
			return nil
		}

		result, err = e.confirm(ctx, event, guest, req, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.With(
		slog.String("event", req.Slug),
		slog.String("guest", result.Id),
		slog.String("action", string(req.Action)),
	).Debug("invitation answered")
	return result, nil
}

func (e *Engine) confirm(ctx context.Context, event *entity.Event, guest *entity.Guest, req *entity.RespondRequest, now time.Time) (*entity.Guest, error) {
	if event.MaxCompanionsPerGuest != nil && len(req.Companions) > *event.MaxCompanionsPerGuest {
		return nil, fmt.Errorf("%w: maximum %d", entity.ErrCompanionLimit, *event.MaxCompanionsPerGuest)
	}
	if event.MaxChildrenPerGuest != nil && len(req.Children) > *event.MaxChildrenPerGuest {
		return nil, fmt.Errorf("%w: maximum %d", entity.ErrChildLimit, *event.MaxChildrenPerGuest)
	}
	for _, child := range req.Children {
		if child.Age > event.MaxChildrenAge {
			return nil, fmt.Errorf("%w: maximum age %d", entity.ErrChildAge, event.MaxChildrenAge)
		}
	}

	var companions []*entity.Guest
	if len(req.Companions) > 0 {
		var err error
		companions, err = e.db.GuestsByCodes(ctx, event.Id, req.Companions)
		if err != nil {
			return nil, err
		}
		// Any unknown code rejects the whole batch, nothing partial.
		if len(companions) != len(req.Companions) {
			return nil, entity.ErrInvalidCompanionCode
		}
		for _, c := range companions {
			if c.Id == guest.Id {
				return nil, entity.ErrSelfCompanion
			}
			if c.Status == entity.StatusDeclined {
				return nil, fmt.Errorf("%w: %s", entity.ErrCompanionDeclined, c.Code)
			}
		}
	}

	if len(companions) > 0 {
		pending := make([]string, 0, len(companions))
		links := make([]*entity.GuestCompanion, 0, len(companions))
		for _, c := range companions {
			if c.Status == entity.StatusPending {
				pending = append(pending, c.Id)
			}
			links = append(links, &entity.GuestCompanion{
				GuestId:          guest.Id,
				CompanionGuestId: c.Id,
			})
		}
		if err := e.db.ConfirmCompanions(ctx, pending, guest.Id, now); err != nil {
			return nil, err
		}
		if err := e.db.CreateCompanionLinks(ctx, links); err != nil {
			return nil, err
		}
	}

	if len(req.Children) > 0 {
		children := make([]*entity.GuestChild, 0, len(req.Children))
		for _, c := range req.Children {
			children = append(children, &entity.GuestChild{
				Id:        uuid.NewString(),
				GuestId:   guest.Id,
				Name:      c.Name,
				Age:       c.Age,
				CreatedAt: now,
			})
		}
		if err := e.db.CreateChildren(ctx, children); err != nil {
			return nil, err
		}
	}

	if err := e.db.ConfirmGuest(ctx, guest.Id, now); err != nil {
		return nil, err
	}
	guest.Status = entity.StatusConfirmed
	guest.RespondedAt = &now
	return guest, nil
}
