// Package guests is the admin side of the guest list: registration with a
// generated per-event code, contact updates and deletion. RSVP and check-in
// state are owned by their engines and never touched here, except that
// deleting a guest resets whoever that guest confirmed.
package guests

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"guestlist/entity"
	"guestlist/lib/codegen"
	"guestlist/lib/sl"
)

type Store interface {
	EventByID(ctx context.Context, id string) (*entity.Event, error)
	CodeExists(ctx context.Context, eventID, code string) (bool, error)
	CreateGuest(ctx context.Context, guest *entity.Guest) error
	GuestByID(ctx context.Context, eventID, guestID string) (*entity.Guest, error)
	GuestsByEvent(ctx context.Context, eventID string) ([]*entity.GuestDetails, error)
	UpdateGuestProfile(ctx context.Context, guestID string, upd *entity.UpdateGuestRequest) error
	ResetConfirmedBy(ctx context.Context, guestID string) error
	DeleteGuest(ctx context.Context, guestID string) error
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	db  Store
	log *slog.Logger
}

func New(db Store, log *slog.Logger) *Service {
	if db == nil {
		panic("guests store is nil")
	}
	return &Service{
		db:  db,
		log: log.With(sl.Module("guests")),
	}
}

// ownedEvent resolves the event and checks the caller is its admin.
func (s *Service) ownedEvent(ctx context.Context, eventID, adminEmail string) (*entity.Event, error) {
	event, err := s.db.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.AdminEmail != adminEmail {
		return nil, fmt.Errorf("%w: event", entity.ErrNotFound)
	}
	return event, nil
}

// Create registers a guest with a freshly generated code, unique within the
// event. The unique index on (event_id, code) backs the probe loop.
func (s *Service) Create(ctx context.Context, admin *entity.User, req *entity.CreateGuestRequest) (*entity.Guest, error) {
	event, err := s.ownedEvent(ctx, req.EventId, admin.Email)
	if err != nil {
		return nil, err
	}

	code, err := codegen.Unique(ctx, func(ctx context.Context, code string) (bool, error) {
		return s.db.CodeExists(ctx, event.Id, code)
	})
	if err != nil {
		return nil, err
	}

	guest := &entity.Guest{
		Id:        uuid.NewString(),
		EventId:   event.Id,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Code:      code,
		Status:    entity.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err = s.db.CreateGuest(ctx, guest); err != nil {
		return nil, err
	}

	s.log.With(
		slog.String("event", event.Id),
		slog.String("guest", guest.Id),
	).Debug("guest created")
	return guest, nil
}

// ByEvent lists the event's guests for its admin.
func (s *Service) ByEvent(ctx context.Context, admin *entity.User, eventID string) ([]*entity.GuestDetails, error) {
	event, err := s.ownedEvent(ctx, eventID, admin.Email)
	if err != nil {
		return nil, err
	}
	return s.db.GuestsByEvent(ctx, event.Id)
}

// Update changes contact details of a guest of an event owned by the caller.
func (s *Service) Update(ctx context.Context, admin *entity.User, eventID, guestID string, req *entity.UpdateGuestRequest) (*entity.Guest, error) {
	event, err := s.ownedEvent(ctx, eventID, admin.Email)
	if err != nil {
		return nil, err
	}
	guest, err := s.db.GuestByID(ctx, event.Id, guestID)
	if err != nil {
		return nil, err
	}
	if guest == nil {
		return nil, fmt.Errorf("%w: guest", entity.ErrNotFound)
	}
	if err = s.db.UpdateGuestProfile(ctx, guest.Id, req); err != nil {
		return nil, err
	}
	if req.Name != "" {
		guest.Name = req.Name
	}
	guest.Email = req.Email
	guest.Phone = req.Phone
	return guest, nil
}

// Delete removes the guest, its children and companion links, and returns
// guests this one had confirmed back to pending, all in one transaction.
func (s *Service) Delete(ctx context.Context, admin *entity.User, eventID, guestID string) error {
	err := s.db.Atomic(ctx, func(ctx context.Context) error {
		event, err := s.ownedEvent(ctx, eventID, admin.Email)
		if err != nil {
			return err
		}
		guest, err := s.db.GuestByID(ctx, event.Id, guestID)
		if err != nil {
			return err
		}
		if guest == nil {
			return fmt.Errorf("%w: guest", entity.ErrNotFound)
		}
		if err = s.db.ResetConfirmedBy(ctx, guest.Id); err != nil {
			return err
		}
		return s.db.DeleteGuest(ctx, guest.Id)
	})
	if err != nil {
		return err
	}

	s.log.With(
		slog.String("event", eventID),
		slog.String("guest", guestID),
	).Debug("guest deleted")
	return nil
}
