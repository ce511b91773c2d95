package core

import (
	"context"
	"fmt"
	"log/slog"

	"guestlist/entity"
	"guestlist/impl/checkin"
	"guestlist/impl/guests"
	"guestlist/impl/rsvp"
	"guestlist/impl/stats"
	"guestlist/lib/sl"
)

type AuthService interface {
	UserByToken(ctx context.Context, token string) (*entity.User, error)
}

// Core wires the engines together and is the single surface the HTTP
// handlers talk to, one method per public operation.
type Core struct {
	rsvp    *rsvp.Engine
	checkin *checkin.Engine
	stats   *stats.Service
	guests  *guests.Service
	auth    AuthService
	log     *slog.Logger
}

type Store interface {
	rsvp.Store
	checkin.Store
	stats.Store
	guests.Store
}

func New(db Store, log *slog.Logger) *Core {
	if db == nil {
		panic("store is nil")
	}
	return &Core{
		rsvp:    rsvp.New(db, log),
		checkin: checkin.New(db, log),
		stats:   stats.New(db, log),
		guests:  guests.New(db, log),
		log:     log.With(sl.Module("core")),
	}
}

func (c *Core) SetAuthService(auth AuthService) {
	c.auth = auth
}

func (c *Core) AuthenticateByToken(ctx context.Context, token string) (*entity.User, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.UserByToken(ctx, token)
}

func (c *Core) InvitationLookup(ctx context.Context, slug, code string) (*entity.GuestDetails, error) {
	return c.rsvp.Lookup(ctx, slug, code)
}

func (c *Core) Respond(ctx context.Context, req *entity.RespondRequest) (*entity.Guest, error) {
	return c.rsvp.Respond(ctx, req)
}

func (c *Core) ValidateCode(ctx context.Context, slug, code, callerEmail string) (*entity.GuestDetails, error) {
	return c.checkin.ValidateCode(ctx, slug, code, callerEmail)
}

func (c *Core) ReceptionGuests(ctx context.Context, slug, callerEmail string) ([]*entity.GuestDetails, error) {
	return c.checkin.Guests(ctx, slug, callerEmail)
}

func (c *Core) CheckInGuest(ctx context.Context, slug, guestID, callerEmail string) (*entity.Guest, error) {
	return c.checkin.CheckInGuest(ctx, slug, guestID, callerEmail)
}

func (c *Core) RevertGuestCheckIn(ctx context.Context, slug, guestID, callerEmail string) (*entity.Guest, error) {
	return c.checkin.RevertGuest(ctx, slug, guestID, callerEmail)
}

func (c *Core) CheckInChild(ctx context.Context, slug, childID, callerEmail string) (*entity.GuestChild, error) {
	return c.checkin.CheckInChild(ctx, slug, childID, callerEmail)
}

func (c *Core) RevertChildCheckIn(ctx context.Context, slug, childID, callerEmail string) (*entity.GuestChild, error) {
	return c.checkin.RevertChild(ctx, slug, childID, callerEmail)
}

func (c *Core) EventStats(ctx context.Context, slug, callerEmail string) (*entity.StatsReport, error) {
	return c.stats.Report(ctx, slug, callerEmail)
}

func (c *Core) CreateGuest(ctx context.Context, admin *entity.User, req *entity.CreateGuestRequest) (*entity.Guest, error) {
	return c.guests.Create(ctx, admin, req)
}

func (c *Core) EventGuests(ctx context.Context, admin *entity.User, eventID string) ([]*entity.GuestDetails, error) {
	return c.guests.ByEvent(ctx, admin, eventID)
}

func (c *Core) UpdateGuest(ctx context.Context, admin *entity.User, eventID, guestID string, req *entity.UpdateGuestRequest) (*entity.Guest, error) {
	return c.guests.Update(ctx, admin, eventID, guestID, req)
}

func (c *Core) DeleteGuest(ctx context.Context, admin *entity.User, eventID, guestID string) error {
	return c.guests.Delete(ctx, admin, eventID, guestID)
}
