package checkin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"guestlist/entity"
	httperr "guestlist/internal/http-server/handlers/errors"
	"guestlist/lib/api/cont"
	"guestlist/lib/api/response"
	"guestlist/lib/sl"
)

type Core interface {
	ValidateCode(ctx context.Context, slug, code, callerEmail string) (*entity.GuestDetails, error)
	ReceptionGuests(ctx context.Context, slug, callerEmail string) ([]*entity.GuestDetails, error)
	CheckInGuest(ctx context.Context, slug, guestID, callerEmail string) (*entity.Guest, error)
	RevertGuestCheckIn(ctx context.Context, slug, guestID, callerEmail string) (*entity.Guest, error)
	CheckInChild(ctx context.Context, slug, childID, callerEmail string) (*entity.GuestChild, error)
	RevertChildCheckIn(ctx context.Context, slug, childID, callerEmail string) (*entity.GuestChild, error)
}

// Validate resolves a scanned code for the reception desk before a check-in
// is committed.
func Validate(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, email := setup(logger, r, "validate")

		var req entity.ValidateCodeRequest
		if err := render.Bind(r, &req); err != nil {
			log.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Invalid request: "+err.Error()))
			return
		}
		log = log.With(slog.String("code", req.Code))

		details, err := handler.ValidateCode(r.Context(), chi.URLParam(r, "slug"), req.Code, email)
		if err != nil {
			log.Error("validate code", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("code validated")

		render.JSON(w, r, response.Ok(details))
	}
}

// Guests returns the event's full guest list for the reception desk.
func Guests(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, email := setup(logger, r, "guests")

		guests, err := handler.ReceptionGuests(r.Context(), chi.URLParam(r, "slug"), email)
		if err != nil {
			log.Error("reception guest list", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}

		render.JSON(w, r, response.Ok(guests))
	}
}

// Guest marks a guest's arrival.
func Guest(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, email := setup(logger, r, "guest.checkin")

		var req entity.CheckInRequest
		if err := render.Bind(r, &req); err != nil {
			log.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Invalid request: "+err.Error()))
			return
		}
		log = log.With(slog.String("guest_id", req.GuestId))

		guest, err := handler.CheckInGuest(r.Context(), chi.URLParam(r, "slug"), req.GuestId, email)
		if err != nil {
			log.Error("guest check-in", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("guest checked in")

		render.JSON(w, r, response.Ok(guest))
	}
}

// RevertGuest undoes a guest check-in, restoring confirmed.
func RevertGuest(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, email := setup(logger, r, "guest.revert")

		var req entity.CheckInRequest
		if err := render.Bind(r, &req); err != nil {
			log.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Invalid request: "+err.Error()))
			return
		}
		log = log.With(slog.String("guest_id", req.GuestId))

		guest, err := handler.RevertGuestCheckIn(r.Context(), chi.URLParam(r, "slug"), req.GuestId, email)
		if err != nil {
			log.Error("guest check-in revert", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("guest check-in reverted")

		render.JSON(w, r, response.Ok(guest))
	}
}

// Child marks a child's arrival; the guardian must be confirmed or present.
func Child(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, email := setup(logger, r, "child.checkin")

		var req entity.ChildCheckInRequest
		if err := render.Bind(r, &req); err != nil {
			log.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Invalid request: "+err.Error()))
			return
		}
		log = log.With(slog.String("child_id", req.ChildId))

		child, err := handler.CheckInChild(r.Context(), chi.URLParam(r, "slug"), req.ChildId, email)
		if err != nil {
			log.Error("child check-in", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("child checked in")

		render.JSON(w, r, response.Ok(child))
	}
}

// RevertChild undoes a child check-in.
func RevertChild(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, email := setup(logger, r, "child.revert")

		var req entity.ChildCheckInRequest
		if err := render.Bind(r, &req); err != nil {
			log.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Invalid request: "+err.Error()))
			return
		}
		log = log.With(slog.String("child_id", req.ChildId))

		child, err := handler.RevertChildCheckIn(r.Context(), chi.URLParam(r, "slug"), req.ChildId, email)
		if err != nil {
			log.Error("child check-in revert", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("child check-in reverted")

		render.JSON(w, r, response.Ok(child))
	}
}

func setup(logger *slog.Logger, r *http.Request, op string) (*slog.Logger, string) {
	user := cont.GetUser(r.Context())
	log := logger.With(
		sl.Module("http.handlers.checkin"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("op", op),
		slog.String("slug", chi.URLParam(r, "slug")),
		slog.String("user", user.Email),
	)
	return log, user.Email
}
