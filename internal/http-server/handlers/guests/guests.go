package guests

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
	CreateGuest(ctx context.Context, admin *entity.User, req *entity.CreateGuestRequest) (*entity.Guest, error)
	EventGuests(ctx context.Context, admin *entity.User, eventID string) ([]*entity.GuestDetails, error)
	UpdateGuest(ctx context.Context, admin *entity.User, eventID, guestID string, req *entity.UpdateGuestRequest) (*entity.Guest, error)
	DeleteGuest(ctx context.Context, admin *entity.User, eventID, guestID string) error
}

// Create registers a guest on one of the caller's events; the invitation code
// is generated server-side.
func Create(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, user := setup(logger, r, "create")

		var req entity.CreateGuestRequest
		if err := render.Bind(r, &req); err != nil {
			log.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Invalid request: "+err.Error()))
			return
		}
		log = log.With(slog.String("event_id", req.EventId))

		guest, err := handler.CreateGuest(r.Context(), user, &req)
		if err != nil {
			log.Error("create guest", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.With(slog.String("guest_id", guest.Id)).Debug("guest created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(guest))
	}
}

// ByEvent lists all guests of one of the caller's events.
func ByEvent(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, user := setup(logger, r, "list")
		eventID := chi.URLParam(r, "eventId")
		log = log.With(slog.String("event_id", eventID))

		guests, err := handler.EventGuests(r.Context(), user, eventID)
		if err != nil {
			log.Error("list guests", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}

		render.JSON(w, r, response.Ok(guests))
	}
}

// Update changes a guest's contact details.
func Update(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, user := setup(logger, r, "update")
		eventID := chi.URLParam(r, "eventId")
		guestID := chi.URLParam(r, "id")
		log = log.With(
			slog.String("event_id", eventID),
			slog.String("guest_id", guestID),
		)

		var req entity.UpdateGuestRequest
		if err := render.Bind(r, &req); err != nil {
			log.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Invalid request: "+err.Error()))
			return
		}

		guest, err := handler.UpdateGuest(r.Context(), user, eventID, guestID, &req)
		if err != nil {
			log.Error("update guest", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("guest updated")

		render.JSON(w, r, response.Ok(guest))
	}
}

// Delete removes a guest and cascades link and child cleanup.
func Delete(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, user := setup(logger, r, "delete")
		eventID := chi.URLParam(r, "eventId")
		guestID := chi.URLParam(r, "id")
		log = log.With(
			slog.String("event_id", eventID),
			slog.String("guest_id", guestID),
		)

		if err := handler.DeleteGuest(r.Context(), user, eventID, guestID); err != nil {
			log.Error("delete guest", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("guest deleted")

		render.JSON(w, r, response.Ok(nil))
	}
}

func setup(logger *slog.Logger, r *http.Request, op string) (*slog.Logger, *entity.User) {
	user := cont.GetUser(r.Context())
	log := logger.With(
		sl.Module("http.handlers.guests"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("op", op),
		slog.String("user", user.Email),
	)
	return log, user
}
