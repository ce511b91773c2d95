package rsvp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"guestlist/entity"
	httperr "guestlist/internal/http-server/handlers/errors"
	"guestlist/lib/api/response"
	"guestlist/lib/sl"
)

type Core interface {
	InvitationLookup(ctx context.Context, slug, code string) (*entity.GuestDetails, error)
	Respond(ctx context.Context, req *entity.RespondRequest) (*entity.Guest, error)
}

// Lookup serves the public invitation page data: guest record with
// companions, children and confirmer, resolved by slug and code.
func Lookup(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.rsvp")
		slug := chi.URLParam(r, "slug")
		code := chi.URLParam(r, "code")

		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("slug", slug),
			slog.String("code", code),
		)

		if handler == nil {
			log.Error("rsvp service not available")
			render.JSON(w, r, response.Error("RSVP service not available"))
			return
		}

		details, err := handler.InvitationLookup(r.Context(), slug, code)
		if err != nil {
			log.Error("invitation lookup", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("invitation found")

		render.JSON(w, r, response.Ok(details))
	}
}

// Respond handles a guest's confirm or decline.
func Respond(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.rsvp")

		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("rsvp service not available")
			render.JSON(w, r, response.Error("RSVP service not available"))
			return
		}

		var req entity.RespondRequest
		if err := render.Bind(r, &req); err != nil {
			log.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Invalid request: "+err.Error()))
			return
		}
		log = log.With(
			slog.String("slug", req.Slug),
			slog.String("code", req.Code),
			slog.String("action", string(req.Action)),
		)

		guest, err := handler.Respond(r.Context(), &req)
		if err != nil {
			log.Error("respond", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("invitation answered")

		render.JSON(w, r, response.Ok(guest))
	}
}
