package stats

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
	EventStats(ctx context.Context, slug, callerEmail string) (*entity.StatsReport, error)
}

// Event serves the live counters for one event.
func Event(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.stats")
		slug := chi.URLParam(r, "slug")
		user := cont.GetUser(r.Context())

		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("slug", slug),
			slog.String("user", user.Email),
		)

		if handler == nil {
			log.Error("stats service not available")
			render.JSON(w, r, response.Error("Stats service not available"))
			return
		}

		report, err := handler.EventStats(r.Context(), slug, user.Email)
		if err != nil {
			log.Error("event stats", sl.Err(err))
			render.Status(r, httperr.StatusOf(err))
			render.JSON(w, r, response.Error(httperr.Message(err)))
			return
		}
		log.Debug("stats served")

		render.JSON(w, r, response.Ok(report))
	}
}
