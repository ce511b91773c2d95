package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"guestlist/internal/config"
	"guestlist/internal/http-server/handlers/checkin"
	"guestlist/internal/http-server/handlers/errors"
	"guestlist/internal/http-server/handlers/guests"
	"guestlist/internal/http-server/handlers/rsvp"
	"guestlist/internal/http-server/handlers/stats"
	"guestlist/internal/http-server/middleware/authenticate"
	"guestlist/internal/http-server/middleware/timeout"
	"guestlist/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	rsvp.Core
	checkin.Core
	stats.Core
	guests.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/v1", func(rootApi chi.Router) {
		// guest-facing, no authentication: the code is the credential
		rootApi.Route("/rsvp", func(rs chi.Router) {
			rs.Get("/{slug}/{code}", rsvp.Lookup(log, handler))
			rs.Post("/respond", rsvp.Respond(log, handler))
		})

		rootApi.Group(func(staff chi.Router) {
			staff.Use(authenticate.New(log, handler))
			staff.Route("/checkin/{slug}", func(ci chi.Router) {
				ci.Get("/stats", stats.Event(log, handler))
				ci.Get("/guests", checkin.Guests(log, handler))
				ci.Post("/validate", checkin.Validate(log, handler))
				ci.Post("/guest/checkin", checkin.Guest(log, handler))
				ci.Post("/guest/revert", checkin.RevertGuest(log, handler))
				ci.Post("/child/checkin", checkin.Child(log, handler))
				ci.Post("/child/revert", checkin.RevertChild(log, handler))
			})
			staff.Route("/guests", func(g chi.Router) {
				g.Post("/", guests.Create(log, handler))
				g.Get("/event/{eventId}", guests.ByEvent(log, handler))
				g.Put("/{eventId}/{id}", guests.Update(log, handler))
				g.Delete("/{eventId}/{id}", guests.Delete(log, handler))
			})
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
