// Package stats computes live event aggregates. Nothing is cached or
// incremented: every report is recomputed from the source rows inside one
// snapshot, so the counters cannot drift from guest and child state.
package stats

import (
	"context"
	"fmt"
	"log/slog"

	"guestlist/entity"
	"guestlist/impl/access"
	"guestlist/lib/sl"
)

type Store interface {
	EventBySlug(ctx context.Context, slug string) (*entity.Event, error)
	CountGuests(ctx context.Context, eventID string, status entity.GuestStatus) (int64, error)
	CountChildren(ctx context.Context, eventID string, f entity.ChildFilter) (int64, error)
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	db  Store
	log *slog.Logger
}

func New(db Store, log *slog.Logger) *Service {
	if db == nil {
		panic("stats store is nil")
	}
	return &Service{
		db:  db,
		log: log.With(sl.Module("stats")),
	}
}

// Report returns the counters for one event. All counts run inside a single
// snapshot transaction so concurrent responses and check-ins cannot produce
// a report that mixes two states of the guest list.
func (s *Service) Report(ctx context.Context, slug, callerEmail string) (*entity.StatsReport, error) {
	event, err := s.db.EventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %s", entity.ErrNotFound, slug)
	}
	if err = access.Authorize(event, callerEmail); err != nil {
		return nil, err
	}

	var counts entity.EventStats
	err = s.db.Atomic(ctx, func(ctx context.Context) error {
		total, err := s.db.CountGuests(ctx, event.Id, "")
		if err != nil {
			return err
		}
		confirmedOnly, err := s.db.CountGuests(ctx, event.Id, entity.StatusConfirmed)
		if err != nil {
			return err
		}
		present, err := s.db.CountGuests(ctx, event.Id, entity.StatusPresent)
		if err != nil {
			return err
		}
		declined, err := s.db.CountGuests(ctx, event.Id, entity.StatusDeclined)
		if err != nil {
			return err
		}
		pending, err := s.db.CountGuests(ctx, event.Id, entity.StatusPending)
		if err != nil {
			return err
		}
		// Children of guests who never confirmed (or declined) stay out of
		// the total; checked-in children imply a confirmed parent already.
		totalChildren, err := s.db.CountChildren(ctx, event.Id, entity.ChildFilter{
			ParentStatus: []entity.GuestStatus{entity.StatusConfirmed, entity.StatusPresent},
		})
		if err != nil {
			return err
		}
		checkedIn := true
		childrenCheckedIn, err := s.db.CountChildren(ctx, event.Id, entity.ChildFilter{
			CheckedIn: &checkedIn,
		})
		if err != nil {
			return err
		}

		counts = entity.EventStats{
			TotalGuests:       total,
			Confirmed:         confirmedOnly + present,
			Present:           present,
			Declined:          declined,
			Pending:           pending,
			TotalChildren:     totalChildren,
			ChildrenCheckedIn: childrenCheckedIn,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.With(slog.String("event", slug)).Debug("stats computed")
	return &entity.StatsReport{
		Event: entity.EventInfo{
			Id:       event.Id,
			Name:     event.Name,
			Date:     event.Date,
			Time:     event.Time,
			Location: event.Location,
			Status:   event.Status,
		},
		Stats: counts,
	}, nil
}
