package rsvp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"guestlist/entity"
)

type fakeStore struct {
	mu          sync.Mutex
	events      map[string]*entity.Event // by slug
	guests      map[string]*entity.Guest // by id
	links       map[string]bool          // guestId|companionId
	children    []*entity.GuestChild
	transitions map[string]int // companion id -> times actually confirmed
}

func newFakeStore(events ...*entity.Event) *fakeStore {
	s := &fakeStore{
		events:      make(map[string]*entity.Event),
		guests:      make(map[string]*entity.Guest),
		links:       make(map[string]bool),
		transitions: make(map[string]int),
	}
	for _, e := range events {
		s.events[e.Slug] = e
	}
	return s
}

func (s *fakeStore) addGuest(g *entity.Guest) {
	s.guests[g.Id] = g
}

func (s *fakeStore) EventBySlug(_ context.Context, slug string) (*entity.Event, error) {
	e, ok := s.events[slug]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (s *fakeStore) GuestByCode(_ context.Context, eventID, code string) (*entity.Guest, error) {
	for _, g := range s.guests {
		if g.EventId == eventID && g.Code == code {
			copied := *g
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GuestDetails(ctx context.Context, eventID, code string) (*entity.GuestDetails, error) {
	g, err := s.GuestByCode(ctx, eventID, code)
	if err != nil || g == nil {
		return nil, err
	}
	return &entity.GuestDetails{Guest: *g}, nil
}

func (s *fakeStore) GuestsByCodes(_ context.Context, eventID string, codes []string) ([]*entity.Guest, error) {
	var found []*entity.Guest
	for _, code := range codes {
		for _, g := range s.guests {
			if g.EventId == eventID && g.Code == code {
				copied := *g
				found = append(found, &copied)
			}
		}
	}
	return found, nil
}

func (s *fakeStore) ConfirmGuest(_ context.Context, guestID string, at time.Time) error {
	g, ok := s.guests[guestID]
	if !ok || g.Status != entity.StatusPending {
		return entity.ErrAlreadyResponded
	}
	g.Status = entity.StatusConfirmed
	g.RespondedAt = &at
	return nil
}

func (s *fakeStore) DeclineGuest(_ context.Context, guestID string, at time.Time) error {
	g, ok := s.guests[guestID]
	if !ok || g.Status != entity.StatusPending {
		return entity.ErrAlreadyResponded
	}
	g.Status = entity.StatusDeclined
	g.RespondedAt = &at
	return nil
}

func (s *fakeStore) ConfirmCompanions(_ context.Context, ids []string, confirmedBy string, at time.Time) error {
	for _, id := range ids {
		g, ok := s.guests[id]
		if !ok || g.Status != entity.StatusPending {
			continue
		}
		g.Status = entity.StatusConfirmed
		g.ConfirmedByGuestId = confirmedBy
		g.RespondedAt = &at
		s.transitions[id]++
	}
	return nil
}

func (s *fakeStore) CreateCompanionLinks(_ context.Context, links []*entity.GuestCompanion) error {
	for _, l := range links {
		s.links[l.GuestId+"|"+l.CompanionGuestId] = true
	}
	return nil
}

func (s *fakeStore) CreateChildren(_ context.Context, children []*entity.GuestChild) error {
	for _, c := range children {
		copied := *c
		s.children = append(s.children, &copied)
	}
	return nil
}

func (s *fakeStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func testEvent() *entity.Event {
	return &entity.Event{
		Id:             "evt-1",
		Slug:           "garden-party",
		Status:         entity.EventActive,
		MaxChildrenAge: 12,
	}
}

func pendingGuest(id, code string) *entity.Guest {
	return &entity.Guest{
		Id:      id,
		EventId: "evt-1",
		Name:    "Guest " + id,
		Code:    code,
		Status:  entity.StatusPending,
	}
}

func confirmRequest(code string) *entity.RespondRequest {
	return &entity.RespondRequest{
		Slug:   "garden-party",
		Code:   code,
		Action: entity.ActionConfirm,
	}
}

func TestRespondNotFound(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA222"))
	engine := New(store, discardLogger())

	tests := []struct {
		name string
		slug string
		code string
	}{
		{name: "unknown event", slug: "no-such-event", code: "AAA222"},
		{name: "unknown code", slug: "garden-party", code: "ZZZ999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Respond(context.Background(), &entity.RespondRequest{
				Slug: tt.slug, Code: tt.code, Action: entity.ActionConfirm,
			})
			if !errors.Is(err, entity.ErrNotFound) {
				t.Errorf("Respond() = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestRespondEventCancelled(t *testing.T) {
	event := testEvent()
	event.Status = entity.EventCancelled
	store := newFakeStore(event)
	store.addGuest(pendingGuest("g-a", "AAA222"))
	engine := New(store, discardLogger())

	_, err := engine.Respond(context.Background(), confirmRequest("AAA222"))
	if !errors.Is(err, entity.ErrEventCancelled) {
		t.Fatalf("Respond() = %v, want ErrEventCancelled", err)
	}
}

func TestRespondDeadlinePassed(t *testing.T) {
	event := testEvent()
	passed := time.Now().UTC().Add(-time.Hour)
	event.ConfirmationDeadline = &passed
	store := newFakeStore(event)
	store.addGuest(pendingGuest("g-a", "AAA222"))
	engine := New(store, discardLogger())

	_, err := engine.Respond(context.Background(), confirmRequest("AAA222"))
	if !errors.Is(err, entity.ErrDeadlinePassed) {
		t.Fatalf("Respond() = %v, want ErrDeadlinePassed", err)
	}
}

func TestRespondDeadlineOpen(t *testing.T) {
	event := testEvent()
	open := time.Now().UTC().Add(time.Hour)
	event.ConfirmationDeadline = &open
	store := newFakeStore(event)
	store.addGuest(pendingGuest("g-a", "AAA222"))
	engine := New(store, discardLogger())

	guest, err := engine.Respond(context.Background(), confirmRequest("AAA222"))
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if guest.Status != entity.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", guest.Status)
	}
}

func TestRespondNotIdempotent(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA222"))
	engine := New(store, discardLogger())

	req := confirmRequest("AAA222")
	if _, err := engine.Respond(context.Background(), req); err != nil {
		t.Fatalf("first Respond() error = %v", err)
	}
	_, err := engine.Respond(context.Background(), req)
	if !errors.Is(err, entity.ErrAlreadyResponded) {
		t.Fatalf("second Respond() = %v, want ErrAlreadyResponded", err)
	}
}

func TestRespondDecline(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA222"))
	store.addGuest(pendingGuest("g-b", "BBB333"))
	engine := New(store, discardLogger())

	// companions and children supplied with a decline are ignored
	guest, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:       "garden-party",
		Code:       "AAA222",
		Action:     entity.ActionDecline,
		Companions: []string{"BBB333"},
		Children:   []entity.ChildInput{{Name: "Mia", Age: 4}},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if guest.Status != entity.StatusDeclined {
		t.Errorf("status = %s, want declined", guest.Status)
	}
	if guest.RespondedAt == nil {
		t.Error("respondedAt not set")
	}
	if len(store.links) != 0 {
		t.Errorf("links created on decline: %d", len(store.links))
	}
	if len(store.children) != 0 {
		t.Errorf("children created on decline: %d", len(store.children))
	}
	if store.guests["g-b"].Status != entity.StatusPending {
		t.Errorf("companion transitioned on decline: %s", store.guests["g-b"].Status)
	}
}

func TestRespondConfirmWithCompanion(t *testing.T) {
	event := testEvent()
	event.MaxCompanionsPerGuest = intPtr(1)
	store := newFakeStore(event)
	store.addGuest(pendingGuest("g-a", "AAA111"))
	store.addGuest(pendingGuest("g-b", "BBB222"))
	engine := New(store, discardLogger())

	guest, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:       "garden-party",
		Code:       "AAA111",
		Action:     entity.ActionConfirm,
		Companions: []string{"BBB222"},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if guest.Status != entity.StatusConfirmed {
		t.Errorf("guest status = %s, want confirmed", guest.Status)
	}
	companion := store.guests["g-b"]
	if companion.Status != entity.StatusConfirmed {
		t.Errorf("companion status = %s, want confirmed", companion.Status)
	}
	if companion.ConfirmedByGuestId != "g-a" {
		t.Errorf("companion confirmedBy = %q, want g-a", companion.ConfirmedByGuestId)
	}
	if companion.RespondedAt == nil {
		t.Error("companion respondedAt not set")
	}
	if !store.links["g-a|g-b"] {
		t.Error("companion link (g-a, g-b) not created")
	}
	if len(store.links) != 1 {
		t.Errorf("links = %d, want 1", len(store.links))
	}
}

func TestRespondConcurrentOverlappingCompanions(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA111"))
	store.addGuest(pendingGuest("g-b", "BBB222"))
	store.addGuest(pendingGuest("g-c", "CCC333"))
	engine := New(store, discardLogger())

	// two guests confirm at the same time, both naming the pending g-b
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, code := range []string{"AAA111", "CCC333"} {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			_, err := engine.Respond(context.Background(), &entity.RespondRequest{
				Slug:       "garden-party",
				Code:       code,
				Action:     entity.ActionConfirm,
				Companions: []string{"BBB222"},
			})
			errs <- err
		}(code)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Respond() error = %v", err)
		}
	}

	companion := store.guests["g-b"]
	if companion.Status != entity.StatusConfirmed {
		t.Fatalf("companion status = %s, want confirmed", companion.Status)
	}
	if store.transitions["g-b"] != 1 {
		t.Errorf("companion transitioned %d times, want 1", store.transitions["g-b"])
	}
	if companion.ConfirmedByGuestId != "g-a" && companion.ConfirmedByGuestId != "g-c" {
		t.Errorf("companion confirmedBy = %q, want g-a or g-c", companion.ConfirmedByGuestId)
	}
	if companion.RespondedAt == nil {
		t.Error("companion respondedAt not set")
	}
	if !store.links["g-a|g-b"] || !store.links["g-c|g-b"] {
		t.Error("each confirmer must hold its own link to g-b")
	}
	if len(store.links) != 2 {
		t.Errorf("links = %d, want 2", len(store.links))
	}
}

func TestRespondConfirmedCompanionUntouched(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA111"))
	already := pendingGuest("g-b", "BBB222")
	already.Status = entity.StatusConfirmed
	already.ConfirmedByGuestId = "g-x"
	store.addGuest(already)
	engine := New(store, discardLogger())

	_, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:       "garden-party",
		Code:       "AAA111",
		Action:     entity.ActionConfirm,
		Companions: []string{"BBB222"},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	companion := store.guests["g-b"]
	if companion.ConfirmedByGuestId != "g-x" {
		t.Errorf("confirmer overwritten: %q", companion.ConfirmedByGuestId)
	}
	if !store.links["g-a|g-b"] {
		t.Error("already-confirmed companion still must be linked")
	}
}

func TestRespondCompanionLimitExceeded(t *testing.T) {
	event := testEvent()
	event.MaxCompanionsPerGuest = intPtr(1)
	store := newFakeStore(event)
	store.addGuest(pendingGuest("g-c", "AAA111"))
	store.addGuest(pendingGuest("g-b", "BBB222"))
	store.addGuest(pendingGuest("g-d", "CCC333"))
	engine := New(store, discardLogger())

	_, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:       "garden-party",
		Code:       "AAA111",
		Action:     entity.ActionConfirm,
		Companions: []string{"BBB222", "CCC333"},
	})
	if !errors.Is(err, entity.ErrCompanionLimit) {
		t.Fatalf("Respond() = %v, want ErrCompanionLimit", err)
	}
	for _, id := range []string{"g-c", "g-b", "g-d"} {
		if store.guests[id].Status != entity.StatusPending {
			t.Errorf("guest %s mutated to %s", id, store.guests[id].Status)
		}
	}
	if len(store.links) != 0 {
		t.Errorf("links created on failure: %d", len(store.links))
	}
}

func TestRespondChildLimitExceeded(t *testing.T) {
	event := testEvent()
	event.MaxChildrenPerGuest = intPtr(1)
	store := newFakeStore(event)
	store.addGuest(pendingGuest("g-a", "AAA111"))
	engine := New(store, discardLogger())

	_, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:   "garden-party",
		Code:   "AAA111",
		Action: entity.ActionConfirm,
		Children: []entity.ChildInput{
			{Name: "Mia", Age: 3},
			{Name: "Theo", Age: 6},
		},
	})
	if !errors.Is(err, entity.ErrChildLimit) {
		t.Fatalf("Respond() = %v, want ErrChildLimit", err)
	}
	if len(store.children) != 0 {
		t.Errorf("children created on failure: %d", len(store.children))
	}
}

func TestRespondChildAgeExceeded(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-d", "DDD444"))
	engine := New(store, discardLogger())

	_, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:     "garden-party",
		Code:     "DDD444",
		Action:   entity.ActionConfirm,
		Children: []entity.ChildInput{{Name: "Lu", Age: 14}},
	})
	if !errors.Is(err, entity.ErrChildAge) {
		t.Fatalf("Respond() = %v, want ErrChildAge", err)
	}
	if store.guests["g-d"].Status != entity.StatusPending {
		t.Errorf("guest mutated to %s", store.guests["g-d"].Status)
	}
	if len(store.children) != 0 {
		t.Errorf("children created on failure: %d", len(store.children))
	}
}

func TestRespondInvalidCompanionCode(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA111"))
	store.addGuest(pendingGuest("g-b", "BBB222"))
	engine := New(store, discardLogger())

	// one bad code rejects the whole batch
	_, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:       "garden-party",
		Code:       "AAA111",
		Action:     entity.ActionConfirm,
		Companions: []string{"BBB222", "ZZZ999"},
	})
	if !errors.Is(err, entity.ErrInvalidCompanionCode) {
		t.Fatalf("Respond() = %v, want ErrInvalidCompanionCode", err)
	}
	if store.guests["g-b"].Status != entity.StatusPending {
		t.Errorf("valid companion mutated: %s", store.guests["g-b"].Status)
	}
	if len(store.links) != 0 {
		t.Errorf("links created on failure: %d", len(store.links))
	}
}

func TestRespondSelfCompanion(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA111"))
	engine := New(store, discardLogger())

	_, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:       "garden-party",
		Code:       "AAA111",
		Action:     entity.ActionConfirm,
		Companions: []string{"AAA111"},
	})
	if !errors.Is(err, entity.ErrSelfCompanion) {
		t.Fatalf("Respond() = %v, want ErrSelfCompanion", err)
	}
}

func TestRespondCompanionDeclined(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA111"))
	declined := pendingGuest("g-b", "BBB222")
	declined.Status = entity.StatusDeclined
	store.addGuest(declined)
	engine := New(store, discardLogger())

	_, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:       "garden-party",
		Code:       "AAA111",
		Action:     entity.ActionConfirm,
		Companions: []string{"BBB222"},
	})
	if !errors.Is(err, entity.ErrCompanionDeclined) {
		t.Fatalf("Respond() = %v, want ErrCompanionDeclined", err)
	}
	if store.guests["g-b"].Status != entity.StatusDeclined {
		t.Errorf("declined companion mutated: %s", store.guests["g-b"].Status)
	}
}

func TestRespondConfirmWithChildren(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA111"))
	engine := New(store, discardLogger())

	_, err := engine.Respond(context.Background(), &entity.RespondRequest{
		Slug:   "garden-party",
		Code:   "AAA111",
		Action: entity.ActionConfirm,
		Children: []entity.ChildInput{
			{Name: "Mia", Age: 3},
			{Name: "Theo", Age: 12},
		},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(store.children) != 2 {
		t.Fatalf("children = %d, want 2", len(store.children))
	}
	for _, child := range store.children {
		if child.GuestId != "g-a" {
			t.Errorf("child %s parented to %q, want g-a", child.Name, child.GuestId)
		}
		if child.Id == "" {
			t.Errorf("child %s has empty id", child.Name)
		}
		if child.CheckedIn {
			t.Errorf("child %s created already checked in", child.Name)
		}
	}
}

func TestLookup(t *testing.T) {
	store := newFakeStore(testEvent())
	store.addGuest(pendingGuest("g-a", "AAA111"))
	engine := New(store, discardLogger())

	details, err := engine.Lookup(context.Background(), "garden-party", "AAA111")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if details.Id != "g-a" {
		t.Errorf("Lookup() guest = %s, want g-a", details.Id)
	}

	if _, err = engine.Lookup(context.Background(), "garden-party", "ZZZ999"); !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("Lookup(bad code) = %v, want ErrNotFound", err)
	}
	if _, err = engine.Lookup(context.Background(), "no-such-event", "AAA111"); !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("Lookup(bad slug) = %v, want ErrNotFound", err)
	}
}
