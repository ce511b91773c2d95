package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"guestlist/entity"
)

func (m *MongoDB) GuestByCode(ctx context.Context, eventID, code string) (*entity.Guest, error) {
	filter := bson.D{{Key: "event_id", Value: eventID}, {Key: "code", Value: code}}
	return m.findGuest(ctx, filter)
}

func (m *MongoDB) GuestByID(ctx context.Context, eventID, guestID string) (*entity.Guest, error) {
	filter := bson.D{{Key: "_id", Value: guestID}, {Key: "event_id", Value: eventID}}
	return m.findGuest(ctx, filter)
}

func (m *MongoDB) findGuest(ctx context.Context, filter bson.D) (*entity.Guest, error) {
	var guest entity.Guest
	err := m.col(collectionGuests).FindOne(ctx, filter).Decode(&guest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find guest: %w", err)
	}
	return &guest, nil
}

func (m *MongoDB) GuestsByCodes(ctx context.Context, eventID string, codes []string) ([]*entity.Guest, error) {
	filter := bson.D{
		{Key: "event_id", Value: eventID},
		{Key: "code", Value: bson.D{{Key: "$in", Value: codes}}},
	}
	return m.findGuests(ctx, filter, nil)
}

func (m *MongoDB) findGuests(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]*entity.Guest, error) {
	cursor, err := m.col(collectionGuests).Find(ctx, filter, options.MergeFindOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("mongodb find guests: %w", err)
	}
	defer cursor.Close(ctx)

	var guests []*entity.Guest
	if err = cursor.All(ctx, &guests); err != nil {
		return nil, fmt.Errorf("mongodb decode guests: %w", err)
	}
	return guests, nil
}

// GuestDetails resolves a guest by code together with linked companions,
// children and the confirming guest, for invitation lookups and the
// staff-side validate-code screen.
func (m *MongoDB) GuestDetails(ctx context.Context, eventID, code string) (*entity.GuestDetails, error) {
	guest, err := m.GuestByCode(ctx, eventID, code)
	if err != nil || guest == nil {
		return nil, err
	}
	return m.loadDetails(ctx, guest)
}

// GuestsByEvent returns the full reception list, sorted by name.
func (m *MongoDB) GuestsByEvent(ctx context.Context, eventID string) ([]*entity.GuestDetails, error) {
	filter := bson.D{{Key: "event_id", Value: eventID}}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	guests, err := m.findGuests(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	details := make([]*entity.GuestDetails, 0, len(guests))
	for _, guest := range guests {
		d, err := m.loadDetails(ctx, guest)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (m *MongoDB) loadDetails(ctx context.Context, guest *entity.Guest) (*entity.GuestDetails, error) {
	details := &entity.GuestDetails{
		Guest:      *guest,
		Companions: []*entity.GuestRef{},
		Children:   []*entity.GuestChild{},
	}

	linkFilter := bson.D{{Key: "guest_id", Value: guest.Id}}
	cursor, err := m.col(collectionCompanions).Find(ctx, linkFilter)
	if err != nil {
		return nil, fmt.Errorf("mongodb find companion links: %w", err)
	}
	var links []*entity.GuestCompanion
	err = cursor.All(ctx, &links)
	if err != nil {
		return nil, fmt.Errorf("mongodb decode companion links: %w", err)
	}
	if len(links) > 0 {
		ids := make([]string, 0, len(links))
		for _, link := range links {
			ids = append(ids, link.CompanionGuestId)
		}
		refFilter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}
		companions, err := m.findGuests(ctx, refFilter, nil)
		if err != nil {
			return nil, err
		}
		for _, c := range companions {
			details.Companions = append(details.Companions, guestRef(c))
		}
	}

	childFilter := bson.D{{Key: "guest_id", Value: guest.Id}}
	childOpts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	childCursor, err := m.col(collectionChildren).Find(ctx, childFilter, childOpts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find children: %w", err)
	}
	err = childCursor.All(ctx, &details.Children)
	if err != nil {
		return nil, fmt.Errorf("mongodb decode children: %w", err)
	}

	if guest.ConfirmedByGuestId != "" {
		confirmer, err := m.findGuest(ctx, bson.D{{Key: "_id", Value: guest.ConfirmedByGuestId}})
		if err != nil {
			return nil, err
		}
		if confirmer != nil {
			details.ConfirmedBy = guestRef(confirmer)
		}
	}
	return details, nil
}

func guestRef(g *entity.Guest) *entity.GuestRef {
	return &entity.GuestRef{Id: g.Id, Name: g.Name, Code: g.Code, Status: g.Status}
}

func (m *MongoDB) CodeExists(ctx context.Context, eventID, code string) (bool, error) {
	filter := bson.D{{Key: "event_id", Value: eventID}, {Key: "code", Value: code}}
	count, err := m.col(collectionGuests).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongodb code lookup: %w", err)
	}
	return count > 0, nil
}

func (m *MongoDB) CreateGuest(ctx context.Context, guest *entity.Guest) error {
	_, err := m.col(collectionGuests).InsertOne(ctx, guest)
	if err != nil {
		return fmt.Errorf("mongodb insert guest: %w", err)
	}
	return nil
}

func (m *MongoDB) UpdateGuestProfile(ctx context.Context, guestID string, upd *entity.UpdateGuestRequest) error {
	fields := bson.D{}
	if upd.Name != "" {
		fields = append(fields, bson.E{Key: "name", Value: upd.Name})
	}
	fields = append(fields,
		bson.E{Key: "email", Value: upd.Email},
		bson.E{Key: "phone", Value: upd.Phone},
	)
	filter := bson.D{{Key: "_id", Value: guestID}}
	update := bson.D{{Key: "$set", Value: fields}}
	_, err := m.col(collectionGuests).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update guest: %w", err)
	}
	return nil
}

// ConfirmGuest flips the guest to confirmed. The pending filter makes the
// write conditional: a concurrent response that already landed leaves nothing
// to match and the caller gets ErrAlreadyResponded.
func (m *MongoDB) ConfirmGuest(ctx context.Context, guestID string, at time.Time) error {
	return m.respond(ctx, guestID, entity.StatusConfirmed, at)
}

func (m *MongoDB) DeclineGuest(ctx context.Context, guestID string, at time.Time) error {
	return m.respond(ctx, guestID, entity.StatusDeclined, at)
}

func (m *MongoDB) respond(ctx context.Context, guestID string, status entity.GuestStatus, at time.Time) error {
	filter := bson.D{{Key: "_id", Value: guestID}, {Key: "status", Value: entity.StatusPending}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "responded_at", Value: at},
	}}}
	res, err := m.col(collectionGuests).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb respond guest: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrAlreadyResponded
	}
	return nil
}

// ConfirmCompanions transitions the listed guests to confirmed on behalf of
// the confirming guest. Only documents still pending match, so companions that
// already answered (or were just confirmed by a concurrent response) keep
// their own status and confirmer.
func (m *MongoDB) ConfirmCompanions(ctx context.Context, ids []string, confirmedBy string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
		{Key: "status", Value: entity.StatusPending},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: entity.StatusConfirmed},
		{Key: "confirmed_by_guest_id", Value: confirmedBy},
		{Key: "responded_at", Value: at},
	}}}
	_, err := m.col(collectionGuests).UpdateMany(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb confirm companions: %w", err)
	}
	return nil
}

// CreateCompanionLinks upserts the link pairs; repeated links are suppressed
// by the upsert, matching the unique index on the pair.
func (m *MongoDB) CreateCompanionLinks(ctx context.Context, links []*entity.GuestCompanion) error {
	for _, link := range links {
		filter := bson.D{
			{Key: "guest_id", Value: link.GuestId},
			{Key: "companion_guest_id", Value: link.CompanionGuestId},
		}
		update := bson.D{{Key: "$set", Value: link}}
		opts := options.Update().SetUpsert(true)
		if _, err := m.col(collectionCompanions).UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("mongodb companion link: %w", err)
		}
	}
	return nil
}

func (m *MongoDB) CreateChildren(ctx context.Context, children []*entity.GuestChild) error {
	if len(children) == 0 {
		return nil
	}
	rows := make([]interface{}, 0, len(children))
	for _, child := range children {
		rows = append(rows, child)
	}
	_, err := m.col(collectionChildren).InsertMany(ctx, rows)
	if err != nil {
		return fmt.Errorf("mongodb insert children: %w", err)
	}
	return nil
}

// ChildByID resolves a child together with its parent guest, scoped to one
// event through the parent.
func (m *MongoDB) ChildByID(ctx context.Context, eventID, childID string) (*entity.GuestChild, *entity.Guest, error) {
	var child entity.GuestChild
	err := m.col(collectionChildren).FindOne(ctx, bson.D{{Key: "_id", Value: childID}}).Decode(&child)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb find child: %w", err)
	}
	parent, err := m.GuestByID(ctx, eventID, child.GuestId)
	if err != nil {
		return nil, nil, err
	}
	if parent == nil {
		return nil, nil, nil
	}
	return &child, parent, nil
}

// CheckInGuest marks arrival. The checked_in filter is the race guard: of two
// concurrent check-ins only one matches, the other gets ErrAlreadyCheckedIn.
func (m *MongoDB) CheckInGuest(ctx context.Context, guestID string, at time.Time) error {
	filter := bson.D{{Key: "_id", Value: guestID}, {Key: "checked_in", Value: false}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: entity.StatusPresent},
		{Key: "checked_in", Value: true},
		{Key: "checked_in_at", Value: at},
	}}}
	res, err := m.col(collectionGuests).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb check in guest: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrAlreadyCheckedIn
	}
	return nil
}

// RevertGuestCheckIn always restores confirmed: present is only ever reached
// from confirmed, so no information is lost.
func (m *MongoDB) RevertGuestCheckIn(ctx context.Context, guestID string) error {
	filter := bson.D{{Key: "_id", Value: guestID}, {Key: "checked_in", Value: true}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: entity.StatusConfirmed},
			{Key: "checked_in", Value: false},
		}},
		{Key: "$unset", Value: bson.D{{Key: "checked_in_at", Value: ""}}},
	}
	res, err := m.col(collectionGuests).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb revert guest check-in: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrNotCheckedIn
	}
	return nil
}

func (m *MongoDB) CheckInChild(ctx context.Context, childID string, at time.Time) error {
	filter := bson.D{{Key: "_id", Value: childID}, {Key: "checked_in", Value: false}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "checked_in", Value: true},
		{Key: "checked_in_at", Value: at},
	}}}
	res, err := m.col(collectionChildren).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb check in child: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrAlreadyCheckedIn
	}
	return nil
}

func (m *MongoDB) RevertChildCheckIn(ctx context.Context, childID string) error {
	filter := bson.D{{Key: "_id", Value: childID}, {Key: "checked_in", Value: true}}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "checked_in", Value: false}}},
		{Key: "$unset", Value: bson.D{{Key: "checked_in_at", Value: ""}}},
	}
	res, err := m.col(collectionChildren).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb revert child check-in: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrNotCheckedIn
	}
	return nil
}

// ResetConfirmedBy returns guests confirmed by the given guest to pending,
// used when their confirmer is deleted. Guests who already checked in keep
// their status, since checked_in must never coexist with pending; only the
// dangling confirmer reference is cleared for them.
func (m *MongoDB) ResetConfirmedBy(ctx context.Context, guestID string) error {
	filter := bson.D{
		{Key: "confirmed_by_guest_id", Value: guestID},
		{Key: "checked_in", Value: false},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "status", Value: entity.StatusPending}}},
		{Key: "$unset", Value: bson.D{
			{Key: "confirmed_by_guest_id", Value: ""},
			{Key: "responded_at", Value: ""},
		}},
	}
	if _, err := m.col(collectionGuests).UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("mongodb reset confirmed-by: %w", err)
	}

	arrived := bson.D{{Key: "confirmed_by_guest_id", Value: guestID}}
	unset := bson.D{{Key: "$unset", Value: bson.D{{Key: "confirmed_by_guest_id", Value: ""}}}}
	if _, err := m.col(collectionGuests).UpdateMany(ctx, arrived, unset); err != nil {
		return fmt.Errorf("mongodb clear confirmed-by: %w", err)
	}
	return nil
}

// DeleteGuest removes the guest with its children and companion links on
// either side of the relation.
func (m *MongoDB) DeleteGuest(ctx context.Context, guestID string) error {
	linkFilter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "guest_id", Value: guestID}},
		bson.D{{Key: "companion_guest_id", Value: guestID}},
	}}}
	if _, err := m.col(collectionCompanions).DeleteMany(ctx, linkFilter); err != nil {
		return fmt.Errorf("mongodb delete companion links: %w", err)
	}
	childFilter := bson.D{{Key: "guest_id", Value: guestID}}
	if _, err := m.col(collectionChildren).DeleteMany(ctx, childFilter); err != nil {
		return fmt.Errorf("mongodb delete children: %w", err)
	}
	if _, err := m.col(collectionGuests).DeleteOne(ctx, bson.D{{Key: "_id", Value: guestID}}); err != nil {
		return fmt.Errorf("mongodb delete guest: %w", err)
	}
	return nil
}
