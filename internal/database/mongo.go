package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"guestlist/entity"
	"guestlist/internal/config"
)

const (
	collectionUsers      = "users"
	collectionEvents     = "events"
	collectionGuests     = "guests"
	collectionCompanions = "guest_companions"
	collectionChildren   = "guest_children"
)

// MongoDB holds one connected client for the lifetime of the process.
// Every mutating engine operation runs inside Atomic, which binds a session
// to the context so all queries of that operation share one transaction.
type MongoDB struct {
	client   *mongo.Client
	database string
}

func NewMongoClient(ctx context.Context, conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, fmt.Errorf("mongodb disabled in config")
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return &MongoDB{
		client:   client,
		database: conf.Mongo.Database,
	}, nil
}

func (m *MongoDB) Close(ctx context.Context) {
	_ = m.client.Disconnect(ctx)
}

func (m *MongoDB) col(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}

// EnsureIndexes creates the constraints the engines rely on. The unique
// (event_id, code) index is the actual guard behind the code generator's
// probe-and-retry loop.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	guestIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := m.col(collectionGuests).Indexes().CreateOne(ctx, guestIdx); err != nil {
		return fmt.Errorf("mongodb guests index: %w", err)
	}
	linkIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "guest_id", Value: 1}, {Key: "companion_guest_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := m.col(collectionCompanions).Indexes().CreateOne(ctx, linkIdx); err != nil {
		return fmt.Errorf("mongodb companions index: %w", err)
	}
	childIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "guest_id", Value: 1}},
	}
	if _, err := m.col(collectionChildren).Indexes().CreateOne(ctx, childIdx); err != nil {
		return fmt.Errorf("mongodb children index: %w", err)
	}
	return nil
}

// Atomic runs fn inside one transaction with snapshot reads. Business errors
// returned by fn abort the transaction and propagate unchanged, so sentinel
// matching with errors.Is still works at the call site.
func (m *MongoDB) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	opts := options.Transaction().SetReadConcern(readconcern.Snapshot())
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	return err
}

func (m *MongoDB) GetUser(ctx context.Context, token string) (*entity.User, error) {
	filter := bson.D{{Key: "token", Value: token}}
	var user entity.User
	err := m.col(collectionUsers).FindOne(ctx, filter).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("mongodb find user: %w", err)
	}
	return &user, nil
}

func (m *MongoDB) EventBySlug(ctx context.Context, slug string) (*entity.Event, error) {
	filter := bson.D{{Key: "slug", Value: slug}}
	var event entity.Event
	err := m.col(collectionEvents).FindOne(ctx, filter).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find event: %w", err)
	}
	return &event, nil
}

func (m *MongoDB) EventByID(ctx context.Context, id string) (*entity.Event, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	var event entity.Event
	err := m.col(collectionEvents).FindOne(ctx, filter).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find event: %w", err)
	}
	return &event, nil
}

// CountGuests counts guests of one event, optionally narrowed to one status.
func (m *MongoDB) CountGuests(ctx context.Context, eventID string, status entity.GuestStatus) (int64, error) {
	filter := bson.D{{Key: "event_id", Value: eventID}}
	if status != "" {
		filter = append(filter, bson.E{Key: "status", Value: status})
	}
	count, err := m.col(collectionGuests).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongodb count guests: %w", err)
	}
	return count, nil
}

// CountChildren counts children of one event. Children reference their parent
// guest only, so parent-side filters resolve guest ids first; both queries
// stay inside the caller's snapshot transaction.
func (m *MongoDB) CountChildren(ctx context.Context, eventID string, f entity.ChildFilter) (int64, error) {
	parents := bson.D{{Key: "event_id", Value: eventID}}
	if len(f.ParentStatus) > 0 {
		parents = append(parents, bson.E{Key: "status", Value: bson.D{{Key: "$in", Value: f.ParentStatus}}})
	}
	ids, err := m.guestIds(ctx, parents)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	filter := bson.D{{Key: "guest_id", Value: bson.D{{Key: "$in", Value: ids}}}}
	if f.CheckedIn != nil {
		filter = append(filter, bson.E{Key: "checked_in", Value: *f.CheckedIn})
	}
	count, err := m.col(collectionChildren).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongodb count children: %w", err)
	}
	return count, nil
}

func (m *MongoDB) guestIds(ctx context.Context, filter bson.D) ([]string, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.col(collectionGuests).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find guest ids: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Id string `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongodb decode guest ids: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Id)
	}
	return ids, nil
}
