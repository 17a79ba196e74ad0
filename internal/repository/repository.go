package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
)

// Departures is the ledger store for departure movements. Every write is a
// single-document atomic operation; concurrent writes to the same departure
// are serialized by the store, writes to different departures are
// independent. No operation is retried here - retry policy belongs to the
// caller.
type Departures interface {
	// Insert stores a brand-new departure.
	// Returns ErrDepartureAlreadyExists if the id is already taken.
	Insert(ctx context.Context, departure *model.Departure) error

	// Get returns the departure with the given id.
	// Returns ErrDepartureNotFound if it does not exist. No authorization is
	// performed here; that is the ownership gate's job.
	Get(ctx context.Context, id model.DepartureID) (*model.Departure, error)

	// FetchAllByOwner returns every departure belonging to the trader, in
	// unspecified order. An owner with no departures yields an empty slice.
	FetchAllByOwner(ctx context.Context, eori string) ([]model.Departure, error)

	// AddMessage appends an outbound message to the ledger: in one atomic
	// write it assigns the message the departure's current correlation
	// counter value, increments the counter by 1, and moves lastUpdated to
	// the message timestamp. Returns ErrDepartureNotFound if the departure
	// does not exist; the write never partially applies.
	AddMessage(ctx context.Context, id model.DepartureID, message model.Message) error

	// AddResponseMessage appends a downstream response to the ledger and, in
	// the same atomic write, moves the departure to status and optionally
	// records the movement reference number (intended for the one-time
	// allocation event). The correlation counter is not touched.
	// Returns ErrDepartureNotFound if the departure does not exist.
	AddResponseMessage(ctx context.Context, id model.DepartureID, message model.Message, status model.DepartureStatus, mrn *string) error

	// SetDepartureAndMessageStatus atomically sets the departure's status and
	// the status of the message at the given ledger position. Returns
	// ErrDepartureNotFound if the departure is absent, ErrMessageNotFound if
	// it exists but no message occupies that position.
	SetDepartureAndMessageStatus(ctx context.Context, id model.DepartureID, messageID model.MessageID, departureStatus model.DepartureStatus, messageStatus model.MessageStatus) error

	// SetMessageStatus sets the status of the message at the given ledger
	// position. Same error contract as SetDepartureAndMessageStatus.
	SetMessageStatus(ctx context.Context, id model.DepartureID, messageID model.MessageID, status model.MessageStatus) error
}

const collectionName = "departures"

type departuresRepository struct {
	coll *mongodriver.Collection
}

// New creates the departures ledger store.
func New(m mongo.Mongo) Departures {
	return &departuresRepository{
		coll: m.GetCollection(collectionName),
	}
}

func (r *departuresRepository) Insert(ctx context.Context, departure *model.Departure) error {
	_, err := r.coll.InsertOne(ctx, departure)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to insert departure %s: %w", departure.ID, ErrDepartureAlreadyExists)
		}
		return fmt.Errorf("failed to insert departure: %w", err)
	}
	return nil
}

func (r *departuresRepository) Get(ctx context.Context, id model.DepartureID) (*model.Departure, error) {
	var departure model.Departure
	err := r.coll.FindOne(ctx, byID(id)).Decode(&departure)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to fetch departure %s: %w", id, ErrDepartureNotFound)
		}
		return nil, fmt.Errorf("failed to fetch departure: %w", err)
	}
	return &departure, nil
}

func (r *departuresRepository) FetchAllByOwner(ctx context.Context, eori string) ([]model.Departure, error) {
	cursor, err := r.coll.Find(ctx, byOwner(eori))
	if err != nil {
		return nil, fmt.Errorf("failed to query departures: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	departures := []model.Departure{}
	if err = cursor.All(ctx, &departures); err != nil {
		return nil, fmt.Errorf("failed to decode departures: %w", err)
	}
	return departures, nil
}

func (r *departuresRepository) AddMessage(ctx context.Context, id model.DepartureID, message model.Message) error {
	// Aggregation pipeline update so the correlation id comes from the
	// document's own counter in the same atomic write as the append. Reading
	// the counter in application code and writing it back would race with
	// concurrent appends.
	update := mongodriver.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "lastUpdated", Value: message.Received},
			{Key: "nextMessageCorrelationId", Value: bson.D{
				{Key: "$add", Value: bson.A{"$nextMessageCorrelationId", 1}},
			}},
			{Key: "messages", Value: bson.D{
				{Key: "$concatArrays", Value: bson.A{"$messages", bson.A{messageExpr(message)}}},
			}},
		}}},
	}

	result, err := r.coll.UpdateOne(ctx, byID(id), update)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to append message to departure %s: %w", id, ErrDepartureNotFound)
	}
	return nil
}

// messageExpr renders a message as an aggregation expression. The body is
// wrapped in $literal because it is caller-supplied and must never be
// interpreted as a field path; the correlation id of outbound messages is a
// reference to the pre-update counter value.
func messageExpr(message model.Message) bson.D {
	expr := bson.D{
		{Key: "kind", Value: string(message.Kind)},
		{Key: "messageType", Value: string(message.Type)},
		{Key: "received", Value: message.Received},
		{Key: "body", Value: bson.D{{Key: "$literal", Value: message.Body}}},
	}
	if message.IsOutbound() {
		expr = append(expr,
			bson.E{Key: "status", Value: string(message.Status)},
			bson.E{Key: "messageCorrelationId", Value: "$nextMessageCorrelationId"},
		)
	}
	return expr
}

func (r *departuresRepository) AddResponseMessage(ctx context.Context, id model.DepartureID, message model.Message, status model.DepartureStatus, mrn *string) error {
	set := bson.D{
		{Key: "status", Value: status},
		{Key: "lastUpdated", Value: message.Received},
	}
	if mrn != nil {
		set = append(set, bson.E{Key: "movementReferenceNumber", Value: *mrn})
	}

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$push", Value: bson.D{{Key: "messages", Value: message}}},
	}

	result, err := r.coll.UpdateOne(ctx, byID(id), update)
	if err != nil {
		return fmt.Errorf("failed to append response message: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to append response message to departure %s: %w", id, ErrDepartureNotFound)
	}
	return nil
}

func (r *departuresRepository) SetDepartureAndMessageStatus(ctx context.Context, id model.DepartureID, messageID model.MessageID, departureStatus model.DepartureStatus, messageStatus model.MessageStatus) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: departureStatus},
		{Key: fmt.Sprintf("messages.%d.status", messageID), Value: messageStatus},
	}}}

	result, err := r.coll.UpdateOne(ctx, byIDAndMessageIndex(id, messageID), update)
	if err != nil {
		return fmt.Errorf("failed to transition departure status: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.unmatchedWriteError(ctx, id, messageID)
	}
	return nil
}

func (r *departuresRepository) SetMessageStatus(ctx context.Context, id model.DepartureID, messageID model.MessageID, status model.MessageStatus) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: fmt.Sprintf("messages.%d.status", messageID), Value: status},
	}}}

	result, err := r.coll.UpdateOne(ctx, byIDAndMessageIndex(id, messageID), update)
	if err != nil {
		return fmt.Errorf("failed to set message status: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.unmatchedWriteError(ctx, id, messageID)
	}
	return nil
}

// unmatchedWriteError tells apart the two reasons a guarded write matched
// nothing: the departure is gone, or it exists and the message position does
// not. Callers need the distinction to answer precisely.
func (r *departuresRepository) unmatchedWriteError(ctx context.Context, id model.DepartureID, messageID model.MessageID) error {
	count, err := r.coll.CountDocuments(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("failed to check departure existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("departure %s: %w", id, ErrDepartureNotFound)
	}
	return fmt.Errorf("departure %s has no message at position %d: %w", id, messageID, ErrMessageNotFound)
}
