package repository

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/testutil/container"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
)

var testMongo *container.MongoDB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	started, err := container.StartMongoDB(ctx)
	if err != nil {
		log.Fatalf("failed to start mongodb container: %v", err)
	}
	testMongo = started

	code := m.Run()

	_ = testMongo.Terminate(ctx)
	os.Exit(code)
}

// dbAdapter satisfies the collection provider over a test database.
type dbAdapter struct {
	db *mongodriver.Database
}

func (a dbAdapter) GetCollection(collection string) *mongodriver.Collection {
	return a.db.Collection(collection)
}

func (a dbAdapter) CreateIndexes(ctx context.Context, collection string, indexes []mongodriver.IndexModel) error {
	_, err := a.db.Collection(collection).Indexes().CreateMany(ctx, indexes)
	return err
}

// newRepo gives each test its own database so tests stay independent.
func newRepo(t *testing.T) Departures {
	if testing.Short() {
		t.Skip("integration test")
	}

	adapter := dbAdapter{db: testMongo.Database("departures_test_" + uuid.NewString()[:8])}
	require.NoError(t, EnsureIndexes(context.Background(), adapter, Config{TTL: time.Hour}))
	t.Cleanup(func() { _ = adapter.db.Drop(context.Background()) })

	return New(adapter)
}

func newTestDeparture(eori string) *model.Departure {
	return model.NewDeparture(eori, model.ChannelAPI, "LRN-"+uuid.NewString()[:8], time.Now())
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	departure := newTestDeparture("GB123456789000")

	require.NoError(t, repo.Insert(ctx, departure))

	got, err := repo.Get(ctx, departure.ID)
	require.NoError(t, err)
	assert.Equal(t, departure, got)
}

func TestInsertDuplicateID(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	departure := newTestDeparture("GB123456789000")

	require.NoError(t, repo.Insert(ctx, departure))
	err := repo.Insert(ctx, departure)

	assert.ErrorIs(t, err, ErrDepartureAlreadyExists)
}

func TestGetMissingDeparture(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Get(context.Background(), model.NewDepartureID())

	assert.ErrorIs(t, err, ErrDepartureNotFound)
}

func TestFetchAllByOwner(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first := newTestDeparture("GB-owner-1")
	second := newTestDeparture("GB-owner-1")
	other := newTestDeparture("GB-owner-2")
	for _, d := range []*model.Departure{first, second, other} {
		require.NoError(t, repo.Insert(ctx, d))
	}

	owned, err := repo.FetchAllByOwner(ctx, "GB-owner-1")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	none, err := repo.FetchAllByOwner(ctx, "GB-owner-3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddMessageAssignsSequentialCorrelationIDs(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	departure := newTestDeparture("GB123456789000")
	require.NoError(t, repo.Insert(ctx, departure))

	base := time.Now()
	for i := 0; i < 3; i++ {
		message := model.NewOutboundMessage(model.MessageTypeDepartureDeclaration, base.Add(time.Duration(i)*time.Second), fmt.Sprintf("<CC015B>%d</CC015B>", i))
		require.NoError(t, repo.AddMessage(ctx, departure.ID, message))
	}

	got, err := repo.Get(ctx, departure.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	for i, message := range got.Messages {
		assert.Equal(t, i+1, message.CorrelationID)
		assert.Equal(t, model.MessageStatusSubmissionPending, message.Status)
	}
	assert.Equal(t, 4, got.NextMessageCorrelationID)
	assert.Equal(t, got.Messages[2].Received, got.LastUpdated)
}

func TestAddMessagePreservesBodyVerbatim(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	departure := newTestDeparture("GB123456789000")
	require.NoError(t, repo.Insert(ctx, departure))

	// A body that looks like a field path must not be dereferenced by the
	// pipeline update.
	body := "$nextMessageCorrelationId"
	message := model.NewOutboundMessage(model.MessageTypeDepartureDeclaration, time.Now(), body)
	require.NoError(t, repo.AddMessage(ctx, departure.ID, message))

	got, err := repo.Get(ctx, departure.ID)
	require.NoError(t, err)
	assert.Equal(t, body, got.Messages[0].Body)
}

func TestAddMessageConcurrentAppends(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	departure := newTestDeparture("GB123456789000")
	require.NoError(t, repo.Insert(ctx, departure))

	const appends = 10
	var wg sync.WaitGroup
	errs := make([]error, appends)
	for i := 0; i < appends; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			message := model.NewOutboundMessage(model.MessageTypeDepartureDeclaration, time.Now(), "<CC015B/>")
			errs[i] = repo.AddMessage(ctx, departure.ID, message)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.Get(ctx, departure.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, appends)
	assert.Equal(t, appends+1, got.NextMessageCorrelationID)

	// Every message got a distinct correlation id from the counter, with no
	// gaps and no duplicates.
	ids := make([]int, 0, appends)
	for _, message := range got.Messages {
		ids = append(ids, message.CorrelationID)
	}
	sort.Ints(ids)
	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}
}

func TestAddMessageMissingDeparture(t *testing.T) {
	repo := newRepo(t)

	message := model.NewOutboundMessage(model.MessageTypeDepartureDeclaration, time.Now(), "<CC015B/>")
	err := repo.AddMessage(context.Background(), model.NewDepartureID(), message)

	assert.ErrorIs(t, err, ErrDepartureNotFound)
}

func TestAddResponseMessage(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	departure := newTestDeparture("GB123456789000")
	require.NoError(t, repo.Insert(ctx, departure))

	mrn := "21GB00001234567890"
	message := model.NewInboundMessage(model.MessageTypeMrnAllocated, time.Now(), "<CC028A/>")
	require.NoError(t, repo.AddResponseMessage(ctx, departure.ID, message, model.DepartureStatusMrnAllocated, &mrn))

	got, err := repo.Get(ctx, departure.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DepartureStatusMrnAllocated, got.Status)
	require.NotNil(t, got.MovementReferenceNumber)
	assert.Equal(t, mrn, *got.MovementReferenceNumber)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, model.MessageKindInbound, got.Messages[0].Kind)
	assert.Zero(t, got.Messages[0].CorrelationID)
	assert.Empty(t, got.Messages[0].Status)

	// The response append must not consume a correlation id.
	assert.Equal(t, 1, got.NextMessageCorrelationID)
}

func TestAddResponseMessageMissingDeparture(t *testing.T) {
	repo := newRepo(t)

	message := model.NewInboundMessage(model.MessageTypePositiveAcknowledgement, time.Now(), "<CC928A/>")
	err := repo.AddResponseMessage(context.Background(), model.NewDepartureID(), message, model.DepartureStatusPositiveAcknowledgement, nil)

	assert.ErrorIs(t, err, ErrDepartureNotFound)
}

func TestSetDepartureAndMessageStatus(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	departure := newTestDeparture("GB123456789000")
	require.NoError(t, repo.Insert(ctx, departure))
	message := model.NewOutboundMessage(model.MessageTypeDepartureDeclaration, time.Now(), "<CC015B/>")
	require.NoError(t, repo.AddMessage(ctx, departure.ID, message))

	err := repo.SetDepartureAndMessageStatus(ctx, departure.ID, 0, model.DepartureStatusSubmitted, model.MessageStatusSubmissionSucceeded)
	require.NoError(t, err)

	got, err := repo.Get(ctx, departure.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DepartureStatusSubmitted, got.Status)
	assert.Equal(t, model.MessageStatusSubmissionSucceeded, got.Messages[0].Status)
}

func TestSetMessageStatusAtUnoccupiedPosition(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	departure := newTestDeparture("GB123456789000")
	require.NoError(t, repo.Insert(ctx, departure))
	message := model.NewOutboundMessage(model.MessageTypeDepartureDeclaration, time.Now(), "<CC015B/>")
	require.NoError(t, repo.AddMessage(ctx, departure.ID, message))

	err := repo.SetMessageStatus(ctx, departure.ID, 5, model.MessageStatusSubmissionFailed)
	assert.ErrorIs(t, err, ErrMessageNotFound)

	// The failed write must leave the ledger untouched.
	got, getErr := repo.Get(ctx, departure.ID)
	require.NoError(t, getErr)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, model.MessageStatusSubmissionPending, got.Messages[0].Status)
}

func TestSetMessageStatusMissingDeparture(t *testing.T) {
	repo := newRepo(t)

	err := repo.SetMessageStatus(context.Background(), model.NewDepartureID(), 0, model.MessageStatusSubmissionFailed)

	assert.ErrorIs(t, err, ErrDepartureNotFound)
	assert.NotErrorIs(t, err, ErrMessageNotFound)
}

func TestEnsureIndexes(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	adapter := dbAdapter{db: testMongo.Database("departures_idx_" + uuid.NewString()[:8])}
	t.Cleanup(func() { _ = adapter.db.Drop(context.Background()) })

	ctx := context.Background()
	require.NoError(t, EnsureIndexes(ctx, adapter, Config{TTL: time.Hour}))
	// Idempotent on repeat.
	require.NoError(t, EnsureIndexes(ctx, adapter, Config{TTL: time.Hour}))

	cursor, err := adapter.db.Collection(collectionName).Indexes().List(ctx)
	require.NoError(t, err)
	var indexes []bson.M
	require.NoError(t, cursor.All(ctx, &indexes))

	byName := map[string]bson.M{}
	for _, idx := range indexes {
		byName[idx["name"].(string)] = idx
	}
	require.Contains(t, byName, idxLastUpdatedTTL)
	require.Contains(t, byName, idxEORINumber)
	assert.EqualValues(t, 3600, byName[idxLastUpdatedTTL]["expireAfterSeconds"])
}
