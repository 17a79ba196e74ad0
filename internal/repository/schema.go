package repository

import (
	"context"
	"time"

	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Index names.
const (
	idxLastUpdatedTTL = "departures_lastUpdated_ttl"
	idxEORINumber     = "departures_eoriNumber"
)

// EnsureIndexes creates the required indexes for the departures collection.
// This is idempotent - safe to call multiple times.
//
// Expiry of stale departures is delegated entirely to the store's TTL
// machinery on lastUpdated; the application never deletes departures itself.
func EnsureIndexes(ctx context.Context, m mongo.Mongo, cfg Config) error {
	indexes := []mongodriver.IndexModel{
		{
			Keys: bson.D{{Key: "lastUpdated", Value: 1}},
			Options: options.Index().
				SetName(idxLastUpdatedTTL).
				SetExpireAfterSeconds(int32(cfg.TTL.Seconds())),
		},
		{
			Keys: bson.D{{Key: "eoriNumber", Value: 1}},
			Options: options.Index().
				SetName(idxEORINumber),
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return m.CreateIndexes(ctx, collectionName, indexes)
}
