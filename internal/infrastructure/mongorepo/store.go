package mongorepo

import (
	"context"
	"errors"
	"time"

	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DatabaseProvider hands out the database handle, connecting lazily if needed.
// *mongodb.Connector satisfies it.
type DatabaseProvider interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

// StaticDatabase wraps an already connected handle.
type StaticDatabase struct {
	DB *mongo.Database
}

func (s StaticDatabase) Database(context.Context) (*mongo.Database, error) {
	return s.DB, nil
}

// store carries what every collection repository needs.
type store struct {
	provider   DatabaseProvider
	collection string
	opTimeout  time.Duration
}

func (s *store) coll(ctx context.Context) (*mongo.Collection, context.Context, context.CancelFunc, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	db, err := s.provider.Database(opCtx)
	if err != nil {
		cancel()
		return nil, nil, nil, domainerrors.Upstream("store unavailable", err)
	}
	return db.Collection(s.collection), opCtx, cancel, nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainerrors.ErrNotFound
	}
	return domainerrors.FromStore(err)
}

func pageOptions(page utils.PaginationParams) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.CalculateOffset())).
		SetLimit(int64(page.Size))
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection(requestsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "requesterEmail", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "bloodGroup", Value: 1}, {Key: "recipientDistrict", Value: 1}, {Key: "recipientUpazila", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := db.Collection(fundingCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}
