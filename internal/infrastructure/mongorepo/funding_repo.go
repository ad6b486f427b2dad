package mongorepo

import (
	"context"
	"time"

	"blood-donate.backend/internal/domain/entities"
	"blood-donate.backend/pkg/utils"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FundingRepository stores the ledger in the "payments" collection.
type FundingRepository struct {
	store
}

func NewFundingRepository(provider DatabaseProvider, opTimeout time.Duration) *FundingRepository {
	return &FundingRepository{store{provider: provider, collection: fundingCollection, opTimeout: opTimeout}}
}

// CreateIfAbsent upserts keyed by transactionId with $setOnInsert, so an
// existing entry is never modified. Losing an upsert race surfaces as a
// duplicate key error and means "already recorded".
func (r *FundingRepository) CreateIfAbsent(ctx context.Context, record *entities.FundingRecord) (bool, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()

	if record.ID == uuid.Nil {
		record.ID = utils.GenerateUUIDv7()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	doc := fundingDocument{
		ID:            record.ID.String(),
		DonorName:     record.DonorName,
		DonorEmail:    record.DonorEmail,
		Amount:        record.Amount,
		Currency:      record.Currency,
		PaymentStatus: record.PaymentStatus,
		TransactionID: record.TransactionID,
		SessionID:     record.SessionID,
		PaidAt:        record.PaidAt,
		CreatedAt:     record.CreatedAt,
	}

	res, err := c.UpdateOne(opCtx,
		bson.M{"transactionId": record.TransactionID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, mapErr(err)
	}
	return res.UpsertedCount == 1, nil
}

func (r *FundingRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entities.FundingRecord, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var doc fundingDocument
	if err := c.FindOne(opCtx, bson.M{"transactionId": transactionID}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toEntity(), nil
}

func (r *FundingRepository) List(ctx context.Context, page utils.PaginationParams) ([]*entities.FundingRecord, int64, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer cancel()

	total, err := c.CountDocuments(opCtx, bson.M{})
	if err != nil {
		return nil, 0, mapErr(err)
	}
	cur, err := c.Find(opCtx, bson.M{}, pageOptions(page))
	if err != nil {
		return nil, 0, mapErr(err)
	}
	var docs []fundingDocument
	if err := cur.All(opCtx, &docs); err != nil {
		return nil, 0, mapErr(err)
	}

	out := make([]*entities.FundingRecord, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, total, nil
}

func (r *FundingRepository) SumAmount(ctx context.Context) (float64, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	cur, err := c.Aggregate(opCtx, []bson.M{
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}},
	})
	if err != nil {
		return 0, mapErr(err)
	}
	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(opCtx, &rows); err != nil {
		return 0, mapErr(err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
