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

// DonationRequestRepository stores requests in the "request" collection.
type DonationRequestRepository struct {
	store
}

func NewDonationRequestRepository(provider DatabaseProvider, opTimeout time.Duration) *DonationRequestRepository {
	return &DonationRequestRepository{store{provider: provider, collection: requestsCollection, opTimeout: opTimeout}}
}

func (r *DonationRequestRepository) Create(ctx context.Context, req *entities.DonationRequest) error {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if req.ID == uuid.Nil {
		req.ID = utils.GenerateUUIDv7()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	req.UpdatedAt = req.CreatedAt

	_, err = c.InsertOne(opCtx, newRequestDocument(req))
	return mapErr(err)
}

func (r *DonationRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.DonationRequest, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var doc requestDocument
	if err := c.FindOne(opCtx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toEntity(), nil
}

func (r *DonationRequestRepository) UpdateDetails(ctx context.Context, id uuid.UUID, ownerEmail string, input *entities.UpdateDonationRequestInput) (entities.UpdateResult, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for field, value := range input.Fields() {
		set[field] = value
	}

	filter := bson.M{"_id": id.String(), "status": string(entities.RequestStatusPending)}
	if ownerEmail != "" {
		filter["requesterEmail"] = ownerEmail
	}
	return r.updateOne(ctx, filter, bson.M{"$set": set})
}

func (r *DonationRequestRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	res, err := c.DeleteOne(opCtx, bson.M{"_id": id.String()})
	if err != nil {
		return 0, mapErr(err)
	}
	return res.DeletedCount, nil
}

func (r *DonationRequestRepository) UpdateStatus(ctx context.Context, update entities.StatusUpdate) (entities.UpdateResult, error) {
	from := make([]string, 0, len(update.From))
	for _, s := range update.From {
		from = append(from, string(s))
	}

	filter := bson.M{"_id": update.ID.String(), "status": bson.M{"$in": from}}
	if update.OwnerEmail != "" {
		filter["requesterEmail"] = update.OwnerEmail
	}
	return r.updateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":    string(update.To),
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *DonationRequestRepository) Claim(ctx context.Context, claim entities.ClaimUpdate) (entities.UpdateResult, error) {
	return r.updateOne(ctx,
		bson.M{"_id": claim.ID.String(), "status": string(entities.RequestStatusPending)},
		bson.M{"$set": bson.M{
			"status":     string(entities.RequestStatusInProgress),
			"donorName":  claim.DonorName,
			"donorEmail": claim.DonorEmail,
			"updatedAt":  time.Now().UTC(),
		}},
	)
}

func (r *DonationRequestRepository) updateOne(ctx context.Context, filter, update bson.M) (entities.UpdateResult, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return entities.UpdateResult{}, err
	}
	defer cancel()

	res, err := c.UpdateOne(opCtx, filter, update)
	if err != nil {
		return entities.UpdateResult{}, mapErr(err)
	}
	return entities.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (r *DonationRequestRepository) List(ctx context.Context, filter entities.DonationRequestFilter, page utils.PaginationParams) ([]*entities.DonationRequest, int64, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer cancel()

	query := requestQuery(filter)
	total, err := c.CountDocuments(opCtx, query)
	if err != nil {
		return nil, 0, mapErr(err)
	}

	items, err := findRequests(opCtx, c, query, pageOptions(page))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *DonationRequestRepository) ListPending(ctx context.Context, filter entities.DonationRequestFilter, limit int) ([]*entities.DonationRequest, error) {
	filter.Status = entities.RequestStatusPending
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return findRequests(opCtx, c, requestQuery(filter), opts)
}

func findRequests(ctx context.Context, c *mongo.Collection, query bson.M, opts *options.FindOptions) ([]*entities.DonationRequest, error) {
	cur, err := c.Find(ctx, query, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	var docs []requestDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(err)
	}

	out := make([]*entities.DonationRequest, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

func (r *DonationRequestRepository) Count(ctx context.Context) (int64, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	n, err := c.CountDocuments(opCtx, bson.M{})
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *DonationRequestRepository) CountByStatus(ctx context.Context) (map[entities.RequestStatus]int64, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	cur, err := c.Aggregate(opCtx, []bson.M{
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, mapErr(err)
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(opCtx, &rows); err != nil {
		return nil, mapErr(err)
	}

	out := make(map[entities.RequestStatus]int64, len(rows))
	for _, row := range rows {
		out[entities.RequestStatus(row.Status)] = row.Count
	}
	return out, nil
}

func requestQuery(filter entities.DonationRequestFilter) bson.M {
	q := bson.M{}
	if filter.RequesterEmail != "" {
		q["requesterEmail"] = filter.RequesterEmail
	}
	if filter.Status != "" {
		q["status"] = string(filter.Status)
	}
	if filter.BloodGroup != "" {
		q["bloodGroup"] = filter.BloodGroup
	}
	if filter.District != "" {
		q["recipientDistrict"] = filter.District
	}
	if filter.Upazila != "" {
		q["recipientUpazila"] = filter.Upazila
	}
	return q
}
