package mongorepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"blood-donate.backend/internal/domain/entities"
	"blood-donate.backend/pkg/utils"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository stores users in the "user" collection, unique by email.
type UserRepository struct {
	store
}

func NewUserRepository(provider DatabaseProvider, opTimeout time.Duration) *UserRepository {
	return &UserRepository{store{provider: provider, collection: usersCollection, opTimeout: opTimeout}}
}

// CreateIfAbsent upserts with $setOnInsert and asks for the pre-image: no
// pre-image means this call inserted the document. A duplicate key error from a
// racing upsert is answered with a plain read.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *entities.User) (*entities.User, bool, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, false, err
	}
	defer cancel()

	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	user.Email = normalizeEmail(user.Email)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	doc := newUserDocument(user)

	var existing userDocument
	err = c.FindOneAndUpdate(opCtx,
		bson.M{"email": doc.Email},
		bson.M{"$setOnInsert": doc},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before),
	).Decode(&existing)
	switch {
	case err == nil:
		return existing.toEntity(), false, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return doc.toEntity(), true, nil
	case mongo.IsDuplicateKeyError(err):
		stored, getErr := r.GetByEmail(ctx, doc.Email)
		return stored, false, getErr
	default:
		return nil, false, mapErr(err)
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var doc userDocument
	if err := c.FindOne(opCtx, bson.M{"email": normalizeEmail(email)}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, email string, input *entities.UpdateProfileInput) (*entities.User, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.PhotoURL != nil {
		set["photoUrl"] = *input.PhotoURL
	}
	if input.BloodGroup != nil {
		set["bloodGroup"] = *input.BloodGroup
	}
	if input.District != nil {
		set["district"] = *input.District
	}
	if input.Upazila != nil {
		set["upazila"] = *input.Upazila
	}

	var doc userDocument
	err = c.FindOneAndUpdate(opCtx,
		bson.M{"email": normalizeEmail(email)},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr(err)
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, email string, role entities.UserRole) (entities.UpdateResult, error) {
	return r.updateField(ctx, email, "role", string(role))
}

func (r *UserRepository) UpdateStatus(ctx context.Context, email string, status entities.UserStatus) (entities.UpdateResult, error) {
	return r.updateField(ctx, email, "status", string(status))
}

func (r *UserRepository) updateField(ctx context.Context, email, field, value string) (entities.UpdateResult, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return entities.UpdateResult{}, err
	}
	defer cancel()

	email = normalizeEmail(email)
	res, err := c.UpdateOne(opCtx,
		bson.M{"email": email, field: bson.M{"$ne": value}},
		bson.M{"$set": bson.M{field: value, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return entities.UpdateResult{}, mapErr(err)
	}
	if res.ModifiedCount > 0 {
		return entities.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
	}

	matched, err := c.CountDocuments(opCtx, bson.M{"email": email})
	if err != nil {
		return entities.UpdateResult{}, mapErr(err)
	}
	return entities.UpdateResult{MatchedCount: matched}, nil
}

func (r *UserRepository) List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer cancel()

	query := userQuery(filter)
	total, err := c.CountDocuments(opCtx, query)
	if err != nil {
		return nil, 0, mapErr(err)
	}

	cur, err := c.Find(opCtx, query, pageOptions(page))
	if err != nil {
		return nil, 0, mapErr(err)
	}
	var docs []userDocument
	if err := cur.All(opCtx, &docs); err != nil {
		return nil, 0, mapErr(err)
	}

	users := make([]*entities.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toEntity())
	}
	return users, total, nil
}

func (r *UserRepository) Count(ctx context.Context, filter entities.UserFilter) (int64, error) {
	c, opCtx, cancel, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	n, err := c.CountDocuments(opCtx, userQuery(filter))
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func userQuery(filter entities.UserFilter) bson.M {
	q := bson.M{}
	if filter.Role != "" {
		q["role"] = string(filter.Role)
	}
	if filter.Status != "" {
		q["status"] = string(filter.Status)
	}
	return q
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
