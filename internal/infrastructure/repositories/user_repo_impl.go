package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/infrastructure/models"
	"blood-donate.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateIfAbsent inserts the user with ON CONFLICT (email) DO NOTHING and reads back the stored row.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *entities.User) (*entities.User, bool, error) {
	m := r.toModel(user)
	if m.ID == uuid.Nil {
		m.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = m.CreatedAt

	result := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return nil, false, domainerrors.FromStore(result.Error)
	}

	stored, err := r.GetByEmail(ctx, m.Email)
	if err != nil {
		return nil, false, err
	}
	return stored, result.RowsAffected == 1, nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("email = ?", normalizeEmail(email)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, domainerrors.FromStore(err)
	}
	return r.toEntity(&m), nil
}

// UpdateProfile writes the non-nil profile fields. Role and status are never touched.
func (r *UserRepository) UpdateProfile(ctx context.Context, email string, input *entities.UpdateProfileInput) (*entities.User, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.PhotoURL != nil {
		updates["photo_url"] = *input.PhotoURL
	}
	if input.BloodGroup != nil {
		updates["blood_group"] = *input.BloodGroup
	}
	if input.District != nil {
		updates["district"] = *input.District
	}
	if input.Upazila != nil {
		updates["upazila"] = *input.Upazila
	}

	result := GetDB(ctx, r.db).Model(&models.User{}).Where("email = ?", normalizeEmail(email)).Updates(updates)
	if result.Error != nil {
		return nil, domainerrors.FromStore(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return r.GetByEmail(ctx, email)
}

// UpdateRole changes the role of an existing user; it never creates one.
func (r *UserRepository) UpdateRole(ctx context.Context, email string, role entities.UserRole) (entities.UpdateResult, error) {
	return r.updateColumn(ctx, email, "role", string(role))
}

// UpdateStatus blocks or unblocks an existing user.
func (r *UserRepository) UpdateStatus(ctx context.Context, email string, status entities.UserStatus) (entities.UpdateResult, error) {
	return r.updateColumn(ctx, email, "status", string(status))
}

// updateColumn reports matched and modified separately: a write that would not
// change the value is matched but not modified.
func (r *UserRepository) updateColumn(ctx context.Context, email, column, value string) (entities.UpdateResult, error) {
	db := GetDB(ctx, r.db)
	email = normalizeEmail(email)

	result := db.Model(&models.User{}).
		Where("email = ? AND "+column+" <> ?", email, value).
		Updates(map[string]interface{}{column: value, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return entities.UpdateResult{}, domainerrors.FromStore(result.Error)
	}
	if result.RowsAffected > 0 {
		return entities.UpdateResult{MatchedCount: result.RowsAffected, ModifiedCount: result.RowsAffected}, nil
	}

	var matched int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&matched).Error; err != nil {
		return entities.UpdateResult{}, domainerrors.FromStore(err)
	}
	return entities.UpdateResult{MatchedCount: matched}, nil
}

// List lists users newest first with optional role/status filters
func (r *UserRepository) List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.FromStore(err)
	}

	var userModels []models.User
	if err := query.Order("created_at DESC").Order("id DESC").
		Offset(page.CalculateOffset()).Limit(page.Size).
		Find(&userModels).Error; err != nil {
		return nil, 0, domainerrors.FromStore(err)
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, r.toEntity(&userModels[i]))
	}
	return users, total, nil
}

// Count counts users matching filter
func (r *UserRepository) Count(ctx context.Context, filter entities.UserFilter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, domainerrors.FromStore(err)
	}
	return total, nil
}

func (r *UserRepository) filtered(ctx context.Context, filter entities.UserFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	return query.Session(&gorm.Session{})
}

func (r *UserRepository) toModel(u *entities.User) *models.User {
	role := u.Role
	if role == "" {
		role = entities.UserRoleDonor
	}
	status := u.Status
	if status == "" {
		status = entities.UserStatusActive
	}
	return &models.User{
		ID:         u.ID,
		Email:      normalizeEmail(u.Email),
		Name:       u.Name,
		PhotoURL:   u.PhotoURL,
		BloodGroup: u.BloodGroup,
		District:   u.District,
		Upazila:    u.Upazila,
		Role:       string(role),
		Status:     string(status),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:         m.ID,
		Email:      m.Email,
		Name:       m.Name,
		PhotoURL:   m.PhotoURL,
		BloodGroup: m.BloodGroup,
		District:   m.District,
		Upazila:    m.Upazila,
		Role:       entities.UserRole(m.Role),
		Status:     entities.UserStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
