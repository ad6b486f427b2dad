package repositories

import (
	"context"

	"blood-donate.backend/internal/domain/entities"
	"blood-donate.backend/pkg/utils"
)

// UserRepository defines user data operations. Users are keyed by email.
type UserRepository interface {
	// CreateIfAbsent inserts user unless a record with the same email exists and
	// returns the stored record. created is false when nothing was written.
	CreateIfAbsent(ctx context.Context, user *entities.User) (stored *entities.User, created bool, err error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateProfile(ctx context.Context, email string, input *entities.UpdateProfileInput) (*entities.User, error)
	UpdateRole(ctx context.Context, email string, role entities.UserRole) (entities.UpdateResult, error)
	UpdateStatus(ctx context.Context, email string, status entities.UserStatus) (entities.UpdateResult, error)
	List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error)
	Count(ctx context.Context, filter entities.UserFilter) (int64, error)
}
