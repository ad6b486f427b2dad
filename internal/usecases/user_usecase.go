package usecases

import (
	"context"
	"strings"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/domain/repositories"
	"blood-donate.backend/pkg/logger"
	"blood-donate.backend/pkg/utils"
	"go.uber.org/zap"
)

// UserUsecase handles profile provisioning and admin user management
type UserUsecase struct {
	userRepo repositories.UserRepository
	uow      repositories.UnitOfWork
}

// NewUserUsecase creates a new user usecase
func NewUserUsecase(userRepo repositories.UserRepository, uow repositories.UnitOfWork) *UserUsecase {
	return &UserUsecase{
		userRepo: userRepo,
		uow:      uow,
	}
}

// Register stores the caller unless already present. Existing records are returned untouched.
func (u *UserUsecase) Register(ctx context.Context, identity *entities.Identity, input *entities.RegisterUserInput) (*entities.RegisterResult, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if input == nil {
		input = &entities.RegisterUserInput{}
	}

	name, district, upazila := strings.TrimSpace(input.Name), strings.TrimSpace(input.District), strings.TrimSpace(input.Upazila)
	if err := checkLengths(
		fieldLimit{"name", &name, entities.MaxNameLength},
		fieldLimit{"district", &district, entities.MaxPlaceLength},
		fieldLimit{"upazila", &upazila, entities.MaxPlaceLength},
	); err != nil {
		return nil, err
	}
	bloodGroup, err := optionalBloodGroup(input.BloodGroup)
	if err != nil {
		return nil, err
	}

	user := shadowUser(identity)
	if name != "" {
		user.Name = name
	}
	if input.PhotoURL != "" {
		user.PhotoURL = input.PhotoURL
	}
	user.BloodGroup = bloodGroup
	user.District = district
	user.Upazila = upazila

	stored, created, err := u.userRepo.CreateIfAbsent(ctx, user)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info(ctx, "User registered", zap.String("email", stored.Email))
	}

	return &entities.RegisterResult{User: stored, Created: created}, nil
}

// GetRoleByEmail returns the caller's record, provisioning a default profile on first lookup.
func (u *UserUsecase) GetRoleByEmail(ctx context.Context, identity *entities.Identity, email string) (*entities.User, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if normalizeEmail(email) != normalizeEmail(identity.Email) {
		return nil, domainerrors.Forbidden("cannot look up another user's role")
	}
	return u.ensureUser(ctx, identity)
}

// GetMe returns the caller's profile
func (u *UserUsecase) GetMe(ctx context.Context, identity *entities.Identity) (*entities.User, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	return u.ensureUser(ctx, identity)
}

// UpdateMe upserts the caller's profile fields
func (u *UserUsecase) UpdateMe(ctx context.Context, identity *entities.Identity, input *entities.UpdateProfileInput) (*entities.User, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, domainerrors.BadRequest("profile update is empty")
	}
	if err := checkLengths(
		fieldLimit{"name", input.Name, entities.MaxNameLength},
		fieldLimit{"district", input.District, entities.MaxPlaceLength},
		fieldLimit{"upazila", input.Upazila, entities.MaxPlaceLength},
	); err != nil {
		return nil, err
	}
	if input.BloodGroup != nil {
		bloodGroup, err := optionalBloodGroup(*input.BloodGroup)
		if err != nil {
			return nil, err
		}
		input.BloodGroup = &bloodGroup
	}

	var updated *entities.User
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, _, err := u.userRepo.CreateIfAbsent(txCtx, shadowUser(identity)); err != nil {
			return err
		}
		var err error
		updated, err = u.userRepo.UpdateProfile(txCtx, normalizeEmail(identity.Email), input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateRole changes a user's role. Unknown emails are a no-op with zero counts.
// actor is the admin making the change and may not target themselves.
func (u *UserUsecase) UpdateRole(ctx context.Context, actor *entities.User, input *entities.UpdateRoleInput) (entities.UpdateResult, error) {
	if input == nil || !input.Role.Valid() {
		return entities.UpdateResult{}, domainerrors.BadRequest("role must be one of donar, volunteer, admin")
	}
	if isSelf(actor, input.Email) {
		return entities.UpdateResult{}, domainerrors.Conflict("admins cannot change their own role")
	}

	result, err := u.userRepo.UpdateRole(ctx, normalizeEmail(input.Email), input.Role)
	if err != nil {
		return entities.UpdateResult{}, err
	}
	logger.Info(ctx, "User role updated",
		zap.String("email", input.Email),
		zap.String("by", actorEmail(actor)),
		zap.String("role", string(input.Role)),
		zap.Int64("matched", result.MatchedCount),
		zap.Int64("modified", result.ModifiedCount),
	)
	return result, nil
}

// UpdateStatus blocks or unblocks a user with the same semantics as UpdateRole.
func (u *UserUsecase) UpdateStatus(ctx context.Context, actor *entities.User, input *entities.UpdateStatusInput) (entities.UpdateResult, error) {
	if input == nil || !input.Status.Valid() {
		return entities.UpdateResult{}, domainerrors.BadRequest("status must be active or blocked")
	}
	if isSelf(actor, input.Email) {
		return entities.UpdateResult{}, domainerrors.Conflict("admins cannot change their own status")
	}

	result, err := u.userRepo.UpdateStatus(ctx, normalizeEmail(input.Email), input.Status)
	if err != nil {
		return entities.UpdateResult{}, err
	}
	logger.Info(ctx, "User status updated",
		zap.String("email", input.Email),
		zap.String("by", actorEmail(actor)),
		zap.String("status", string(input.Status)),
		zap.Int64("matched", result.MatchedCount),
		zap.Int64("modified", result.ModifiedCount),
	)
	return result, nil
}

// ListUsers returns a page of users, newest first
func (u *UserUsecase) ListUsers(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, utils.PaginationMeta, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, utils.PaginationMeta{}, domainerrors.BadRequest("invalid role filter")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.PaginationMeta{}, domainerrors.BadRequest("invalid status filter")
	}

	page = utils.GetPaginationParams(page.Page, page.Size)
	users, total, err := u.userRepo.List(ctx, filter, page)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return users, utils.CalculateMeta(total, page.Page, page.Size), nil
}

// GetByEmail loads a user without provisioning one
func (u *UserUsecase) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return u.userRepo.GetByEmail(ctx, normalizeEmail(email))
}

func (u *UserUsecase) ensureUser(ctx context.Context, identity *entities.Identity) (*entities.User, error) {
	stored, created, err := u.userRepo.CreateIfAbsent(ctx, shadowUser(identity))
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info(ctx, "Shadow profile provisioned", zap.String("email", stored.Email))
	}
	return stored, nil
}

func isSelf(actor *entities.User, email string) bool {
	return actor != nil && normalizeEmail(actor.Email) == normalizeEmail(email)
}

func actorEmail(actor *entities.User) string {
	if actor == nil {
		return ""
	}
	return actor.Email
}
