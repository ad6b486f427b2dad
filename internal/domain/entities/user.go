package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents user roles. "donar" is the stored spelling used by the web client.
type UserRole string

const (
	UserRoleDonor     UserRole = "donar"
	UserRoleVolunteer UserRole = "volunteer"
	UserRoleAdmin     UserRole = "admin"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleDonor, UserRoleVolunteer, UserRoleAdmin:
		return true
	}
	return false
}

// CanModerate reports whether the role may act on requests it does not own.
func (r UserRole) CanModerate() bool {
	return r == UserRoleAdmin || r == UserRoleVolunteer
}

// UserStatus represents whether a user may act on the platform
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusBlocked
}

// User represents a registered donor, volunteer or admin, keyed by email
type User struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	PhotoURL   string     `json:"photoUrl"`
	BloodGroup string     `json:"bloodGroup,omitempty"`
	District   string     `json:"district,omitempty"`
	Upazila    string     `json:"upazila,omitempty"`
	Role       UserRole   `json:"role"`
	Status     UserStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// IsBlocked reports whether the user has been blocked by an admin.
func (u *User) IsBlocked() bool {
	return u != nil && u.Status == UserStatusBlocked
}

// RegisterUserInput represents input for explicit registration. Email comes from the token.
type RegisterUserInput struct {
	Name       string `json:"name" binding:"max=100"`
	PhotoURL   string `json:"photoUrl"`
	BloodGroup string `json:"bloodGroup"`
	District   string `json:"district" binding:"max=100"`
	Upazila    string `json:"upazila" binding:"max=100"`
}

// UpdateProfileInput carries the self-editable profile fields. Nil leaves a field unchanged.
type UpdateProfileInput struct {
	Name       *string `json:"name" binding:"omitempty,max=100"`
	PhotoURL   *string `json:"photoUrl"`
	BloodGroup *string `json:"bloodGroup"`
	District   *string `json:"district" binding:"omitempty,max=100"`
	Upazila    *string `json:"upazila" binding:"omitempty,max=100"`
}

// UpdateRoleInput is the admin payload for changing a role
type UpdateRoleInput struct {
	Email string   `json:"email" binding:"required,email"`
	Role  UserRole `json:"role" binding:"required"`
}

// UpdateStatusInput is the admin payload for blocking or unblocking a user
type UpdateStatusInput struct {
	Email  string     `json:"email" binding:"required,email"`
	Status UserStatus `json:"status" binding:"required"`
}

// UserFilter narrows admin user listings
type UserFilter struct {
	Role   UserRole
	Status UserStatus
}

// RegisterResult reports the stored record and whether this call created it
type RegisterResult struct {
	User    *User `json:"user"`
	Created bool  `json:"created"`
}

// UpdateResult mirrors the matched/modified counts of a conditional update
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult reports how many records a delete removed
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
