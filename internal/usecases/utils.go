package usecases

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func requireIdentity(identity *entities.Identity) error {
	if identity == nil || strings.TrimSpace(identity.Email) == "" {
		return domainerrors.Unauthorized("missing verified identity")
	}
	return nil
}

// shadowUser is the default record provisioned for a verified identity.
func shadowUser(identity *entities.Identity) *entities.User {
	return &entities.User{
		Email:    normalizeEmail(identity.Email),
		Name:     clip(identity.Name, entities.MaxNameLength),
		PhotoURL: identity.Picture,
		Role:     entities.UserRoleDonor,
		Status:   entities.UserStatusActive,
	}
}

// optionalBloodGroup normalizes g, accepting the empty string.
func optionalBloodGroup(g string) (string, error) {
	if strings.TrimSpace(g) == "" {
		return "", nil
	}
	normalized := entities.NormalizeBloodGroup(g)
	if !entities.ValidBloodGroup(normalized) {
		return "", domainerrors.BadRequest("invalid blood group")
	}
	return normalized, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// fieldLimit is a length bound on one input field. A nil value is skipped.
type fieldLimit struct {
	field string
	value *string
	max   int
}

// checkLengths rejects the first field longer than its column allows.
func checkLengths(limits ...fieldLimit) error {
	for _, l := range limits {
		if l.value != nil && utf8.RuneCountInString(*l.value) > l.max {
			return domainerrors.BadRequest(fmt.Sprintf("%s must be at most %d characters", l.field, l.max))
		}
	}
	return nil
}

// clip shortens values taken from tokens or profiles, which the caller cannot fix.
func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
