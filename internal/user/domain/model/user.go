package model

import (
	"strings"
	"time"

	apperrors "familyhub-api/internal/shared/errors"
)

// Role distinguishes parents from children. Parents manage the family and
// hold a PIN that guards sensitive actions.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// User is a member of a family. PINHash is the bcrypt hash of the parental
// PIN and never leaves the API.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Role        Role       `json:"role"`
	FamilyID    string     `json:"familyId,omitempty"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	PINHash     string     `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsParent reports whether the user holds the parent role.
func (u *User) IsParent() bool {
	return u.Role == RoleParent
}

// Validate checks the invariants every stored user must satisfy.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return apperrors.NewValidationError("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return apperrors.NewValidationError("email is not valid")
	}
	if strings.TrimSpace(u.DisplayName) == "" {
		return apperrors.NewValidationError("display name is required")
	}
	if u.Role != RoleParent && u.Role != RoleChild {
		return apperrors.NewValidationError("role must be parent or child")
	}
	return nil
}

// NormalizeEmail lowercases and trims the email so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
