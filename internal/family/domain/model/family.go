package model

import (
	"strings"
	"time"

	apperrors "familyhub-api/internal/shared/errors"
)

// Family groups users under one household. The owner is always a member.
type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	MemberIDs []string  `json:"memberIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the invariants every stored family must satisfy.
func (f *Family) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return apperrors.NewValidationError("family name is required")
	}
	if f.OwnerID == "" {
		return apperrors.NewValidationError("family owner is required")
	}
	if !f.HasMember(f.OwnerID) {
		return apperrors.NewValidationError("family owner must be a member")
	}
	return nil
}

// HasMember reports whether the user belongs to the family.
func (f *Family) HasMember(userID string) bool {
	for _, id := range f.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AddMember appends the user unless already present.
func (f *Family) AddMember(userID string) bool {
	if f.HasMember(userID) {
		return false
	}
	f.MemberIDs = append(f.MemberIDs, userID)
	return true
}

// RemoveMember drops the user from the member list. The owner cannot be
// removed.
func (f *Family) RemoveMember(userID string) bool {
	if userID == f.OwnerID {
		return false
	}
	for i, id := range f.MemberIDs {
		if id == userID {
			f.MemberIDs = append(f.MemberIDs[:i], f.MemberIDs[i+1:]...)
			return true
		}
	}
	return false
}
