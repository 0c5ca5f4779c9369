package models

import "time"

// Family roles
const (
	RoleOwner     = "owner"
	RoleParent    = "parent"
	RoleCaregiver = "caregiver"
)

// Family represents a group of adults managing children together
type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// FamilyMember represents the relationship between a user and a family
type FamilyMember struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Populated via JOIN
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// FamilyOverview combines a family with its members and children
type FamilyOverview struct {
	Family   Family         `json:"family"`
	Members  []FamilyMember `json:"members"`
	Children []Child        `json:"children"`
}

// IsValidRole reports whether role may be granted through an invite
func IsValidRole(role string) bool {
	return role == RoleParent || role == RoleCaregiver
}
