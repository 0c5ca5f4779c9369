package models

import "time"

// FamilyInvite is a pending invitation to join a family. The code handed to
// the invitee is never stored; CodeHash is its digest.
type FamilyInvite struct {
	CodeHash   string
	FamilyID   string
	Email      string
	Role       string
	CreatedBy  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	FamilyName string // Populated via JOIN
}

func (i *FamilyInvite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
