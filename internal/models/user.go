package models

import "time"

// User represents a parent account in the system
type User struct {
	ID                     string    `json:"id"`
	Provider               string    `json:"provider"`
	ProviderSubject        string    `json:"-"`
	Email                  string    `json:"email"`
	Name                   string    `json:"name"`
	Picture                string    `json:"picture"`
	SelectedChildID        *string   `json:"selected_child_id"`
	HasCompletedOnboarding bool      `json:"has_completed_onboarding"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Identity is what an identity provider vouches for after sign-in
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
	Picture  string
}
