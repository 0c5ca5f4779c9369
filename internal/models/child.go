package models

import "time"

// Child represents a child profile in the system
type Child struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	Name      string    `json:"name"`
	Birthdate *string   `json:"birthdate"`
	Gender    *string   `json:"gender"`
	AgeRange  string    `json:"age_range"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
