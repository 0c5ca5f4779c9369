package models

import "time"

// ChallengeLog records one completion of a challenge by a child
type ChallengeLog struct {
	ID          string    `json:"id"`
	ChildID     string    `json:"child_id"`
	ChallengeID string    `json:"challenge_id"`
	CompletedAt time.Time `json:"completed_at"`
	// CompletedDay is the calendar day of CompletedAt in the reference zone, YYYY-MM-DD
	CompletedDay string `json:"completed_day"`
	Completed    bool   `json:"completed"`
}

// Reflection is a parent's note and 1-5 feeling rating after a challenge
type Reflection struct {
	ID          string    `json:"id"`
	ChildID     string    `json:"child_id"`
	ChallengeID string    `json:"challenge_id"`
	Feeling     int       `json:"feeling"`
	Reflection  *string   `json:"reflection"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConfidenceTrend summarises the most recent feelings recorded for a child
type ConfidenceTrend struct {
	Feelings []int  `json:"feelings"`
	Summary  string `json:"summary"`
}

// Media is an uploaded photo tied to a user and optionally a child
type Media struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ChildID   *string   `json:"child_id"`
	Key       string    `json:"key"`
	Filename  string    `json:"filename"`
	FileType  string    `json:"file_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
