package models

// PillarProgress is per-pillar completion against the age-appropriate catalog
type PillarProgress struct {
	PillarID   int     `json:"pillar_id"`
	PillarName string  `json:"pillar_name"`
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// MilestoneProgress measures lifetime completions against the next milestone threshold
type MilestoneProgress struct {
	Current    int     `json:"current"`
	Next       int     `json:"next"`
	Percentage float64 `json:"percentage"`
}

// NextReward is the nearest catalog reward a child has not earned yet
type NextReward struct {
	Reward
	Current    int     `json:"current"`
	Percentage float64 `json:"percentage"`
}

// ChildProgress is the dashboard summary for one child
type ChildProgress struct {
	TotalCompleted     int               `json:"total_completed"`
	CurrentStreak      int               `json:"current_streak"`
	LongestStreak      int               `json:"longest_streak"`
	WeeklyCompleted    int               `json:"weekly_completed"`
	CurrentFocusPillar *string           `json:"current_focus_pillar"`
	Pillars            []PillarProgress  `json:"pillars"`
	Milestone          MilestoneProgress `json:"milestone"`
	NextMilestone      *NextReward       `json:"next_milestone_reward"`
	NextStreak         *NextReward       `json:"next_streak_reward"`
}
