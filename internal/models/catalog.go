package models

// Pillar is a developmental category challenges and traits belong to
type Pillar struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Challenge is a suggested activity for a parent and child
type Challenge struct {
	ID              string   `json:"id"`
	PillarID        int      `json:"pillar_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Goal            string   `json:"goal"`
	Steps           []string `json:"steps"`
	ExampleDialogue string   `json:"example_dialogue"`
	Tip             string   `json:"tip"`
	AgeRange        string   `json:"age_range"`
	DifficultyLevel int      `json:"difficulty_level"`
}

// ChallengeWithStatus is a challenge annotated for one child
type ChallengeWithStatus struct {
	Challenge
	IsCompleted bool `json:"is_completed"`
}

// PillarChallengeProgress is how far a child is through one pillar's catalog
type PillarChallengeProgress struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Progress  float64 `json:"progress"`
}

// ThemeWeek is the weekly focus shown on the dashboard
type ThemeWeek struct {
	ID          int    `json:"id"`
	WeekNumber  int    `json:"week_number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PillarID    *int   `json:"pillar_id"`
}

// Trait is a scored personal-development dimension
type Trait struct {
	ID       int    `json:"id"`
	PillarID *int   `json:"pillar_id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
}

// ChallengeTraitWeight maps a challenge to one trait it develops
type ChallengeTraitWeight struct {
	TraitID int
	Weight  float64
}
