package models

import "time"

// Practice step kinds
const (
	PracticeStepText        = "text"
	PracticeStepInteractive = "interactive"
	PracticeStepReflection  = "reflection"
)

// PracticeOption is one answer of an interactive step
type PracticeOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// PracticeStep is one screen of a practice module
type PracticeStep struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Content string           `json:"content"`
	Type    string           `json:"type"`
	Options []PracticeOption `json:"options,omitempty"`
}

// PracticeModule is a guided lesson under a pillar. CompletedSteps is filled
// for the child it was listed for.
type PracticeModule struct {
	ID             string         `json:"id"`
	PillarID       int            `json:"pillar_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Steps          []PracticeStep `json:"steps"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedSteps []string       `json:"completed_steps"`
}

// HasStep reports whether the module contains a step with the given id
func (m *PracticeModule) HasStep(stepID string) bool {
	for _, step := range m.Steps {
		if step.ID == stepID {
			return true
		}
	}
	return false
}

// PracticeProgress is a child's progress through one module after recording a step
type PracticeProgress struct {
	Success        bool     `json:"success"`
	ModuleID       string   `json:"module_id"`
	CompletedSteps []string `json:"completed_steps"`
	Completed      bool     `json:"completed"`
}
