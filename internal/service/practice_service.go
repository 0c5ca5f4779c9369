package service

import (
	"context"
	"strings"
	"time"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/models"
	"kidoova/internal/repository"
	"kidoova/internal/validation"
)

// PracticeService handles practice modules and the steps children complete in them
type PracticeService struct {
	practice *repository.PracticeRepository
	children *ChildService
	logger   *logger.Logger
	now      func() time.Time
}

// NewPracticeService creates a new practice service
func NewPracticeService(db database.Querier, log *logger.Logger) *PracticeService {
	return &PracticeService{
		practice: repository.NewPracticeRepository(db),
		children: NewChildService(db, log),
		logger:   log.With("component", "practice"),
		now:      time.Now,
	}
}

// PracticeStepRequest marks one step of a module done for a child
type PracticeStepRequest struct {
	ChildID  string `json:"child_id"`
	ModuleID string `json:"module_id"`
	StepID   string `json:"step_id"`
}

// ListModules returns practice modules, optionally for one pillar, with the
// steps the child has completed in each.
func (s *PracticeService) ListModules(ctx context.Context, userID, childID string, pillarID *int) ([]models.PracticeModule, error) {
	if _, err := s.children.GetChild(ctx, userID, childID); err != nil {
		return nil, err
	}
	return s.practice.ListModules(ctx, childID, pillarID)
}

// RecordStep marks a step complete. Recording the same step again changes nothing.
func (s *PracticeService) RecordStep(ctx context.Context, userID string, req PracticeStepRequest) (*models.PracticeProgress, error) {
	req.ModuleID = strings.TrimSpace(req.ModuleID)
	req.StepID = strings.TrimSpace(req.StepID)
	if err := validation.ValidateRequired("module_id", req.ModuleID); err != nil {
		return nil, err
	}
	if err := validation.ValidateRequired("step_id", req.StepID); err != nil {
		return nil, err
	}
	if _, err := s.children.GetChild(ctx, userID, req.ChildID); err != nil {
		return nil, err
	}

	module, err := s.practice.GetModule(ctx, req.ModuleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, ErrPracticeNotFound
	}
	if !module.HasStep(req.StepID) {
		return nil, validation.ValidationError{Field: "step_id", Message: "step is not part of this module"}
	}

	recorded, err := s.practice.RecordStep(ctx, req.ChildID, module.ID, req.StepID, s.now())
	if err != nil {
		return nil, err
	}
	steps, err := s.practice.CompletedSteps(ctx, req.ChildID, module.ID)
	if err != nil {
		return nil, err
	}

	if recorded {
		s.logger.Info("practice step completed", "child_id", req.ChildID, "module_id", module.ID, "step_id", req.StepID)
	}
	return &models.PracticeProgress{
		Success:        true,
		ModuleID:       module.ID,
		CompletedSteps: steps,
		Completed:      len(steps) >= len(module.Steps),
	}, nil
}
