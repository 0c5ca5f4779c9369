package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/models"
	"kidoova/internal/repository"
	"kidoova/internal/validation"
)

// Age ranges challenges are tagged with
var AgeRanges = []string{"0-2", "2-5", "5-8", "8-12", "12+"}

// ChildService handles child profiles and access to them
type ChildService struct {
	children *repository.ChildRepository
	families *repository.FamilyRepository
	logger   *logger.Logger
	now      func() time.Time
}

// NewChildService creates a new child service
func NewChildService(db database.Querier, log *logger.Logger) *ChildService {
	return &ChildService{
		children: repository.NewChildRepository(db),
		families: repository.NewFamilyRepository(db),
		logger:   log.With("component", "children"),
		now:      time.Now,
	}
}

// ChildInput holds the editable fields of a child profile. Either Birthdate
// or AgeRange must be given; a birthdate decides the age range when both are.
type ChildInput struct {
	Name      string  `json:"name"`
	Birthdate *string `json:"birthdate"`
	AgeRange  *string `json:"age_range"`
	Gender    *string `json:"gender"`
	AvatarURL *string `json:"avatar_url"`
}

// ListChildren returns the children in the user's family
func (s *ChildService) ListChildren(ctx context.Context, userID string) ([]models.Child, error) {
	family, _, err := s.families.GetUserFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNoFamily
	}
	return s.children.GetFamilyChildren(ctx, family.ID)
}

// GetChild returns a child the user can access. Children outside the user's
// family are reported as not found.
func (s *ChildService) GetChild(ctx context.Context, userID, childID string) (*models.Child, error) {
	if strings.TrimSpace(childID) == "" {
		return nil, validation.ValidationError{Field: "child_id", Message: "child_id is required"}
	}
	child, err := s.children.GetChildForUser(ctx, childID, userID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// CreateChild adds a child to the user's family
func (s *ChildService) CreateChild(ctx context.Context, userID string, in ChildInput) (*models.Child, error) {
	family, _, err := s.families.GetUserFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNoFamily
	}

	now := s.now()
	child := &models.Child{
		ID:        uuid.NewString(),
		FamilyID:  family.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(child, in, now); err != nil {
		return nil, err
	}
	if err := s.children.CreateChild(ctx, child); err != nil {
		return nil, err
	}

	s.logger.Info("child created", "child_id", child.ID, "family_id", family.ID)
	return child, nil
}

// UpdateChild replaces the editable fields of a child the user can access
func (s *ChildService) UpdateChild(ctx context.Context, userID, childID string, in ChildInput) (*models.Child, error) {
	child, err := s.GetChild(ctx, userID, childID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.apply(child, in, now); err != nil {
		return nil, err
	}
	child.UpdatedAt = now
	if err := s.children.UpdateChild(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *ChildService) apply(child *models.Child, in ChildInput, now time.Time) error {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateRequired("name", name); err != nil {
		return err
	}

	ageRange, err := resolveAgeRange(in, now)
	if err != nil {
		return err
	}

	child.Name = name
	child.AgeRange = ageRange
	child.Birthdate = trimmedOrNil(in.Birthdate)
	child.Gender = trimmedOrNil(in.Gender)
	child.AvatarURL = trimmedOrNil(in.AvatarURL)
	return nil
}

// resolveAgeRange derives the stored age range from a birthdate, falling
// back to an explicit, normalised range.
func resolveAgeRange(in ChildInput, now time.Time) (string, error) {
	if birthdate := trimmedOrNil(in.Birthdate); birthdate != nil {
		return validation.AgeRangeFromBirthdate(*birthdate, now)
	}
	if in.AgeRange == nil || strings.TrimSpace(*in.AgeRange) == "" {
		return "", validation.ValidationError{Field: "age_range", Message: "birthdate or age_range is required"}
	}

	ageRange := validation.NormalizeAgeRange(*in.AgeRange)
	for _, known := range AgeRanges {
		if ageRange == known {
			return ageRange, nil
		}
	}
	return "", validation.ValidationError{Field: "age_range", Message: "unknown age range " + *in.AgeRange}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
