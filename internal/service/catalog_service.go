package service

import (
	"context"
	"time"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/models"
	"kidoova/internal/repository"
)

// CatalogService serves pillars, challenges and weekly themes
type CatalogService struct {
	catalog  *repository.CatalogRepository
	children *ChildService
	loc      *time.Location
	logger   *logger.Logger
	now      func() time.Time
}

// NewCatalogService creates a catalog service. Theme weeks are numbered in loc.
func NewCatalogService(db database.Querier, loc *time.Location, log *logger.Logger) *CatalogService {
	return &CatalogService{
		catalog:  repository.NewCatalogRepository(db),
		children: NewChildService(db, log),
		loc:      loc,
		logger:   log.With("component", "catalog"),
		now:      time.Now,
	}
}

// ListPillars returns every pillar
func (s *CatalogService) ListPillars(ctx context.Context) ([]models.Pillar, error) {
	return s.catalog.ListPillars(ctx)
}

// GetPillar returns a pillar by id
func (s *CatalogService) GetPillar(ctx context.Context, id int) (*models.Pillar, error) {
	pillar, err := s.catalog.GetPillar(ctx, id)
	if err != nil {
		return nil, err
	}
	if pillar == nil {
		return nil, ErrPillarNotFound
	}
	return pillar, nil
}

// GetChallenge returns a challenge by id
func (s *CatalogService) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	challenge, err := s.catalog.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, ErrChallengeNotFound
	}
	return challenge, nil
}

// ListChallenges returns the catalog, optionally for one pillar. With a
// child the list is limited to the child's age range and marks what the
// child has completed.
func (s *CatalogService) ListChallenges(ctx context.Context, userID, childID string, pillarID *int) ([]models.ChallengeWithStatus, error) {
	filter := repository.ChallengeFilter{PillarID: pillarID}
	if childID != "" {
		child, err := s.children.GetChild(ctx, userID, childID)
		if err != nil {
			return nil, err
		}
		filter.AgeRange = child.AgeRange
		filter.ChildID = child.ID
	}
	return s.catalog.ListChallenges(ctx, filter)
}

// PillarChallenges lists a pillar's challenges for a child
func (s *CatalogService) PillarChallenges(ctx context.Context, userID string, pillarID int, childID string) ([]models.ChallengeWithStatus, error) {
	if _, err := s.GetPillar(ctx, pillarID); err != nil {
		return nil, err
	}
	return s.ListChallenges(ctx, userID, childID, &pillarID)
}

// PillarProgress reports how many of a pillar's age-appropriate challenges a child has done
func (s *CatalogService) PillarProgress(ctx context.Context, userID string, pillarID int, childID string) (*models.PillarChallengeProgress, error) {
	if _, err := s.GetPillar(ctx, pillarID); err != nil {
		return nil, err
	}
	child, err := s.children.GetChild(ctx, userID, childID)
	if err != nil {
		return nil, err
	}

	total, completed, err := s.catalog.PillarProgress(ctx, pillarID, child.ID, child.AgeRange)
	if err != nil {
		return nil, err
	}
	return &models.PillarChallengeProgress{
		Total:     total,
		Completed: completed,
		Progress:  percentOf(completed, total),
	}, nil
}

// CurrentTheme returns this week's theme
func (s *CatalogService) CurrentTheme(ctx context.Context) (*models.ThemeWeek, error) {
	week := ThemeWeekNumber(s.now(), s.loc)
	theme, err := s.catalog.GetThemeWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	if theme == nil {
		s.logger.Warn("no theme for week", "week", week)
		return nil, ErrThemeNotFound
	}
	return theme, nil
}
