package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/models"
	"kidoova/internal/repository"
	"kidoova/internal/security"
	"kidoova/internal/validation"
)

var ErrUnsupportedProvider = errors.New("unsupported sign-in provider")

// IdentityVerifier validates an identity provider's ID token
type IdentityVerifier interface {
	Provider() string
	Verify(ctx context.Context, idToken string) (*models.Identity, error)
}

// AuthService signs users in with external identities and manages their account state
type AuthService struct {
	users     *repository.UserRepository
	families  *repository.FamilyRepository
	children  *repository.ChildRepository
	tokens    *security.TokenVerifier
	verifiers map[string]IdentityVerifier
	logger    *logger.Logger
	now       func() time.Time
}

// NewAuthService creates a new auth service. Sign-in is accepted from each
// of the given verifiers' providers.
func NewAuthService(db database.Querier, tokens *security.TokenVerifier, log *logger.Logger, verifiers ...IdentityVerifier) *AuthService {
	byProvider := make(map[string]IdentityVerifier, len(verifiers))
	for _, v := range verifiers {
		byProvider[v.Provider()] = v
	}
	return &AuthService{
		users:     repository.NewUserRepository(db),
		families:  repository.NewFamilyRepository(db),
		children:  repository.NewChildRepository(db),
		tokens:    tokens,
		verifiers: byProvider,
		logger:    log.With("component", "auth"),
		now:       time.Now,
	}
}

// LoginResult is an app token and the signed-in user
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserProfile is the signed-in user with their family context
type UserProfile struct {
	User      *models.User   `json:"user"`
	Family    *models.Family `json:"family"`
	Role      string         `json:"role,omitempty"`
	HasFamily bool           `json:"has_family"`
	HasChild  bool           `json:"has_child"`
	Children  []models.Child `json:"children"`
}

// Login verifies a provider ID token and signs the user in
func (s *AuthService) Login(ctx context.Context, provider, idToken string) (*LoginResult, error) {
	if err := validation.ValidateRequired("token", idToken); err != nil {
		return nil, err
	}
	verifier, ok := s.verifiers[strings.ToLower(provider)]
	if !ok {
		return nil, ErrUnsupportedProvider
	}

	identity, err := verifier.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn("id token rejected", "provider", provider, "error", err)
		return nil, security.ErrInvalidToken
	}
	return s.SignIn(ctx, *identity)
}

// SignIn creates or refreshes the account for an already verified identity
// and issues an app token for it.
func (s *AuthService) SignIn(ctx context.Context, identity models.Identity) (*LoginResult, error) {
	if identity.Provider == "" || identity.Subject == "" {
		return nil, errors.New("missing identity provider information")
	}
	if err := validation.ValidateEmail(identity.Email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(identity.Name) == "" {
		identity.Name = strings.Split(identity.Email, "@")[0]
	}

	user, err := s.users.UpsertFromIdentity(ctx, identity, s.now())
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(security.Principal{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.Picture,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", "user_id", user.ID, "provider", identity.Provider)
	return &LoginResult{Token: token, User: user}, nil
}

// Authenticate verifies an app token
func (s *AuthService) Authenticate(token string) (*security.Principal, error) {
	return s.tokens.Verify(token)
}

// Profile returns the user with their family and children
func (s *AuthService) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile := &UserProfile{User: user, Children: []models.Child{}}
	family, role, err := s.families.GetUserFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return profile, nil
	}

	profile.Family = family
	profile.Role = role
	profile.HasFamily = true
	if profile.Children, err = s.children.GetFamilyChildren(ctx, family.ID); err != nil {
		return nil, err
	}
	profile.HasChild = len(profile.Children) > 0
	return profile, nil
}

// SelectChild remembers the child the user is working with. The child must
// be in the user's family.
func (s *AuthService) SelectChild(ctx context.Context, userID, childID string) error {
	if err := validation.ValidateRequired("child_id", childID); err != nil {
		return err
	}
	child, err := s.children.GetChildForUser(ctx, childID, userID)
	if err != nil {
		return err
	}
	if child == nil {
		return ErrChildNotFound
	}
	return s.users.SetSelectedChild(ctx, userID, childID, s.now())
}

// OnboardingStatus reports whether the user finished onboarding
func (s *AuthService) OnboardingStatus(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, ErrUserNotFound
	}
	return user.HasCompletedOnboarding, nil
}

// CompleteOnboarding marks onboarding finished
func (s *AuthService) CompleteOnboarding(ctx context.Context, userID string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.users.MarkOnboardingComplete(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}
