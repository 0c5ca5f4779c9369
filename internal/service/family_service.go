package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/metrics"
	"kidoova/internal/models"
	"kidoova/internal/repository"
	"kidoova/internal/security"
	"kidoova/internal/validation"
)

// FamilyService handles families, membership and invites
type FamilyService struct {
	db          *database.DB
	inviteTTL   time.Duration
	frontendURL string
	logger      *logger.Logger
	now         func() time.Time
}

// NewFamilyService creates a new family service. Invite links point at frontendURL.
func NewFamilyService(db *database.DB, inviteTTL time.Duration, frontendURL string, log *logger.Logger) *FamilyService {
	return &FamilyService{
		db:          db,
		inviteTTL:   inviteTTL,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      log.With("component", "family"),
		now:         time.Now,
	}
}

// InviteRequest asks for someone to be invited into the caller's family
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Invite is a freshly created invite. The code is only ever shown here.
type Invite struct {
	InviteCode string    `json:"invite_code"`
	InviteLink string    `json:"invite_link"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// InviteInfo describes a valid invite to the person holding its code
type InviteInfo struct {
	FamilyName string    `json:"family_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CreateFamily creates a family with the user as owner. A user belongs to at most one family.
func (s *FamilyService) CreateFamily(ctx context.Context, userID, name string) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	var family *models.Family
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		families := repository.NewFamilyRepository(tx)

		existing, _, err := families.GetUserFamily(ctx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyInFamily
		}

		family, err = families.CreateFamily(ctx, name, userID, s.now())
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyInFamily
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("family created", "family_id", family.ID, "user_id", userID)
	return family, nil
}

// Overview returns the user's family with its members and children
func (s *FamilyService) Overview(ctx context.Context, userID string) (*models.FamilyOverview, error) {
	families := repository.NewFamilyRepository(s.db)

	family, _, err := families.GetUserFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNoFamily
	}

	members, err := families.GetFamilyMembers(ctx, family.ID)
	if err != nil {
		return nil, err
	}
	children, err := repository.NewChildRepository(s.db).GetFamilyChildren(ctx, family.ID)
	if err != nil {
		return nil, err
	}

	return &models.FamilyOverview{Family: *family, Members: members, Children: children}, nil
}

// Invite creates an invite into the owner's family. Role defaults to parent.
func (s *FamilyService) Invite(ctx context.Context, userID string, req InviteRequest) (*Invite, error) {
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = models.RoleParent
	}
	if !models.IsValidRole(role) {
		return nil, validation.ValidationError{Field: "role", Message: "role must be parent or caregiver"}
	}

	family, memberRole, err := repository.NewFamilyRepository(s.db).GetUserFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNoFamily
	}
	if memberRole != models.RoleOwner {
		return nil, ErrForbidden
	}

	code, err := security.GenerateInviteCode()
	if err != nil {
		return nil, err
	}
	now := s.now()
	invite := &models.FamilyInvite{
		CodeHash:  security.HashInviteCode(code),
		FamilyID:  family.ID,
		Email:     strings.TrimSpace(req.Email),
		Role:      role,
		CreatedBy: userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.inviteTTL),
	}
	if err := repository.NewInvitationRepository(s.db).CreateInvitation(ctx, invite); err != nil {
		return nil, err
	}

	s.logger.Info("family invite created", "family_id", family.ID, "role", role)
	return &Invite{
		InviteCode: code,
		InviteLink: s.frontendURL + "/join?code=" + url.QueryEscape(code),
		ExpiresAt:  invite.ExpiresAt,
	}, nil
}

// VerifyInvite checks an invite code without using it
func (s *FamilyService) VerifyInvite(ctx context.Context, code string) (*InviteInfo, error) {
	invite, err := s.lookupInvite(ctx, repository.NewInvitationRepository(s.db), code)
	if err != nil {
		return nil, err
	}
	return &InviteInfo{
		FamilyName: invite.FamilyName,
		Email:      invite.Email,
		Role:       invite.Role,
		ExpiresAt:  invite.ExpiresAt,
	}, nil
}

// Join adds the user to the invite's family with the invited role and
// consumes the invite.
func (s *FamilyService) Join(ctx context.Context, userID, code string) (*models.Family, error) {
	var family *models.Family
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		invites := repository.NewInvitationRepository(tx)
		families := repository.NewFamilyRepository(tx)

		invite, err := s.lookupInvite(ctx, invites, code)
		if err != nil {
			return err
		}

		existing, _, err := families.GetUserFamily(ctx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyInFamily
		}

		err = families.AddFamilyMember(ctx, invite.FamilyID, userID, invite.Role, s.now())
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyInFamily
		}
		if err != nil {
			return err
		}
		if err := invites.DeleteInvitation(ctx, invite.CodeHash); err != nil {
			return err
		}

		family, err = families.GetFamilyByID(ctx, invite.FamilyID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user joined family", "family_id", family.ID, "user_id", userID)
	return family, nil
}

// PurgeExpiredInvites deletes invites past their expiry
func (s *FamilyService) PurgeExpiredInvites(ctx context.Context) (int64, error) {
	n, err := repository.NewInvitationRepository(s.db).DeleteExpiredInvitations(ctx, s.now())
	if err != nil {
		return 0, err
	}
	metrics.RecordInvitesPurged(n)
	if n > 0 {
		s.logger.Info("purged expired invites", "count", n)
	}
	return n, nil
}

func (s *FamilyService) lookupInvite(ctx context.Context, invites *repository.InvitationRepository, code string) (*models.FamilyInvite, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrInviteInvalid
	}
	invite, err := invites.GetInvitationByHash(ctx, security.HashInviteCode(code))
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrInviteInvalid
	}
	if invite.IsExpired(s.now()) {
		return nil, ErrInviteExpired
	}
	return invite, nil
}
