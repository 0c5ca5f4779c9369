package service

import "errors"

var (
	ErrChildNotFound         = errors.New("child not found")
	ErrChallengeNotFound     = errors.New("challenge not found")
	ErrPillarNotFound        = errors.New("pillar not found")
	ErrThemeNotFound         = errors.New("no theme found for current week")
	ErrAlreadyCompletedToday = errors.New("challenge already completed today")
	ErrForbidden             = errors.New("not allowed")
	ErrNoFamily              = errors.New("user does not belong to a family")
	ErrAlreadyInFamily       = errors.New("user already belongs to a family")
	ErrInviteInvalid         = errors.New("invalid invite code")
	ErrInviteExpired         = errors.New("invite code has expired")
	ErrUserNotFound          = errors.New("user not found")
	ErrMediaDisabled         = errors.New("media uploads are not configured")
	ErrPracticeNotFound      = errors.New("practice module not found")
)
