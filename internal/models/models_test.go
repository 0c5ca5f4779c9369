package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFamilyInviteIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: now.Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: now.Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expires exactly now",
			expiresAt: now,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invite := FamilyInvite{CodeHash: "h", ExpiresAt: tt.expiresAt}
			if got := invite.IsExpired(now); got != tt.want {
				t.Errorf("FamilyInvite.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleParent, true},
		{RoleCaregiver, true},
		{RoleOwner, false},
		{"admin", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := IsValidRole(tt.role); got != tt.want {
				t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestGrantedRewardFlattensCatalogFields(t *testing.T) {
	pillar := 2
	granted := GrantedReward{
		Reward: Reward{
			ID:            "pillar-2-3",
			Title:         "Three in a pillar",
			Type:          RewardPillar,
			CriteriaValue: 3,
			PillarID:      &pillar,
		},
		GrantedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(granted)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"id", "title", "type", "criteria_value", "pillar_id", "granted_at"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected top-level key %q in %s", key, raw)
		}
	}
}
