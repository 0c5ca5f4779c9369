package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraitDelta(t *testing.T) {
	tests := []struct {
		feeling int
		weight  float64
		want    float64
	}{
		{feeling: 1, weight: 1.0, want: 7.0},
		{feeling: 2, weight: 1.0, want: 8.0},
		{feeling: 3, weight: 1.0, want: 9.0},
		{feeling: 4, weight: 1.0, want: 10.0},
		{feeling: 5, weight: 2.0, want: 22.0},
		{feeling: 3, weight: 0.5, want: 4.5},
		{feeling: 3, weight: 0, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TraitDelta(tt.feeling, tt.weight), "feeling %d weight %v", tt.feeling, tt.weight)
	}
}

func TestFeelingMultiplier(t *testing.T) {
	assert.InDelta(t, 0.7, FeelingMultiplier(1), 1e-9)
	assert.InDelta(t, 0.9, FeelingMultiplier(NeutralFeeling), 1e-9)
	assert.InDelta(t, 1.1, FeelingMultiplier(5), 1e-9)
}
