package service

// NeutralFeeling is used when a completion has no reflection
const NeutralFeeling = 3

// FeelingMultiplier scales trait experience by how the completion felt:
// 0.6 + 0.1 × feeling, so 0.7 at 1, 0.9 at the neutral 3 and 1.1 at 5.
func FeelingMultiplier(feeling int) float64 {
	return float64(6+feeling) / 10
}

// TraitDelta is the experience one trait earns from a completion:
// 10 × FeelingMultiplier(feeling) × weight. The base of 10 is folded into the
// integer numerator so whole weights give whole deltas without rounding error.
func TraitDelta(feeling int, weight float64) float64 {
	return float64(6+feeling) * weight
}
