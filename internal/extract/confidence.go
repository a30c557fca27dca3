package extract

// Confidence tier thresholds, shared by every strategy.
const (
	HighConfidenceThreshold   = 0.90
	MediumConfidenceThreshold = 0.70

	// FloorConfidence is returned when nothing meaningful was extracted.
	FloorConfidence = 0.20
)

// Tier is the named confidence band derived from a numeric score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// TierFor maps a confidence score to its tier.
func TierFor(confidence float64) Tier {
	switch {
	case confidence >= HighConfidenceThreshold:
		return TierHigh
	case confidence >= MediumConfidenceThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// NeedsRetry reports whether a score is below the medium tier, the
// caller-facing hint that reprocessing may help.
func NeedsRetry(confidence float64) bool {
	return confidence < MediumConfidenceThreshold
}

// clamp01 bounds a score to [0, 1].
func clamp01(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
