package domain

import "fmt"

// ValidatePositiveAmount checks that a point amount is positive.
func ValidatePositiveAmount(amount int) error {
	if amount <= 0 {
		return ErrValidation(fmt.Sprintf("amount must be positive, got %d", amount))
	}
	return nil
}

// ValidateRankThresholds checks that adding a rank with the given threshold
// keeps thresholds strictly increasing (unique across all ranks).
func ValidateRankThresholds(existing []Rank, minPoints int) error {
	if minPoints < 0 {
		return ErrValidation("rank threshold must be non-negative")
	}
	for _, r := range existing {
		if r.MinPoints == minPoints {
			return ErrConflict(fmt.Sprintf("rank %q already uses threshold %d", r.Name, minPoints))
		}
	}
	return nil
}

// ValidateMediaType checks a pack item media kind.
func ValidateMediaType(mt MediaType) error {
	switch mt {
	case MediaPhoto, MediaVideo, MediaDocument:
		return nil
	}
	return ErrValidation(fmt.Sprintf("unknown media type %q", mt))
}
