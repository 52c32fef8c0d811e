package service

import (
	"evidence-service/internal/domain/analysis"
	"evidence-service/internal/utils"
)

// ReconcilePlates picks exactly one plate from the plate reader and classifier candidates.
//
//  1. A plausible reader plate wins.
//  2. Otherwise a plausible classifier plate.
//  3. Otherwise, only when the reader found nothing, any non-empty classifier plate.
//  4. Otherwise none.
//
// An implausible reader plate is dropped even when the classifier has nothing,
// while an implausible classifier plate survives rule 3. Keep that asymmetry.
func ReconcilePlates(p *analysis.Policy, reader string, classifier *string) *string {
	reader = utils.NormalizePlate(reader)
	if reader != "" && p.IsPlausiblePlate(reader) {
		return &reader
	}

	if classifier == nil {
		return nil
	}
	candidate := utils.NormalizePlate(*classifier)
	if candidate == "" {
		return nil
	}
	if p.IsPlausiblePlate(candidate) {
		return &candidate
	}
	if reader == "" {
		return &candidate
	}
	return nil
}
