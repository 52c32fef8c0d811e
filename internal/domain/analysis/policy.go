package analysis

import "regexp"

// Policy is the static scoring and plate table. It is built once at start-up
// and shared read-only by the reconciler and the aggregator.
type Policy struct {
	Weights map[ViolationKind]float64
	// FailureBaseline is the priority given to evidence the classifier could not analyse,
	// before authenticity scaling.
	FailureBaseline float64
	// ReportedFailureAuthenticity is used when the forensics service answers with its own failure status.
	ReportedFailureAuthenticity float64
	PlateMinLen                 int
	PlateMaxLen                 int
	PlateShape                  *regexp.Regexp
}

func DefaultPolicy() *Policy {
	return &Policy{
		Weights: map[ViolationKind]float64{
			NoHelmet:               0.6,
			SignalJumping:          0.9,
			WrongSideDriving:       1.0,
			ZebraCrossingViolation: 0.4,
			IllegalParking:         0.3,
		},
		FailureBaseline:             0.2,
		ReportedFailureAuthenticity: 0.95,
		PlateMinLen:                 7,
		PlateMaxLen:                 11,
		PlateShape:                  regexp.MustCompile(`[A-Z]{2}[0-9]`),
	}
}

// IsPlausiblePlate applies the coarse length and shape check to a normalized candidate.
func (p *Policy) IsPlausiblePlate(candidate string) bool {
	n := len(candidate)
	if n < p.PlateMinLen || n > p.PlateMaxLen {
		return false
	}
	return p.PlateShape.MatchString(candidate)
}

func (p *Policy) Weight(kind ViolationKind) float64 {
	return p.Weights[kind]
}
