package service

import (
	"evidence-service/internal/domain/analysis"
	"evidence-service/internal/utils"
)

type Scores struct {
	Validity float64
	Priority float64
}

// AggregateScores reduces the violation signals to validity and priority.
// Validity is the highest confidence among detected violations; priority is the
// severity-weighted sum of detected confidences, capped at 1 and scaled by authenticity.
func AggregateScores(p *analysis.Policy, signals map[analysis.ViolationKind]analysis.ViolationSignal, authenticity float64) Scores {
	var highest, raw float64
	// Fixed iteration order keeps the float sum reproducible.
	for _, kind := range analysis.Kinds {
		s, ok := signals[kind]
		if !ok || !s.Detected {
			continue
		}
		conf := utils.Clamp01(s.Confidence)
		if conf > highest {
			highest = conf
		}
		raw += p.Weight(kind) * conf
	}
	return Scores{
		Validity: highest,
		Priority: utils.Round2(utils.Clamp01(raw) * utils.Clamp01(authenticity)),
	}
}

// FailureScores is used when the classifier produced nothing: zero validity and
// a low baseline priority so the report still lands in the queue.
func FailureScores(p *analysis.Policy, authenticity float64) Scores {
	return Scores{
		Validity: 0,
		Priority: utils.Round2(utils.Clamp01(p.FailureBaseline * utils.Clamp01(authenticity))),
	}
}
