package vision

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"evidence-service/internal/domain/analysis"
	"evidence-service/internal/utils"
)

var (
	openFence = regexp.MustCompile("(?i)```json")
	validate  = validator.New(validator.WithRequiredStructEnabled())
)

type flagReply struct {
	Detected   *bool    `json:"detected" validate:"required"`
	Confidence *float64 `json:"confidence"`
}

// reply is the JSON document the model must return.
type reply struct {
	NoHelmet               *flagReply `json:"no_helmet" validate:"required"`
	SignalJumping          *flagReply `json:"signal_jumping" validate:"required"`
	WrongSideDriving       *flagReply `json:"wrong_side_driving" validate:"required"`
	ZebraCrossingViolation *flagReply `json:"zebra_crossing_violation" validate:"required"`
	IllegalParking         *flagReply `json:"illegal_parking" validate:"required"`
	LicensePlate           *string    `json:"license_plate"`
	Comment                string     `json:"comment"`
}

// StripCodeFences removes markdown code fences the model may wrap its JSON in.
func StripCodeFences(text string) string {
	text = openFence.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// ParseReply decodes and validates a model reply.
func ParseReply(text string) (*analysis.Classification, error) {
	var r reply
	if err := json.Unmarshal([]byte(StripCodeFences(text)), &r); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if err := validate.Struct(&r); err != nil {
		return nil, fmt.Errorf("validate reply: %w", err)
	}

	flags := map[analysis.ViolationKind]*flagReply{
		analysis.NoHelmet:               r.NoHelmet,
		analysis.SignalJumping:          r.SignalJumping,
		analysis.WrongSideDriving:       r.WrongSideDriving,
		analysis.ZebraCrossingViolation: r.ZebraCrossingViolation,
		analysis.IllegalParking:         r.IllegalParking,
	}

	c := &analysis.Classification{
		Signals:      make(map[analysis.ViolationKind]analysis.ViolationSignal, len(flags)),
		LicensePlate: cleanPlate(r.LicensePlate),
		Reasoning:    strings.TrimSpace(r.Comment),
	}
	for kind, f := range flags {
		s := analysis.ViolationSignal{Detected: *f.Detected}
		if f.Confidence != nil {
			s.Confidence = utils.Clamp01(*f.Confidence)
		}
		c.Signals[kind] = s
	}
	return c, nil
}

func cleanPlate(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}
