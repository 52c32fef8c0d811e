package analysis

// ViolationKind names one of the violation flags the classifier reports.
type ViolationKind string

const (
	NoHelmet               ViolationKind = "no_helmet"
	SignalJumping          ViolationKind = "signal_jumping"
	WrongSideDriving       ViolationKind = "wrong_side_driving"
	ZebraCrossingViolation ViolationKind = "zebra_crossing_violation"
	IllegalParking         ViolationKind = "illegal_parking"
)

// Kinds lists every known violation kind in a stable order.
var Kinds = []ViolationKind{
	NoHelmet,
	SignalJumping,
	WrongSideDriving,
	ZebraCrossingViolation,
	IllegalParking,
}

type Request struct {
	MediaURL    string `json:"media_url"`
	ReportID    string `json:"report_id"`
	UserComment string `json:"user_comment"`
}

type ViolationSignal struct {
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
}

// Media is the evidence payload fetched once per request and handed to the classifier.
type Media struct {
	Data     []byte
	MIMEType string
}

// Classification is the classifier output after parsing and validation.
type Classification struct {
	Signals      map[ViolationKind]ViolationSignal
	LicensePlate *string
	Reasoning    string
}

// ExtractedData is the classifier view persisted with a report and returned to callers.
type ExtractedData struct {
	NoHelmet               ViolationSignal `json:"no_helmet"`
	SignalJumping          ViolationSignal `json:"signal_jumping"`
	WrongSideDriving       ViolationSignal `json:"wrong_side_driving"`
	ZebraCrossingViolation ViolationSignal `json:"zebra_crossing_violation"`
	IllegalParking         ViolationSignal `json:"illegal_parking"`
	LicensePlate           *string         `json:"license_plate"`
	Comment                string          `json:"comment"`
}

func NewExtractedData(c *Classification) ExtractedData {
	d := ExtractedData{
		LicensePlate: c.LicensePlate,
		Comment:      c.Reasoning,
	}
	for _, kind := range Kinds {
		d.Set(kind, c.Signals[kind])
	}
	return d
}

func (d *ExtractedData) Set(kind ViolationKind, s ViolationSignal) {
	switch kind {
	case NoHelmet:
		d.NoHelmet = s
	case SignalJumping:
		d.SignalJumping = s
	case WrongSideDriving:
		d.WrongSideDriving = s
	case ZebraCrossingViolation:
		d.ZebraCrossingViolation = s
	case IllegalParking:
		d.IllegalParking = s
	}
}

func (d ExtractedData) Signals() map[ViolationKind]ViolationSignal {
	return map[ViolationKind]ViolationSignal{
		NoHelmet:               d.NoHelmet,
		SignalJumping:          d.SignalJumping,
		WrongSideDriving:       d.WrongSideDriving,
		ZebraCrossingViolation: d.ZebraCrossingViolation,
		IllegalParking:         d.IllegalParking,
	}
}

type Result struct {
	AuthenticityScore float64       `json:"authenticity_score"`
	PlateNumber       *string       `json:"plate_number"`
	ExtractedData     ExtractedData `json:"extracted_data"`
	ValidityScore     float64       `json:"validity_score"`
	PriorityScore     float64       `json:"priority_score"`
	AIExplanation     *string       `json:"ai_explanation"`
}
