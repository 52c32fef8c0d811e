package report

import (
	"time"

	"github.com/google/uuid"

	"evidence-service/internal/domain/analysis"
)

type Status string

const (
	StatusSubmitted     Status = "submitted"
	StatusAIProcessed   Status = "ai_processed"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

// DefaultViolationType is stored until the reporter picks a violation.
const DefaultViolationType = "Pending Selection"

// ReviewableStatuses are the states an officer can still approve or reject.
var ReviewableStatuses = []Status{StatusSubmitted, StatusAIProcessed, StatusPendingReview}

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusAIProcessed, StatusPendingReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) Reviewable() bool {
	for _, r := range ReviewableStatuses {
		if s == r {
			return true
		}
	}
	return false
}

type GPS struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

type Metadata struct {
	GPS       *GPS   `json:"gps,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Device    string `json:"device,omitempty"`
	CitizenID string `json:"citizen_id,omitempty"`
}

type Report struct {
	ID                uuid.UUID               `json:"id"`
	MediaURL          string                  `json:"media_url"`
	ViolationType     string                  `json:"violation_type"`
	Status            Status                  `json:"status"`
	EvidenceHash      string                  `json:"evidence_hash,omitempty"`
	Metadata          Metadata                `json:"metadata"`
	UserComment       string                  `json:"user_comment,omitempty"`
	AuthenticityScore *float64                `json:"authenticity_score"`
	PlateNumber       *string                 `json:"plate_number"`
	ExtractedData     *analysis.ExtractedData `json:"extracted_data"`
	ValidityScore     *float64                `json:"validity_score"`
	PriorityScore     *float64                `json:"priority_score"`
	AIExplanation     *string                 `json:"ai_explanation"`
	ReviewedBy        *string                 `json:"reviewed_by,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// ApplyAnalysis copies a pipeline result onto the report and marks it processed.
func (r *Report) ApplyAnalysis(violationType string, res *analysis.Result) {
	if violationType != "" {
		r.ViolationType = violationType
	}
	authenticity, validity, priority := res.AuthenticityScore, res.ValidityScore, res.PriorityScore
	extracted := res.ExtractedData
	r.AuthenticityScore = &authenticity
	r.ValidityScore = &validity
	r.PriorityScore = &priority
	r.PlateNumber = res.PlateNumber
	r.ExtractedData = &extracted
	r.AIExplanation = res.AIExplanation
	r.Status = StatusAIProcessed
}

type SubmitInput struct {
	MediaURL     string   `json:"media_url" binding:"required"`
	EvidenceHash string   `json:"evidence_hash"`
	UserComment  string   `json:"user_comment"`
	Metadata     Metadata `json:"metadata"`
}

type AnalyzeInput struct {
	ViolationType string `json:"violation_type"`
	UserComment   string `json:"user_comment"`
}

type ReviewInput struct {
	Status     Status `json:"status" binding:"required"`
	ReviewedBy string `json:"reviewed_by" binding:"required"`
}
