package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"evidence-service/internal/domain/analysis"
	"evidence-service/internal/domain/report"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type Report struct {
	ID                uuid.UUID                           `gorm:"type:uuid;primaryKey"`
	MediaURL          string                              `gorm:"not null"`
	ViolationType     string                              `gorm:"not null"`
	Status            string                              `gorm:"not null"`
	EvidenceHash      *string
	Metadata          datatypes.JSONType[report.Metadata] `gorm:"type:jsonb"`
	UserComment       *string
	AuthenticityScore *float64
	PlateNumber       *string
	ExtractedData     datatypes.JSON `gorm:"type:jsonb"`
	ValidityScore     *float64
	PriorityScore     *float64
	AIExplanation     *string `gorm:"column:ai_explanation"`
	ReviewedBy        *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Report) TableName() string {
	return "reports"
}

func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) error {
	row := Report{
		ID:            rep.ID,
		MediaURL:      rep.MediaURL,
		ViolationType: rep.ViolationType,
		Status:        string(rep.Status),
		Metadata:      datatypes.NewJSONType(rep.Metadata),
		CreatedAt:     rep.CreatedAt,
		UpdatedAt:     rep.UpdatedAt,
	}
	if rep.EvidenceHash != "" {
		row.EvidenceHash = &rep.EvidenceHash
	}
	if rep.UserComment != "" {
		row.UserComment = &rep.UserComment
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// GetByID returns nil, nil when the report does not exist.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	var row Report
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// SaveAnalysis writes the pipeline result fields and status, only if the stored status
// is still one of from. It reports whether a row was updated.
func (r *ReportRepository) SaveAnalysis(ctx context.Context, rep *report.Report, from []report.Status) (bool, error) {
	extracted, err := json.Marshal(rep.ExtractedData)
	if err != nil {
		return false, fmt.Errorf("marshal extracted data: %w", err)
	}

	res := r.db.WithContext(ctx).
		Model(&Report{}).
		Where("id = ? AND status IN ?", rep.ID, statusStrings(from)).
		Updates(map[string]interface{}{
			"violation_type":     rep.ViolationType,
			"status":             string(rep.Status),
			"authenticity_score": rep.AuthenticityScore,
			"plate_number":       rep.PlateNumber,
			"extracted_data":     datatypes.JSON(extracted),
			"validity_score":     rep.ValidityScore,
			"priority_score":     rep.PriorityScore,
			"ai_explanation":     rep.AIExplanation,
			"updated_at":         rep.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TransitionStatus moves a report to status only if its current status is one of from.
// It reports whether a row was updated.
func (r *ReportRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []report.Status, to report.Status, reviewedBy string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Report{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(map[string]interface{}{
			"status":      string(to),
			"reviewed_by": reviewedBy,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListQueue returns reports ordered for officer review, highest priority first.
func (r *ReportRepository) ListQueue(ctx context.Context, include, exclude []report.Status, limit, offset int) ([]report.Report, error) {
	query := r.db.WithContext(ctx).Model(&Report{})

	if len(include) > 0 {
		query = query.Where("status IN ?", statusStrings(include))
	}
	if len(exclude) > 0 {
		query = query.Where("status NOT IN ?", statusStrings(exclude))
	}

	query = query.Order("priority_score DESC NULLS LAST").Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []Report
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]report.Report, 0, len(rows))
	for i := range rows {
		rep, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, *rep)
	}
	return result, nil
}

func (row *Report) toDomain() (*report.Report, error) {
	rep := &report.Report{
		ID:                row.ID,
		MediaURL:          row.MediaURL,
		ViolationType:     row.ViolationType,
		Status:            report.Status(row.Status),
		Metadata:          row.Metadata.Data(),
		AuthenticityScore: row.AuthenticityScore,
		PlateNumber:       row.PlateNumber,
		ValidityScore:     row.ValidityScore,
		PriorityScore:     row.PriorityScore,
		AIExplanation:     row.AIExplanation,
		ReviewedBy:        row.ReviewedBy,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if row.EvidenceHash != nil {
		rep.EvidenceHash = *row.EvidenceHash
	}
	if row.UserComment != nil {
		rep.UserComment = *row.UserComment
	}
	if len(row.ExtractedData) > 0 && string(row.ExtractedData) != "null" {
		var extracted analysis.ExtractedData
		if err := json.Unmarshal(row.ExtractedData, &extracted); err != nil {
			return nil, fmt.Errorf("decode extracted_data of report %s: %w", row.ID, err)
		}
		rep.ExtractedData = &extracted
	}
	return rep, nil
}

func statusStrings(statuses []report.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
