package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"evidence-service/internal/domain/analysis"
	"evidence-service/internal/domain/report"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

type ReportStore interface {
	Create(ctx context.Context, rep *report.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*report.Report, error)
	SaveAnalysis(ctx context.Context, rep *report.Report, from []report.Status) (bool, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from []report.Status, to report.Status, reviewedBy string) (bool, error)
	ListQueue(ctx context.Context, include, exclude []report.Status, limit, offset int) ([]report.Report, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

type ReportService struct {
	store    ReportStore
	analyzer Analyzer
	now      func() time.Time
	log      zerolog.Logger
}

func NewReportService(store ReportStore, analyzer Analyzer, log zerolog.Logger) *ReportService {
	return &ReportService{
		store:    store,
		analyzer: analyzer,
		now:      time.Now,
		log:      log.With().Str("component", "reports").Logger(),
	}
}

func (s *ReportService) Submit(ctx context.Context, in report.SubmitInput) (*report.Report, error) {
	mediaURL := strings.TrimSpace(in.MediaURL)
	if err := validateMediaURL(mediaURL); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rep := &report.Report{
		ID:            uuid.New(),
		MediaURL:      mediaURL,
		ViolationType: report.DefaultViolationType,
		Status:        report.StatusSubmitted,
		EvidenceHash:  strings.TrimSpace(in.EvidenceHash),
		Metadata:      in.Metadata,
		UserComment:   strings.TrimSpace(in.UserComment),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, rep); err != nil {
		s.log.Error().Err(err).Str("media_url", mediaURL).Msg("failed to create report")
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.log.Info().
		Str("report_id", rep.ID.String()).
		Str("citizen_id", rep.Metadata.CitizenID).
		Msg("report submitted")
	return rep, nil
}

func (s *ReportService) Get(ctx context.Context, rawID string) (*report.Report, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	rep, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if rep == nil {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	return rep, nil
}

// AnalyzeReport runs the evidence pipeline on a stored report and writes the result back.
// Nothing is written when the pipeline fails.
func (s *ReportService) AnalyzeReport(ctx context.Context, rawID string, in report.AnalyzeInput) (*report.Report, error) {
	rep, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !rep.Status.Reviewable() {
		return nil, fmt.Errorf("%w: report %s is already %s", ErrConflict, rep.ID, rep.Status)
	}

	comment := strings.TrimSpace(in.UserComment)
	if comment == "" {
		comment = rep.UserComment
	}

	result, err := s.analyzer.Analyze(ctx, analysis.Request{
		MediaURL:    rep.MediaURL,
		ReportID:    rep.ID.String(),
		UserComment: comment,
	})
	if err != nil {
		return nil, err
	}

	rep.ApplyAnalysis(strings.TrimSpace(in.ViolationType), result)
	rep.UpdatedAt = s.now().UTC()

	// An officer decision taken while the pipeline ran must not be overwritten.
	updated, err := s.store.SaveAnalysis(ctx, rep, report.ReviewableStatuses)
	if err != nil {
		s.log.Error().Err(err).Str("report_id", rep.ID.String()).Msg("failed to save analysis")
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	if !updated {
		current, err := s.Get(ctx, rawID)
		if err != nil {
			return nil, err
		}
		s.log.Warn().
			Str("report_id", rep.ID.String()).
			Str("status", string(current.Status)).
			Msg("report reviewed during analysis, result discarded")
		return nil, fmt.Errorf("%w: report %s is already %s", ErrConflict, rep.ID, current.Status)
	}

	s.log.Info().
		Str("report_id", rep.ID.String()).
		Str("violation_type", rep.ViolationType).
		Float64("priority_score", result.PriorityScore).
		Msg("analysis saved to report")
	return rep, nil
}

// Review records an officer decision. Only approved and rejected are accepted,
// and only for reports that are still awaiting review.
func (s *ReportService) Review(ctx context.Context, rawID string, in report.ReviewInput) (*report.Report, error) {
	if in.Status != report.StatusApproved && in.Status != report.StatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrInvalidInput)
	}
	reviewer := strings.TrimSpace(in.ReviewedBy)
	if reviewer == "" {
		return nil, fmt.Errorf("%w: reviewed_by is required", ErrInvalidInput)
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.TransitionStatus(ctx, id, report.ReviewableStatuses, in.Status, reviewer)
	if err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	rep, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: report %s is already %s", ErrConflict, id, rep.Status)
	}

	s.log.Info().
		Str("report_id", id.String()).
		Str("status", string(in.Status)).
		Str("reviewed_by", reviewer).
		Msg("report reviewed")
	return rep, nil
}

// ListQueue returns reports for the officer dashboard. filter is "all" (everything
// except rejected), "pending_review" (anything still awaiting a decision) or a single status.
func (s *ReportService) ListQueue(ctx context.Context, filter string, limit, offset int) ([]report.Report, error) {
	include, exclude, err := queueFilter(filter)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	reports, err := s.store.ListQueue(ctx, include, exclude, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func queueFilter(filter string) (include, exclude []report.Status, err error) {
	switch filter {
	case "", "all":
		return nil, []report.Status{report.StatusRejected}, nil
	case string(report.StatusPendingReview):
		return report.ReviewableStatuses, nil, nil
	}
	status := report.Status(filter)
	if !status.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown status filter %q", ErrInvalidInput, filter)
	}
	return []report.Status{status}, nil, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid report id", ErrInvalidInput)
	}
	return id, nil
}

func validateMediaURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: media_url is required", ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: media_url must be an http(s) URL", ErrInvalidInput)
	}
	return nil
}
