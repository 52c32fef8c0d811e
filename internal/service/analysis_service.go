package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"evidence-service/internal/domain/analysis"
	"evidence-service/internal/metrics"
	"evidence-service/internal/utils"
)

// FallbackReasoning replaces the model's comment when classification fails.
const FallbackReasoning = "Automated analysis unavailable: the vision model failed to process the evidence. Manual review advised."

const (
	depAuthenticity = "sightengine"
	depPlates       = "roboflow"
	depClassifier   = "vision"
	depMedia        = "media"
)

type AuthenticityChecker interface {
	AIGeneratedProbability(ctx context.Context, mediaURL string) (float64, error)
}

type PlateReader interface {
	ReadPlate(ctx context.Context, mediaURL string) (string, error)
}

type ViolationClassifier interface {
	Classify(ctx context.Context, media analysis.Media, userComment string) (*analysis.Classification, error)
}

type MediaFetcher interface {
	Fetch(ctx context.Context, mediaURL string) (*analysis.Media, error)
}

// Timeouts bound each external call. Zero means no extra deadline.
type Timeouts struct {
	Authenticity time.Duration
	Plate        time.Duration
	Media        time.Duration
	Classifier   time.Duration
}

type AnalysisService struct {
	authenticity AuthenticityChecker
	plates       PlateReader
	classifier   ViolationClassifier
	media        MediaFetcher
	policy       *analysis.Policy
	timeouts     Timeouts
	log          zerolog.Logger
}

func NewAnalysisService(
	authenticity AuthenticityChecker,
	plates PlateReader,
	classifier ViolationClassifier,
	media MediaFetcher,
	policy *analysis.Policy,
	timeouts Timeouts,
	log zerolog.Logger,
) *AnalysisService {
	if policy == nil {
		policy = analysis.DefaultPolicy()
	}
	return &AnalysisService{
		authenticity: authenticity,
		plates:       plates,
		classifier:   classifier,
		media:        media,
		policy:       policy,
		timeouts:     timeouts,
		log:          log.With().Str("component", "analysis").Logger(),
	}
}

// Analyze runs the evidence pipeline for one request. Dependency failures degrade
// to defaults; only an unreachable media URL returns an error, wrapping
// analysis.ErrMediaUnavailable.
func (s *AnalysisService) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	req.MediaURL = strings.TrimSpace(req.MediaURL)
	if req.MediaURL == "" {
		return nil, fmt.Errorf("%w: media_url is required", ErrInvalidInput)
	}

	// A started analysis runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	log := s.log.With().Str("report_id", req.ReportID).Logger()
	log.Info().Str("media_url", req.MediaURL).Msg("analyzing evidence")

	var (
		authenticity float64
		readerPlate  string
		media        *analysis.Media
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		authenticity = s.checkAuthenticity(gctx, req.MediaURL, log)
		log.Debug().Str("state", "authenticity_done").Float64("authenticity_score", authenticity).Send()
		return nil
	})
	g.Go(func() error {
		m, err := call(gctx, log, depMedia, s.timeouts.Media, func(ctx context.Context) (*analysis.Media, error) {
			return s.media.Fetch(ctx, req.MediaURL)
		}).unwrap()
		if err != nil {
			return err
		}
		media = m
		log.Debug().Str("state", "media_fetched").Int("bytes", len(m.Data)).Str("mime_type", m.MIMEType).Send()
		return nil
	})
	g.Go(func() error {
		readerPlate = s.readPlate(gctx, req.MediaURL, log)
		log.Debug().Str("state", "plate_read_done").Str("plate", readerPlate).Send()
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.ObserveAnalysis("failed", 0)
		log.Error().Err(err).Msg("evidence analysis aborted")
		return nil, fmt.Errorf("analyze report %q: %w", req.ReportID, err)
	}

	classification, classified := s.classify(ctx, *media, req.UserComment, log)
	log.Debug().Str("state", "classified").Bool("ok", classified).Send()

	plate := ReconcilePlates(s.policy, readerPlate, classification.LicensePlate)
	log.Debug().Str("state", "reconciled").Interface("plate_number", plate).Send()

	scores := FailureScores(s.policy, authenticity)
	if classified {
		scores = AggregateScores(s.policy, classification.Signals, authenticity)
	}
	log.Debug().Str("state", "scored").Float64("validity_score", scores.Validity).Float64("priority_score", scores.Priority).Send()

	result := &analysis.Result{
		AuthenticityScore: authenticity,
		PlateNumber:       plate,
		ExtractedData:     analysis.NewExtractedData(classification),
		ValidityScore:     scores.Validity,
		PriorityScore:     scores.Priority,
	}
	if classification.Reasoning != "" {
		explanation := classification.Reasoning
		result.AIExplanation = &explanation
	}

	outcome := "complete"
	if !classified {
		outcome = "degraded"
	}
	metrics.ObserveAnalysis(outcome, result.PriorityScore)
	log.Info().
		Str("state", "done").
		Str("outcome", outcome).
		Float64("authenticity_score", result.AuthenticityScore).
		Float64("validity_score", result.ValidityScore).
		Float64("priority_score", result.PriorityScore).
		Msg("evidence analysis finished")

	return result, nil
}

// checkAuthenticity never fails: missing credentials or transport errors assume
// genuine media, a failure reported by the service itself gives a near-default score.
func (s *AnalysisService) checkAuthenticity(ctx context.Context, mediaURL string, log zerolog.Logger) float64 {
	return call(ctx, log, depAuthenticity, s.timeouts.Authenticity, func(ctx context.Context) (float64, error) {
		p, err := s.authenticity.AIGeneratedProbability(ctx, mediaURL)
		if err != nil {
			return 0, err
		}
		return utils.Clamp01(1 - utils.Clamp01(p)), nil
	}).or(func(err error) float64 {
		if analysis.KindOf(err) == analysis.FailureReported {
			return s.policy.ReportedFailureAuthenticity
		}
		return 1.0
	})
}

func (s *AnalysisService) readPlate(ctx context.Context, mediaURL string, log zerolog.Logger) string {
	return call(ctx, log, depPlates, s.timeouts.Plate, func(ctx context.Context) (string, error) {
		return s.plates.ReadPlate(ctx, mediaURL)
	}).or(func(error) string { return "" })
}

// classify returns the fallback classification and false when the classifier fails.
func (s *AnalysisService) classify(ctx context.Context, media analysis.Media, userComment string, log zerolog.Logger) (*analysis.Classification, bool) {
	c, err := call(ctx, log, depClassifier, s.timeouts.Classifier, func(ctx context.Context) (*analysis.Classification, error) {
		return s.classifier.Classify(ctx, media, userComment)
	}).unwrap()
	if err != nil || c == nil {
		return fallbackClassification(), false
	}
	return c, true
}

func fallbackClassification() *analysis.Classification {
	signals := make(map[analysis.ViolationKind]analysis.ViolationSignal, len(analysis.Kinds))
	for _, kind := range analysis.Kinds {
		signals[kind] = analysis.ViolationSignal{}
	}
	return &analysis.Classification{
		Signals:   signals,
		Reasoning: FallbackReasoning,
	}
}
