package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidence-service/internal/domain/analysis"
	"evidence-service/internal/domain/report"
)

// memoryStore is an in-memory ReportStore.
type memoryStore struct {
	mu      sync.Mutex
	reports map[uuid.UUID]report.Report
	saves   int

	lastInclude []report.Status
	lastExclude []report.Status
	lastLimit   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reports: make(map[uuid.UUID]report.Report)}
}

func (m *memoryStore) Create(ctx context.Context, rep *report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[rep.ID] = *rep
	return nil
}

func (m *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reports[id]
	if !ok {
		return nil, nil
	}
	return &rep, nil
}

func (m *memoryStore) SaveAnalysis(ctx context.Context, rep *report.Report, from []report.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reports[rep.ID]
	if !ok || !containsStatus(from, stored.Status) {
		return false, nil
	}
	m.reports[rep.ID] = *rep
	m.saves++
	return true, nil
}

func containsStatus(statuses []report.Status, s report.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (m *memoryStore) TransitionStatus(ctx context.Context, id uuid.UUID, from []report.Status, to report.Status, reviewedBy string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reports[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if rep.Status == s {
			rep.Status = to
			rep.ReviewedBy = &reviewedBy
			m.reports[id] = rep
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) ListQueue(ctx context.Context, include, exclude []report.Status, limit, offset int) ([]report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastInclude, m.lastExclude, m.lastLimit = include, exclude, limit
	return nil, nil
}

type fakeAnalyzer struct {
	result *analysis.Result
	err    error
	got    analysis.Request
	during func()
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	f.got = req
	if f.during != nil {
		f.during()
	}
	return f.result, f.err
}

func newTestReportService(store ReportStore, analyzer Analyzer) *ReportService {
	svc := NewReportService(store, analyzer, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func submitted(t *testing.T, svc *ReportService) *report.Report {
	t.Helper()
	rep, err := svc.Submit(context.Background(), report.SubmitInput{
		MediaURL:    "https://cdn.example/evidence/a.jpg",
		UserComment: "bike on the footpath",
		Metadata:    report.Metadata{CitizenID: "citizen_abc"},
	})
	require.NoError(t, err)
	return rep
}

func TestSubmit(t *testing.T) {
	store := newMemoryStore()
	svc := newTestReportService(store, &fakeAnalyzer{})

	rep := submitted(t, svc)
	assert.Equal(t, report.StatusSubmitted, rep.Status)
	assert.Equal(t, report.DefaultViolationType, rep.ViolationType)
	assert.NotEqual(t, uuid.Nil, rep.ID)
	assert.Contains(t, store.reports, rep.ID)
}

func TestSubmit_RejectsBadURL(t *testing.T) {
	svc := newTestReportService(newMemoryStore(), &fakeAnalyzer{})
	for _, u := range []string{"", "ftp://host/file", "not a url", "https://"} {
		_, err := svc.Submit(context.Background(), report.SubmitInput{MediaURL: u})
		assert.True(t, errors.Is(err, ErrInvalidInput), u)
	}
}

func TestAnalyzeReport_WritesResult(t *testing.T) {
	store := newMemoryStore()
	plate := "DL8CX9291"
	analyzer := &fakeAnalyzer{result: &analysis.Result{
		AuthenticityScore: 0.9,
		PlateNumber:       &plate,
		ValidityScore:     0.8,
		PriorityScore:     0.72,
	}}
	svc := newTestReportService(store, analyzer)
	rep := submitted(t, svc)

	got, err := svc.AnalyzeReport(context.Background(), rep.ID.String(), report.AnalyzeInput{ViolationType: "Wrong Side Driving"})
	require.NoError(t, err)

	assert.Equal(t, report.StatusAIProcessed, got.Status)
	assert.Equal(t, "Wrong Side Driving", got.ViolationType)
	require.NotNil(t, got.PriorityScore)
	assert.Equal(t, 0.72, *got.PriorityScore)
	assert.Equal(t, "bike on the footpath", analyzer.got.UserComment)
	assert.Equal(t, rep.MediaURL, analyzer.got.MediaURL)
	assert.Equal(t, rep.ID.String(), analyzer.got.ReportID)
	assert.Equal(t, 1, store.saves)
}

func TestAnalyzeReport_FatalFailureWritesNothing(t *testing.T) {
	store := newMemoryStore()
	analyzer := &fakeAnalyzer{err: fmt.Errorf("analyze: %w", analysis.ErrMediaUnavailable)}
	svc := newTestReportService(store, analyzer)
	rep := submitted(t, svc)

	_, err := svc.AnalyzeReport(context.Background(), rep.ID.String(), report.AnalyzeInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrMediaUnavailable))
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, report.StatusSubmitted, store.reports[rep.ID].Status)
}

func TestAnalyzeReport_NotFoundAndReviewed(t *testing.T) {
	store := newMemoryStore()
	svc := newTestReportService(store, &fakeAnalyzer{result: &analysis.Result{}})

	_, err := svc.AnalyzeReport(context.Background(), uuid.NewString(), report.AnalyzeInput{})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.AnalyzeReport(context.Background(), "nope", report.AnalyzeInput{})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	rep := submitted(t, svc)
	_, err = svc.Review(context.Background(), rep.ID.String(), report.ReviewInput{Status: report.StatusApproved, ReviewedBy: "officer_101"})
	require.NoError(t, err)

	_, err = svc.AnalyzeReport(context.Background(), rep.ID.String(), report.AnalyzeInput{})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestAnalyzeReport_KeepsDecisionTakenDuringAnalysis(t *testing.T) {
	store := newMemoryStore()
	analyzer := &fakeAnalyzer{result: &analysis.Result{AuthenticityScore: 1, ValidityScore: 0.8, PriorityScore: 0.6}}
	svc := newTestReportService(store, analyzer)
	rep := submitted(t, svc)

	analyzer.during = func() {
		_, err := svc.Review(context.Background(), rep.ID.String(), report.ReviewInput{Status: report.StatusApproved, ReviewedBy: "officer_101"})
		require.NoError(t, err)
	}

	_, err := svc.AnalyzeReport(context.Background(), rep.ID.String(), report.AnalyzeInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, 0, store.saves)

	got, err := svc.Get(context.Background(), rep.ID.String())
	require.NoError(t, err)
	assert.Equal(t, report.StatusApproved, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, "officer_101", *got.ReviewedBy)
	assert.Nil(t, got.PriorityScore)
}

func TestReview(t *testing.T) {
	store := newMemoryStore()
	svc := newTestReportService(store, &fakeAnalyzer{})
	rep := submitted(t, svc)

	got, err := svc.Review(context.Background(), rep.ID.String(), report.ReviewInput{Status: report.StatusRejected, ReviewedBy: "officer_101"})
	require.NoError(t, err)
	assert.Equal(t, report.StatusRejected, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, "officer_101", *got.ReviewedBy)

	_, err = svc.Review(context.Background(), rep.ID.String(), report.ReviewInput{Status: report.StatusApproved, ReviewedBy: "officer_101"})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestReview_InvalidInput(t *testing.T) {
	svc := newTestReportService(newMemoryStore(), &fakeAnalyzer{})
	id := uuid.NewString()

	_, err := svc.Review(context.Background(), id, report.ReviewInput{Status: report.StatusAIProcessed, ReviewedBy: "o"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.Review(context.Background(), id, report.ReviewInput{Status: report.StatusApproved, ReviewedBy: " "})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.Review(context.Background(), id, report.ReviewInput{Status: report.StatusApproved, ReviewedBy: "o"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListQueue_Filters(t *testing.T) {
	store := newMemoryStore()
	svc := newTestReportService(store, &fakeAnalyzer{})
	ctx := context.Background()

	_, err := svc.ListQueue(ctx, "all", 0, 0)
	require.NoError(t, err)
	assert.Nil(t, store.lastInclude)
	assert.Equal(t, []report.Status{report.StatusRejected}, store.lastExclude)
	assert.Equal(t, 50, store.lastLimit)

	_, err = svc.ListQueue(ctx, "pending_review", 500, 0)
	require.NoError(t, err)
	assert.Equal(t, report.ReviewableStatuses, store.lastInclude)
	assert.Equal(t, 100, store.lastLimit)

	_, err = svc.ListQueue(ctx, "approved", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []report.Status{report.StatusApproved}, store.lastInclude)

	_, err = svc.ListQueue(ctx, "archived", 10, 0)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
