package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowpulse/internal/shared/testutil"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/events"
)

func newTestAnalysisService(t *testing.T, repo storage.Repository, notifier Notifier) *AnalysisService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc := NewAnalysisService(repo, notifier, logger)
	svc.now = func() time.Time { return time.Date(2024, 4, 2, 15, 30, 0, 0, time.UTC) }
	return svc
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := testutil.Day(year, month, day)
	return &d
}

func TestCreateAnalysisDerivesPeriodFromFlows(t *testing.T) {
	repo, _, _ := seededRepository(t)
	notifier := &recordingNotifier{}
	svc := newTestAnalysisService(t, repo, notifier)

	analysis, err := svc.Create(context.Background(), "alice", CreateAnalysisInput{
		Name:        "  March review ",
		Description: "first ten sessions",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, "alice", analysis.UserID)
	assert.Equal(t, "March review", analysis.Name)
	assert.Equal(t, analyticsStart, analysis.StartDate)
	assert.Equal(t, analyticsStart.AddDate(0, 0, 9), analysis.EndDate)
	assert.Equal(t, 10, analysis.TotalDays)
	assert.Equal(t, time.Date(2024, 4, 2, 15, 30, 0, 0, time.UTC), analysis.CreatedAt)

	published := notifier.Events()
	require.Len(t, published, 1)
	assert.Equal(t, string(events.MessageTypeAnalysisSaved), published[0].eventType)
	saved := published[0].data.(events.AnalysisSaved)
	assert.Equal(t, analysis.ID, saved.ID)
	assert.Equal(t, 10, saved.TotalDays)
}

func TestCreateAnalysisWithExplicitPeriod(t *testing.T) {
	repo, _, _ := seededRepository(t)
	svc := newTestAnalysisService(t, repo, nil)

	analysis, err := svc.Create(context.Background(), "alice", CreateAnalysisInput{
		Name:      "first week",
		StartDate: datePtr(2024, 3, 1),
		EndDate:   datePtr(2024, 3, 7),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, analysis.TotalDays)

	// one open bound is completed from the data
	analysis, err = svc.Create(context.Background(), "alice", CreateAnalysisInput{
		Name:      "tail",
		StartDate: datePtr(2024, 3, 8),
	})
	require.NoError(t, err)
	assert.Equal(t, testutil.Day(2024, 3, 10), analysis.EndDate)
	assert.Equal(t, 3, analysis.TotalDays)
}

func TestCreateAnalysisErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateAnalysisInput
		seed    bool
		wantErr error
	}{
		{
			name:    "missing name",
			input:   CreateAnalysisInput{Name: "   "},
			seed:    true,
			wantErr: ErrInvalidInput,
		},
		{
			name: "inverted range",
			input: CreateAnalysisInput{
				Name:      "bad",
				StartDate: datePtr(2024, 3, 9),
				EndDate:   datePtr(2024, 3, 1),
			},
			seed:    true,
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "no data to derive dates",
			input:   CreateAnalysisInput{Name: "empty"},
			wantErr: ErrNoData,
		},
		{
			name:    "open bound past the data",
			input:   CreateAnalysisInput{Name: "late", StartDate: datePtr(2024, 5, 1)},
			seed:    true,
			wantErr: ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var repo storage.Repository = storage.NewMemoryRepository()
			if tt.seed {
				repo, _, _ = seededRepository(t)
			}
			svc := newTestAnalysisService(t, repo, nil)

			_, err := svc.Create(context.Background(), "alice", tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnalysisHistoryLifecycle(t *testing.T) {
	repo, _, _ := seededRepository(t)
	svc := newTestAnalysisService(t, repo, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, "alice", CreateAnalysisInput{Name: "first"})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2024, 4, 3, 9, 0, 0, 0, time.UTC) }
	second, err := svc.Create(ctx, "alice", CreateAnalysisInput{Name: "second"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	got, err := svc.Get(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	_, err = svc.Get(ctx, "bob", first.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "alice", first.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "alice", first.ID), storage.ErrNotFound)

	list, err = svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	empty, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
