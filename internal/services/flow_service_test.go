package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowpulse/internal/dataprocessing"
	"flowpulse/internal/shared/testutil"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/domain"
	"flowpulse/pkg/contracts/events"
)

func newTestFlowService(t *testing.T, repo storage.Repository, notifier Notifier) *FlowService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	processor := dataprocessing.NewProcessor(dataprocessing.DefaultOptions(), logger)
	return NewFlowService(processor, repo, nil, notifier, nil, logger)
}

func flowFile(name string, day int, buys, sells float64) domain.UploadedFile {
	return domain.UploadedFile{
		Name: name,
		Content: testutil.FlowReportCSV(testutil.Day(2024, 3, day),
			testutil.FlowRow{Category: "Estrangeiro", Buys: buys, Sells: sells}),
	}
}

func TestUploadFlowsStoresDailyRecords(t *testing.T) {
	repo := storage.NewMemoryRepository()
	notifier := &recordingNotifier{}
	svc := newTestFlowService(t, repo, notifier)
	ctx := context.Background()

	summary, err := svc.UploadFlows(ctx, "alice", []domain.UploadedFile{
		flowFile("d1.csv", 1, 1000, 800),
		flowFile("d4.csv", 4, 1500, 1000),
	})
	require.NoError(t, err)

	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.TotalRecords)
	require.NotNil(t, summary.StartDate)
	require.NotNil(t, summary.EndDate)
	assert.Equal(t, testutil.Day(2024, 3, 1), *summary.StartDate)
	assert.Equal(t, testutil.Day(2024, 3, 4), *summary.EndDate)

	stored, err := svc.Flows(ctx, "alice", storage.Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, int64(200), stored[0].DailyFlow)
	assert.Equal(t, int64(300), stored[1].DailyFlow)

	published := notifier.Events()
	require.Len(t, published, 1)
	assert.Equal(t, "alice", published[0].userID)
	assert.Equal(t, string(events.MessageTypeDataUpdated), published[0].eventType)
	update, ok := published[0].data.(events.DataUpdate)
	require.True(t, ok)
	assert.Equal(t, events.KindFlows, update.Kind)
	assert.Equal(t, 2, update.Records)
}

func TestUploadFlowsMergesWithStoredMonth(t *testing.T) {
	repo := storage.NewMemoryRepository()
	svc := newTestFlowService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.UploadFlows(ctx, "alice", []domain.UploadedFile{flowFile("d1.csv", 1, 1000, 800)})
	require.NoError(t, err)
	_, err = svc.UploadFlows(ctx, "alice", []domain.UploadedFile{flowFile("d4.csv", 4, 1500, 1000)})
	require.NoError(t, err)

	stored, err := svc.Flows(ctx, "alice", storage.Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, int64(500), stored[1].DailyBuys)
	assert.Equal(t, int64(200), stored[1].DailySells)
	assert.Equal(t, int64(300), stored[1].DailyFlow)

	// a late report between the stored days corrects the following day
	_, err = svc.UploadFlows(ctx, "alice", []domain.UploadedFile{flowFile("d2.csv", 2, 1200, 900)})
	require.NoError(t, err)

	stored, err = svc.Flows(ctx, "alice", storage.Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, int64(100), stored[1].DailyFlow)
	assert.Equal(t, int64(200), stored[2].DailyFlow)
	for _, r := range stored {
		assert.True(t, r.IsConsistent(), r.Key())
	}
}

func TestUploadFlowsKeepsUsersApart(t *testing.T) {
	repo := storage.NewMemoryRepository()
	svc := newTestFlowService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.UploadFlows(ctx, "alice", []domain.UploadedFile{flowFile("d1.csv", 1, 1000, 800)})
	require.NoError(t, err)

	bob, err := svc.Flows(ctx, "bob", storage.Filter{})
	require.NoError(t, err)
	assert.Empty(t, bob)
	assert.NotNil(t, bob)
}

func TestUploadFlowsRejected(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	ingester := new(mockIngester)
	ingester.On("ReconstructDailyFlow", mock.Anything, mock.Anything).
		Return(nil, dataprocessing.ErrNoValidRecords)
	notifier := &recordingNotifier{}
	svc := NewFlowService(ingester, storage.NewMemoryRepository(), nil, notifier, nil, logger)

	summary, err := svc.UploadFlows(context.Background(), "alice", []domain.UploadedFile{{Name: "x.csv", Content: "junk"}})

	require.Error(t, err)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, dataprocessing.ErrNoValidRecords)
	assert.Empty(t, notifier.Events())
	assert.True(t, logs.ContainsMessage("flow upload rejected"))
	ingester.AssertExpectations(t)
}

func TestUploadFlowsStorageFailure(t *testing.T) {
	repo := newFaultyRepository()
	repo.saveErr = errors.New("disk full")
	svc := newTestFlowService(t, repo, nil)

	_, err := svc.UploadFlows(context.Background(), "alice", []domain.UploadedFile{flowFile("d1.csv", 1, 1000, 800)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save flows")
	assert.Contains(t, err.Error(), "disk full")
}

func TestConcurrentUploadsMergeInTurn(t *testing.T) {
	repo := newGatedRepository(storage.NewMemoryRepository())
	svc := newTestFlowService(t, repo, nil)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := svc.UploadFlows(ctx, "alice", []domain.UploadedFile{flowFile("d4.csv", 4, 3000, 1500)})
		first <- err
	}()
	<-repo.entered

	second := make(chan error, 1)
	go func() {
		_, err := svc.UploadFlows(ctx, "alice", []domain.UploadedFile{flowFile("d1.csv", 1, 1000, 800)})
		second <- err
	}()

	assert.Never(t, func() bool { return repo.calls.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond,
		"second upload read stored flows while the first was merging")
	close(repo.release)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	flows, err := svc.Flows(ctx, "alice", storage.Filter{})
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, int64(200), flows[0].DailyFlow)
	assert.Equal(t, int64(2000), flows[1].DailyBuys)
	assert.Equal(t, int64(700), flows[1].DailySells)
	assert.Equal(t, int64(1300), flows[1].DailyFlow)
}

func TestUploadPricesRecomputesChanges(t *testing.T) {
	repo := storage.NewMemoryRepository()
	notifier := &recordingNotifier{}
	svc := newTestFlowService(t, repo, notifier)
	ctx := context.Background()

	first := testutil.QuotesCSV(testutil.QuoteRow{
		Date: testutil.Day(2024, 3, 1), Open: 128000, High: 128500, Low: 127500, Close: 128000, Volume: 1000, Quantity: 10,
	})
	second := testutil.QuotesCSV(testutil.QuoteRow{
		Date: testutil.Day(2024, 3, 4), Open: 128000, High: 129500, Low: 127900, Close: 129280, Volume: 1000, Quantity: 10,
	})

	summary, err := svc.UploadPrices(ctx, "alice", first)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalRecords)

	_, err = svc.UploadPrices(ctx, "alice", second)
	require.NoError(t, err)

	bars, err := svc.Prices(ctx, "alice", storage.Filter{})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(0), bars[0].PointChange)
	assert.Equal(t, int64(1280), bars[1].PointChange)
	assert.InDelta(t, 1.0, bars[1].PercentChange, 1e-9)

	require.Len(t, notifier.Events(), 2)
	update := notifier.Events()[1].data.(events.DataUpdate)
	assert.Equal(t, events.KindPrices, update.Kind)
}

func TestFlowsRejectsInvertedRange(t *testing.T) {
	svc := newTestFlowService(t, storage.NewMemoryRepository(), nil)

	_, err := svc.Flows(context.Background(), "alice", storage.Filter{
		From: testutil.Day(2024, 3, 10),
		To:   testutil.Day(2024, 3, 1),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.Prices(context.Background(), "alice", storage.Filter{
		From: testutil.Day(2024, 3, 10),
		To:   testutil.Day(2024, 3, 1),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestClearDataInvalidatesCacheAndNotifies(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	repo := storage.NewMemoryRepository()
	_, err := repo.SaveFlows(context.Background(), "alice", testutil.FlowSeries("Estrangeiro", testutil.Day(2024, 3, 1), 10, 20))
	require.NoError(t, err)

	reportCache := new(mockCache)
	reportCache.On("Invalidate", mock.Anything, "alice").Return(nil).Once()
	notifier := &recordingNotifier{}
	svc := NewFlowService(new(mockIngester), repo, reportCache, notifier, nil, logger)

	require.NoError(t, svc.ClearData(context.Background(), "alice"))

	flows, err := repo.Flows(context.Background(), "alice", storage.Filter{})
	require.NoError(t, err)
	assert.Empty(t, flows)

	reportCache.AssertExpectations(t)
	require.Len(t, notifier.Events(), 1)
	assert.Equal(t, events.KindCleared, notifier.Events()[0].data.(events.DataUpdate).Kind)
}

func TestCacheInvalidationFailureDoesNotFailUpload(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	reportCache := new(mockCache)
	reportCache.On("Invalidate", mock.Anything, "alice").Return(errors.New("redis down"))
	processor := dataprocessing.NewProcessor(dataprocessing.DefaultOptions(), logger)
	svc := NewFlowService(processor, storage.NewMemoryRepository(), reportCache, nil, nil, logger)

	_, err := svc.UploadFlows(context.Background(), "alice", []domain.UploadedFile{flowFile("d1.csv", 1, 1000, 800)})

	require.NoError(t, err)
	assert.True(t, logs.ContainsMessage("report cache invalidation failed"))
}

func TestClearDataRequiresUser(t *testing.T) {
	svc := newTestFlowService(t, storage.NewMemoryRepository(), nil)

	err := svc.ClearData(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrMissingUser)
}
