package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"flowpulse/internal/shared/testutil"
	"flowpulse/pkg/contracts/domain"
)

func startPostgres(t *testing.T) *PostgresRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.Run(ctx, "postgres:16-alpine",
		testcontainers.WithExposedPorts("5432/tcp"),
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_USER":     "flowpulse",
			"POSTGRES_PASSWORD": "flowpulse",
			"POSTGRES_DB":       "flowpulse",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=flowpulse password=flowpulse dbname=flowpulse sslmode=disable", host, port.Port())
	logger, _ := testutil.NewTestLogger(t)
	repo, err := OpenPostgres(ctx, PostgresConfig{DSN: dsn, MaxOpenConns: 4}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestPostgresRepository(t *testing.T) {
	repo := startPostgres(t)
	ctx := context.Background()

	t.Run("flows upsert", func(t *testing.T) {
		_, err := repo.SaveFlows(ctx, "u1", []domain.DailyFlowRecord{
			flowRecord(day1, "Estrangeiro", 10),
			flowRecord(day1, "Institucional", -10),
			flowRecord(day1.AddDate(0, 0, 1), "Estrangeiro", 5),
		})
		require.NoError(t, err)
		_, err = repo.SaveFlows(ctx, "u1", []domain.DailyFlowRecord{flowRecord(day1, "Estrangeiro", 42)})
		require.NoError(t, err)

		got, err := repo.Flows(ctx, "u1", Filter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, int64(42), got[0].DailyFlow)
		assert.Equal(t, day1, got[0].Date)

		filtered, err := repo.Flows(ctx, "u1", Filter{Category: "Estrangeiro", From: day1.AddDate(0, 0, 1)})
		require.NoError(t, err)
		assert.Len(t, filtered, 1)
	})

	t.Run("prices upsert", func(t *testing.T) {
		_, err := repo.SavePrices(ctx, "u1", []domain.DailyPriceBar{priceBar(day1, 120000)})
		require.NoError(t, err)
		_, err = repo.SavePrices(ctx, "u1", []domain.DailyPriceBar{priceBar(day1, 121000)})
		require.NoError(t, err)

		got, err := repo.Prices(ctx, "u1", Filter{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(121000), got[0].Close)
	})

	t.Run("analyses", func(t *testing.T) {
		a := &domain.SavedAnalysis{ID: "00000000-0000-0000-0000-000000000001", UserID: "u1", Name: "Março", StartDate: day1, EndDate: day1, TotalDays: 1}
		require.NoError(t, repo.SaveAnalysis(ctx, a))
		assert.False(t, a.CreatedAt.IsZero())

		list, err := repo.ListAnalyses(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, repo.DeleteAnalysis(ctx, "u1", a.ID))
		_, err = repo.GetAnalysis(ctx, "u1", a.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("atomically", func(t *testing.T) {
		err := repo.Atomically(ctx, "u2", func(tx Repository) error {
			if _, err := tx.SaveFlows(ctx, "u2", []domain.DailyFlowRecord{flowRecord(day1, "Estrangeiro", 7)}); err != nil {
				return err
			}
			got, err := tx.Flows(ctx, "u2", Filter{})
			require.NoError(t, err)
			assert.Len(t, got, 1)
			return errors.New("abort")
		})
		require.EqualError(t, err, "abort")

		got, err := repo.Flows(ctx, "u2", Filter{})
		require.NoError(t, err)
		assert.Empty(t, got, "rolled back")

		require.NoError(t, repo.Atomically(ctx, "u2", func(tx Repository) error {
			_, err := tx.SaveFlows(ctx, "u2", []domain.DailyFlowRecord{flowRecord(day1, "Estrangeiro", 7)})
			return err
		}))
		got, err = repo.Flows(ctx, "u2", Filter{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("clear data", func(t *testing.T) {
		require.NoError(t, repo.ClearData(ctx, "u1"))
		got, err := repo.Flows(ctx, "u1", Filter{})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, repo.Ping(ctx))
	})
}
