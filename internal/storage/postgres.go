package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flowpulse/pkg/contracts/domain"
)

const upsertBatchSize = 500

// PostgresConfig holds the connection settings of the Postgres driver
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// SlowQuery is the duration above which statements are logged at warn
	SlowQuery time.Duration
}

// PostgresRepository is a Repository backed by PostgreSQL through GORM
type PostgresRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// OpenPostgres connects, configures the pool and migrates the schema
func OpenPostgres(ctx context.Context, cfg PostgresConfig, log *slog.Logger) (*PostgresRepository, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "postgres_repository"))

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: newGormLogger(log, cfg.SlowQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresRepository{db: db, logger: log}
	if err := repo.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.InfoContext(ctx, "database connection established")
	return repo, nil
}

// Migrate creates or updates the tables
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&flowModel{}, &priceModel{}, &analysisModel{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SaveFlows upserts records on (user_id, date, category)
func (r *PostgresRepository) SaveFlows(ctx context.Context, userID string, records []domain.DailyFlowRecord) (int, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([]flowModel, len(records))
	for i, rec := range records {
		rows[i] = newFlowModel(userID, rec)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cumulative_buys", "cumulative_sells", "cumulative_flow",
			"daily_buys", "daily_sells", "daily_flow", "updated_at",
		}),
	}).CreateInBatches(rows, upsertBatchSize).Error
	if err != nil {
		return 0, fmt.Errorf("save flows: %w", err)
	}

	r.logger.DebugContext(ctx, "flows saved",
		slog.String("user_id", userID),
		slog.Int("count", len(rows)),
	)
	return len(rows), nil
}

// SavePrices upserts bars on (user_id, date)
func (r *PostgresRepository) SavePrices(ctx context.Context, userID string, bars []domain.DailyPriceBar) (int, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}
	if len(bars) == 0 {
		return 0, nil
	}

	rows := make([]priceModel, len(bars))
	for i, b := range bars {
		rows[i] = newPriceModel(userID, b)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "high", "low", "close", "total_volume", "total_quantity",
			"point_change", "percent_change", "price_range", "updated_at",
		}),
	}).CreateInBatches(rows, upsertBatchSize).Error
	if err != nil {
		return 0, fmt.Errorf("save prices: %w", err)
	}
	return len(rows), nil
}

// Flows returns the user's records in (date, category) order
func (r *PostgresRepository) Flows(ctx context.Context, userID string, filter Filter) ([]domain.DailyFlowRecord, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	query = applyDateRange(query, filter)

	var rows []flowModel
	if err := query.Order("date ASC").Order("category ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query flows: %w", err)
	}

	out := make([]domain.DailyFlowRecord, len(rows))
	for i, m := range rows {
		out[i] = m.toDomain()
	}
	return out, nil
}

// Prices returns the user's bars in date order
func (r *PostgresRepository) Prices(ctx context.Context, userID string, filter Filter) ([]domain.DailyPriceBar, error) {
	query := applyDateRange(r.db.WithContext(ctx).Where("user_id = ?", userID), filter)

	var rows []priceModel
	if err := query.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}

	out := make([]domain.DailyPriceBar, len(rows))
	for i, m := range rows {
		out[i] = m.toDomain()
	}
	return out, nil
}

func applyDateRange(query *gorm.DB, filter Filter) *gorm.DB {
	if !filter.From.IsZero() {
		query = query.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("date <= ?", filter.To)
	}
	return query
}

// ClearData deletes the user's flows and prices in one transaction
func (r *PostgresRepository) ClearData(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&flowModel{}).Error; err != nil {
			return fmt.Errorf("clear flows: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&priceModel{}).Error; err != nil {
			return fmt.Errorf("clear prices: %w", err)
		}
		return nil
	})
}

// Atomically runs fn inside a transaction holding a transaction-scoped
// advisory lock on the user, so concurrent calls for one user queue up.
func (r *PostgresRepository) Atomically(ctx context.Context, userID string, fn func(tx Repository) error) error {
	if userID == "" {
		return ErrMissingUser
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", userID).Error; err != nil {
			return fmt.Errorf("lock user data: %w", err)
		}
		return fn(&PostgresRepository{db: tx, logger: r.logger})
	})
}

// SaveAnalysis inserts or replaces an analysis
func (r *PostgresRepository) SaveAnalysis(ctx context.Context, analysis *domain.SavedAnalysis) error {
	if analysis == nil || analysis.ID == "" {
		return fmt.Errorf("save analysis: missing id")
	}
	if analysis.UserID == "" {
		return ErrMissingUser
	}
	row := newAnalysisModel(*analysis)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	analysis.CreatedAt, analysis.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

// ListAnalyses returns the user's analyses newest first
func (r *PostgresRepository) ListAnalyses(ctx context.Context, userID string) ([]domain.SavedAnalysis, error) {
	var rows []analysisModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	out := make([]domain.SavedAnalysis, len(rows))
	for i, m := range rows {
		out[i] = m.toDomain()
	}
	return out, nil
}

// GetAnalysis returns one analysis or ErrNotFound
func (r *PostgresRepository) GetAnalysis(ctx context.Context, userID, id string) (*domain.SavedAnalysis, error) {
	var row analysisModel
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	a := row.toDomain()
	return &a, nil
}

// DeleteAnalysis removes one analysis or returns ErrNotFound
func (r *PostgresRepository) DeleteAnalysis(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&analysisModel{})
	if res.Error != nil {
		return fmt.Errorf("delete analysis: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	return nil
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
