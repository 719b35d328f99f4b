// Package store persists synthesis runs and their per-path outcomes.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nlstn/go-csdlgen/internal/observability"
)

// ErrRunNotFound is returned when no run matches the lookup.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted synthesis run.
type Run struct {
	ID               string `gorm:"primaryKey;size:36"`
	Fingerprint      string `gorm:"index;size:16"`
	InputFingerprint string `gorm:"size:16"`
	StartedAt        time.Time
	DurationMillis   int64
	Processed        int
	Failed           int
	Skipped          int
	Schemas          int
	EntitySets       int
	Singletons       int
	Operations       int
	Error            string
	CSDL             string        `gorm:"type:text"`
	Outcomes         []PathOutcome `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time
}

// PathOutcome is the result of one generic path within a run.
type PathOutcome struct {
	ID             uint   `gorm:"primaryKey"`
	RunID          string `gorm:"index;size:36"`
	Path           string
	Classification string
	Outcome        string
	Verbs          string
	Error          string
}

// Store wraps the database holding runs.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to dsn and migrates the schema. postgres:// and
// postgresql:// URLs select PostgreSQL, anything else is a SQLite path.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
		}
		// every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
	}

	return New(db, logger)
}

// New wraps an open gorm handle and migrates the schema.
func New(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("store: database handle is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{db: db, logger: logger}
	if err := s.AutoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func dialector(dsn string) gorm.Dialector {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// AutoMigrate creates or updates the tables.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Run{}, &PathOutcome{}); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}

// SetObservability registers span callbacks when detailed tracing is enabled.
func (s *Store) SetObservability(cfg *observability.Config) error {
	if cfg == nil || !cfg.DetailedDBTracing() {
		return nil
	}
	if err := observability.RegisterGORMCallbacks(s.db, cfg); err != nil {
		return fmt.Errorf("failed to register GORM callbacks: %w", err)
	}
	return nil
}

// Dialect returns the database dialect name.
func (s *Store) Dialect() string {
	return s.db.Dialector.Name()
}

// SaveRun stores the run and its outcomes in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Outcomes").Create(run).Error; err != nil {
			return err
		}
		if len(run.Outcomes) == 0 {
			return nil
		}
		for i := range run.Outcomes {
			run.Outcomes[i].RunID = run.ID
		}
		return tx.CreateInBatches(run.Outcomes, 100).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	s.logger.Debug("Saved run", "runID", run.ID, "outcomes", len(run.Outcomes))
	return nil
}

// GetRun loads a run with its outcomes.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Preload("Outcomes", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs without outcomes. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	q := s.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// LatestByFingerprint returns the newest run over the same aggregated paths.
func (s *Store) LatestByFingerprint(ctx context.Context, fingerprint string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Order("started_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: fingerprint %s", ErrRunNotFound, fingerprint)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
