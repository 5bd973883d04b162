package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Refresh outcomes.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

const defaultListLimit = 50

// Run is one completed aggregation refresh. Runs form an audit trail only;
// they are never used to rebuild the served payload.
type Run struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	StartedAt      time.Time `gorm:"index" json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	DurationMs     int64     `json:"durationMs"`
	Forced         bool      `json:"forced"`
	Outcome        string    `gorm:"index;size:16" json:"outcome"`
	WorldCount     int       `json:"worldCount"`
	KoreaCount     int       `json:"koreaCount"`
	JapanCount     int       `json:"japanCount"`
	TrendingCount  int       `json:"trendingCount"`
	RatesSource    string    `gorm:"size:32" json:"ratesSource"`
	FailedBranches string    `json:"failedBranches"`
	Error          string    `json:"error,omitempty"`
}

// TableName pins the table name.
func (Run) TableName() string {
	return "refresh_runs"
}

// Branches splits FailedBranches.
func (r Run) Branches() []string {
	if r.FailedBranches == "" {
		return nil
	}
	return strings.Split(r.FailedBranches, ",")
}

// Filter narrows ListRuns.
type Filter struct {
	Outcome string
	Since   time.Time
	Limit   int
}

// Store persists refresh runs in SQLite.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: underlying db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return New(db)
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun inserts run, assigning an ID when it has none.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("store: save run: %w", err)
	}
	return nil
}

// ListRuns returns runs matching f, newest first.
func (s *Store) ListRuns(ctx context.Context, f Filter) ([]Run, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultListLimit
	}

	query := sq.Select("*").From(Run{}.TableName()).OrderBy("started_at DESC").Limit(uint64(limit))
	if f.Outcome != "" {
		query = query.Where(sq.Eq{"outcome": f.Outcome})
	}
	if !f.Since.IsZero() {
		query = query.Where(sq.GtOrEq{"started_at": f.Since.UTC()})
	}

	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build query: %w", err)
	}

	var runs []Run
	if err := s.db.WithContext(ctx).Raw(sqlText, args...).Scan(&runs).Error; err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return runs, nil
}
