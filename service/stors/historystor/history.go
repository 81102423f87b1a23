// Package historystor persists solved requests in SQLite through gorm.
package historystor

import (
	"errors"
	"fmt"
	"time"

	"integral-solver/api"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("history entry not found")

const MaxLimit = 200

type Entry struct {
	ID         string    `gorm:"primarykey;size:36"`
	CreatedAt  time.Time `gorm:"index"`
	Expression string    `gorm:"size:1024;not null"`
	Variable   string    `gorm:"size:16;not null;default:x"`
	Success    bool      `gorm:"not null"`
	Result     string    `gorm:"size:2048"`
	Method     string    `gorm:"size:64;index"`
	Error      string    `gorm:"size:1024"`
	Cached     bool      `gorm:"not null;default:false"`
	DurationMS int64
}

func (Entry) TableName() string {
	return "solve_history"
}

func (e *Entry) API() api.HistoryEntry {
	return api.HistoryEntry{
		ID:         e.ID,
		Expression: e.Expression,
		Variable:   e.Variable,
		Success:    e.Success,
		Result:     e.Result,
		Method:     e.Method,
		Error:      e.Error,
		Cached:     e.Cached,
		DurationMS: e.DurationMS,
		CreatedAt:  e.CreatedAt,
	}
}

// FromEvent projects a solve event onto a row.
func FromEvent(ev api.SolveEvent) *Entry {
	e := &Entry{
		ID:         ev.ID,
		CreatedAt:  ev.At,
		Expression: ev.Request.Expression,
		Variable:   ev.Request.Variable,
		Cached:     ev.Cached,
		DurationMS: ev.DurationMS,
	}
	if e.Variable == "" {
		e.Variable = "x"
	}
	if r := ev.Response; r != nil {
		e.Success = r.Success
		e.Result = r.Result
		e.Method = r.Method
		e.Error = r.Error
	}
	return e
}

type Repository struct {
	db *gorm.DB
}

// Open connects to the SQLite file at path and migrates the schema.
func Open(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get history connection: %w", err)
	}
	// every connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return NewRepository(db), nil
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(e *Entry) error {
	if err := r.db.Create(e).Error; err != nil {
		return fmt.Errorf("failed to create history entry: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(id string) (*Entry, error) {
	var e Entry
	if err := r.db.First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find history entry: %w", err)
	}
	return &e, nil
}

// Recent returns up to limit entries, newest first.
func (r *Repository) Recent(limit int) ([]*Entry, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	var entries []*Entry
	if err := r.db.Order("created_at desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// CountByMethod tallies successful solves per method.
func (r *Repository) CountByMethod() (map[string]int64, error) {
	var rows []struct {
		Method string
		Count  int64
	}
	err := r.db.Model(&Entry{}).
		Select("method, count(*) as count").
		Where("success = ?", true).
		Group("method").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Method] = row.Count
	}
	return out, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
