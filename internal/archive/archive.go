// Package archive persists closed positions to SQLite through Gorm. The
// engine keeps only live state in memory; once a position closes it is
// handed here and dropped from the caches.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mtengine/internal/position"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("archived position not found")

type closedPositionModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	TraderID   string `gorm:"index;size:64"`
	AccountID  string `gorm:"index;size:64"`
	AssetPair  string `gorm:"index;size:32"`
	Side       string `gorm:"size:8"`
	Reason     string `gorm:"size:16"`
	Invest     string `gorm:"size:40"`
	Profit     string `gorm:"size:40"`
	OpenDate   time.Time
	CloseDate  time.Time `gorm:"index"`
	Payload    datatypes.JSON
	ArchivedAt time.Time `gorm:"autoCreateTime"`
}

func (closedPositionModel) TableName() string { return "closed_positions" }

// Store is the closed-position archive.
type Store struct {
	db *gorm.DB
}

// New opens (or creates) the archive database at path and migrates the
// schema.
func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("archive: database path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&closedPositionModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: one writer, a little read parallelism for HTTP queries.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Insert archives a closed position. The full position travels as a JSON
// payload; the indexed columns exist for querying only.
func (s *Store) Insert(ctx context.Context, p *position.Closed) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("archive: encoding position %s failed: %w", p.Base.ID, err)
	}
	model := closedPositionModel{
		ID:        p.Base.ID,
		TraderID:  p.Base.TraderID,
		AccountID: p.Base.AccountID,
		AssetPair: p.Base.AssetPair,
		Side:      p.Base.Side.String(),
		Reason:    p.State.Reason.String(),
		Invest:    p.Base.InvestAmount.String(),
		Profit:    p.State.Active.Profit.String(),
		OpenDate:  p.State.Active.Open.OpenDate,
		CloseDate: p.State.CloseDate,
		Payload:   datatypes.JSON(payload),
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

// Query filters archived positions. Zero-valued fields do not constrain.
type Query struct {
	TraderID  string
	AccountID string
	AssetPair string
	Limit     int
	Offset    int
}

// List returns archived positions, newest close first.
func (s *Store) List(ctx context.Context, q Query) ([]*position.Closed, error) {
	tx := s.db.WithContext(ctx).Model(&closedPositionModel{}).Order("close_date DESC")
	if q.TraderID != "" {
		tx = tx.Where("trader_id = ?", q.TraderID)
	}
	if q.AccountID != "" {
		tx = tx.Where("account_id = ?", q.AccountID)
	}
	if q.AssetPair != "" {
		tx = tx.Where("asset_pair = ?", q.AssetPair)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	tx = tx.Limit(limit)
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var models []closedPositionModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*position.Closed, 0, len(models))
	for _, m := range models {
		p, err := decodePayload(m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Get fetches a single archived position by id.
func (s *Store) Get(ctx context.Context, id string) (*position.Closed, error) {
	var model closedPositionModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodePayload(model)
}

func decodePayload(m closedPositionModel) (*position.Closed, error) {
	var p position.Closed
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, fmt.Errorf("archive: decoding position %s failed: %w", m.ID, err)
	}
	return &p, nil
}
