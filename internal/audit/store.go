package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Decision values stored in Record.Status.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusSkipped  = "skipped"
)

// Record is one audited decision: a commit accepted or rejected, or a ref
// update skipped.
type Record struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	User   string `gorm:"index;type:varchar(100)"`
	UID    string `gorm:"type:varchar(32)"`
	Groups datatypes.JSON

	Ref     string `gorm:"index;type:varchar(255)"`
	OldRev  string `gorm:"type:varchar(64)"`
	NewRev  string `gorm:"type:varchar(64)"`
	Commit  string `gorm:"index;type:varchar(64)"`
	Subject string `gorm:"type:text"`

	Status string `gorm:"index;type:varchar(16)"`
	Field  string `gorm:"type:varchar(64)"`
	Reason string `gorm:"type:text"`
}

// WithIdentity stamps the record with who ran the hook.
func (r Record) WithIdentity(id Identity) Record {
	r.User = id.User
	r.UID = id.UID
	groups, err := json.Marshal(id.Groups)
	if err == nil {
		r.Groups = datatypes.JSON(groups)
	}
	return r
}

// Store persists records in SQLite.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate audit database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, rec Record) error {
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	var recs []Record
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("read audit records: %w", err)
	}
	return recs, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Nop discards records; used when auditing is disabled.
type Nop struct{}

func (Nop) Record(context.Context, Record) error { return nil }
