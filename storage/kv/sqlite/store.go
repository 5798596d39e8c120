package sqlitekv

import (
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/trezcool/kipimo/core"
)

// Store keeps attempt blobs in an embedded sqlite file: durable, per-device
// storage with no external service, the closest server-side analogue of the
// browser's localStorage.
type Store struct {
	db *gorm.DB
}

var _ core.KeyValueStore = (*Store)(nil)

type blob struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (blob) TableName() string { return "attempt_blobs" }

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite store")
	}
	if err = db.AutoMigrate(&blob{}); err != nil {
		return nil, errors.Wrap(err, "migrating sqlite store")
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key string) ([]byte, error) {
	var b blob
	if err := s.db.First(&b, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrKeyNotFound
		}
		return nil, err
	}
	return b.Value, nil
}

func (s *Store) Set(key string, value []byte) error {
	b := blob{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&b).Error
}

func (s *Store) Remove(key string) error {
	return s.db.Delete(&blob{}, "key = ?", key).Error
}

func (s *Store) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.Model(&blob{}).
		Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
