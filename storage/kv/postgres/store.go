package pgkv

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kipimo/core"
)

// Store keeps attempt blobs in the attempt_blobs table (see fs/migrations),
// for deployments where state is shared between instances. Last-write-wins,
// no locking, matching the engine's concurrency model.
type Store struct {
	db *sqlx.DB
}

var _ core.KeyValueStore = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "postgres")}
}

func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.Get(&value, `SELECT value FROM attempt_blobs WHERE key = $1`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *Store) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO attempt_blobs (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	return err
}

func (s *Store) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM attempt_blobs WHERE key = $1`, key)
	return err
}

func (s *Store) Keys(prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := s.db.Select(&keys, `SELECT key FROM attempt_blobs WHERE key LIKE $1 ESCAPE '\'`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
