package inmemkv

import (
	"strings"
	"sync"

	"github.com/trezcool/kipimo/core"
)

// Store is a mutex'd in-memory KeyValueStore: the test double, and the
// fallback engine when no durable backend is configured.
type Store struct {
	mutex sync.RWMutex
	table map[string][]byte
}

var _ core.KeyValueStore = (*Store)(nil)

func New() *Store {
	return &Store{table: make(map[string][]byte)}
}

func (s *Store) Get(key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	val, ok := s.table[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, nil
}

func (s *Store) Set(key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.table[key] = cp
	return nil
}

func (s *Store) Remove(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.table, key)
	return nil
}

func (s *Store) Keys(prefix string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0)
	for key := range s.table {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
