package attempt

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
)

// store reads and writes attempt blobs through the KeyValueStore port.
// Reads fail soft: an absent key or a corrupt blob is "no attempt", never an
// error to the caller. Writes surface failures as StorageUnavailableError so
// callers can keep going from memory.
type store struct {
	kv     core.KeyValueStore
	logger core.Logger
}

func (s *store) get(owner string, testID int) *TestAttempt {
	raw, err := s.kv.Get(attemptKey(owner, testID))
	if err != nil {
		if err != core.ErrKeyNotFound {
			s.logger.Warn("attempt store: read failed", err, owner)
		}
		return nil
	}
	var att TestAttempt
	if err = json.Unmarshal(raw, &att); err != nil {
		// corrupt blob: discard and treat as absent
		s.logger.Warn("attempt store: discarding corrupt blob", err, owner)
		return nil
	}
	return &att
}

// save overwrites the whole attempt; it is never a partial patch.
func (s *store) save(owner string, att *TestAttempt) error {
	raw, err := json.Marshal(att)
	if err != nil {
		return errors.Wrap(err, "marshalling attempt")
	}
	if err = s.kv.Set(attemptKey(owner, att.TestID), raw); err != nil {
		return &core.StorageUnavailableError{Err: err}
	}
	return nil
}

func (s *store) clear(owner string, testID int) error {
	if err := s.kv.Remove(attemptKey(owner, testID)); err != nil {
		return &core.StorageUnavailableError{Err: err}
	}
	return nil
}

// clearAll removes every attempt namespaced to owner, leaving other owners'
// attempts untouched.
func (s *store) clearAll(owner string) error {
	keys, err := s.kv.Keys(ownerPrefix(owner))
	if err != nil {
		return &core.StorageUnavailableError{Err: err}
	}
	for _, key := range keys {
		if err = s.kv.Remove(key); err != nil {
			return &core.StorageUnavailableError{Err: err}
		}
	}
	return nil
}
