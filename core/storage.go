package core

import "errors"

var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the durable storage port the attempt engine persists to.
// Implementations live under storage/kv. Keys are namespaced paths
// (see core/attempt key codec); Keys does a prefix scan for bulk clears.
//
// The store is shared across server instances the way localStorage is shared
// across tabs: there is no locking, concurrent writers are last-write-wins.
type KeyValueStore interface {
	// Get returns the stored value or ErrKeyNotFound.
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	// Remove deletes the entry; removing an absent key is not an error.
	Remove(key string) error
	// Keys returns all stored keys starting with prefix.
	Keys(prefix string) ([]string, error)
}
