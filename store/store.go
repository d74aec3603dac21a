// Package store persists directory snapshots in a local bitcask
// database. Snapshots are written all-or-nothing: a value is only
// visible once the put completed, so a crash mid-write leaves the
// previous snapshot intact.
package store

import (
	"encoding/json"
	"time"

	"triggerbot/logger"

	"git.mills.io/prologic/bitcask"
)

type Store struct {
	db *bitcask.Bitcask
}

func Open(path string) (*Store, error) {
	// Snapshots of a busy directory can get large; lift the default
	// 65KB value cap.
	db, err := bitcask.Open(path, bitcask.WithMaxValueSize(10*1024*1024))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Merge reclaims space held by overwritten snapshots.
func (s *Store) Merge() {
	logger.Info("Merging database to reclaim space...")
	if err := s.db.Merge(); err != nil {
		logger.Error("Error merging database", "error", err)
		return
	}
	logger.Info("Database merge complete.")
}

// MergeLoop merges on a fixed interval until the store is closed.
func (s *Store) MergeLoop(interval time.Duration) {
	for {
		time.Sleep(interval)
		s.Merge()
	}
}

// SaveJSON marshals v and stores it compressed under key.
func (s *Store) SaveJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	compressed, err := compress(raw)
	if err != nil {
		return err
	}
	return s.db.Put(cacheKey(key), compressed)
}

// LoadJSON reads the value stored under key into out.
func (s *Store) LoadJSON(key string, out any) error {
	compressed, err := s.db.Get(cacheKey(key))
	if err != nil {
		return err
	}
	raw, err := decompress(compressed)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *Store) Has(key string) bool {
	return s.db.Has(cacheKey(key))
}

func (s *Store) Delete(key string) error {
	return s.db.Delete(cacheKey(key))
}
