package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketMetadata = []byte("metadata")
)

// BoltStore keeps reference metadata snapshots in a BoltDB file so a restart
// during a sheet outage still serves the last good values. Star records are
// never written here.
type BoltStore struct {
	db *bolt.DB
}

// metadataRecord wraps a stored value with the time it was saved
type metadataRecord struct {
	SavedAt time.Time       `json:"saved_at"`
	Value   json.RawMessage `json:"value"`
}

// NewBoltStore creates a new BoltDB-backed metadata store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "starhunt.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMetadata); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketMetadata, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// SaveMetadata stores value as JSON under key, replacing any previous value
func (s *BoltStore) SaveMetadata(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	data, err := json.Marshal(metadataRecord{SavedAt: time.Now().UTC(), Value: raw})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMetadata).Put([]byte(key), data)
	})
}

// LoadMetadata decodes the value stored under key into value. It reports
// false when nothing has been saved yet.
func (s *BoltStore) LoadMetadata(key string, value any) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMetadata).Get([]byte(key))
		if data == nil {
			return nil
		}

		var record metadataRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		if err := json.Unmarshal(record.Value, value); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		found = true
		return nil
	})
	return found, err
}
