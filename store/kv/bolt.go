package kv

import (
	"context"

	"github.com/pkg/errors"
	"github.com/warp/books-engine/ledger"
	bolt "go.etcd.io/bbolt"
)

// BucketSnapshots holds the snapshot blob.
const BucketSnapshots = "snapshots"

// BoltStore represents the bbolt database wrapper.
type BoltStore struct {
	db  *bolt.DB
	key []byte
}

// NewBolt opens the database file and initializes the bucket.
func NewBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketSnapshots))
		return errors.Wrapf(err, "failed to create bucket %s", BucketSnapshots)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, key: []byte(DataKey)}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(_ context.Context) (ledger.ERPData, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketSnapshots))
		if b == nil {
			return errors.Errorf("bucket %s not found", BucketSnapshots)
		}
		// Get's slice is only valid inside the transaction.
		if v := b.Get(s.key); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return ledger.ERPData{}, false, err
	}
	if raw == nil {
		return ledger.ERPData{}, false, nil
	}
	data, err := decode(raw)
	if err != nil {
		return ledger.ERPData{}, false, err
	}
	return data, true, nil
}

func (s *BoltStore) Save(_ context.Context, data ledger.ERPData) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketSnapshots))
		if b == nil {
			return errors.Errorf("bucket %s not found", BucketSnapshots)
		}
		return errors.Wrap(b.Put(s.key, raw), "put snapshot")
	})
}
