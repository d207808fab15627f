/*
Package kv provides SnapshotStores that keep the books as one JSON blob.

PURPOSE:
  The browser application kept its whole state under one local-storage key.
  These stores do the same against a key-value backend: the value is the
  exact backup document produced by bookkeeping.EncodeSnapshot, so a stored
  blob can be copied out and imported anywhere.

BACKENDS:
  BoltStore:  embedded file (go.etcd.io/bbolt), bucket "snapshots"
  RedisStore: shared server (github.com/redis/go-redis/v9)

KEY:
  DataKey ("nexus_erp_data") unless overridden.
*/
package kv

import (
	"github.com/pkg/errors"
	"github.com/warp/books-engine/bookkeeping"
	"github.com/warp/books-engine/ledger"
)

// DataKey is the key the snapshot is stored under.
const DataKey = "nexus_erp_data"

func encode(data ledger.ERPData) ([]byte, error) {
	raw, err := bookkeeping.EncodeSnapshot(data)
	return raw, errors.Wrap(err, "encode snapshot")
}

func decode(raw []byte) (ledger.ERPData, error) {
	data, err := bookkeeping.DecodeSnapshot(raw)
	return data, errors.Wrap(err, "decode stored snapshot")
}
