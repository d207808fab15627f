package bookkeeping

import (
	"context"

	"github.com/warp/books-engine/ledger"
)

// SnapshotStore persists the whole ERPData as one unit.
// Implementations live under store/.
type SnapshotStore interface {
	// Load returns the saved snapshot. found is false when nothing has been
	// saved yet.
	Load(ctx context.Context) (data ledger.ERPData, found bool, err error)

	// Save replaces the saved snapshot.
	Save(ctx context.Context, data ledger.ERPData) error
}

// discardStore keeps nothing. Used when Books is opened without a store.
type discardStore struct{}

func (discardStore) Load(context.Context) (ledger.ERPData, bool, error) {
	return ledger.ERPData{}, false, nil
}

func (discardStore) Save(context.Context, ledger.ERPData) error { return nil }
