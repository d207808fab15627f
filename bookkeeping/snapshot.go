/*
snapshot.go - Backup file codec

PURPOSE:
  Encodes the whole ERPData as one JSON document and decodes it back.
  Backups written by the browser application (numbers for amounts, ISO
  date strings) decode the same way as backups written by this engine
  (decimal strings).

VALIDATION (all-or-nothing):
  1. The document is a JSON object
  2. It has "products", "transactions" and "ledger" keys, each an array
  3. It decodes into ERPData
  4. Every transaction type is PURCHASE or SALE
  5. Every journal group balances
  Any failure returns *InvalidSnapshotError and no state is produced.
*/
package bookkeeping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/books-engine/ledger"
)

var requiredKeys = []string{"products", "transactions", "ledger"}

// DecodeSnapshot parses and validates a backup.
func DecodeSnapshot(raw []byte) (ledger.ERPData, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return ledger.ERPData{}, &InvalidSnapshotError{Reason: "not a JSON object", Cause: err}
	}
	for _, key := range requiredKeys {
		value, ok := top[key]
		if !ok {
			return ledger.ERPData{}, &InvalidSnapshotError{Reason: fmt.Sprintf("missing %q", key)}
		}
		if trimmed := bytes.TrimSpace(value); len(trimmed) == 0 || trimmed[0] != '[' {
			return ledger.ERPData{}, &InvalidSnapshotError{Reason: fmt.Sprintf("%q is not an array", key)}
		}
	}

	var data ledger.ERPData
	if err := json.Unmarshal(raw, &data); err != nil {
		return ledger.ERPData{}, &InvalidSnapshotError{Reason: "malformed content", Cause: err}
	}
	for _, tx := range data.Transactions {
		if !tx.Type.Valid() {
			return ledger.ERPData{}, &InvalidSnapshotError{Reason: fmt.Sprintf("transaction %s has unknown type %q", tx.ID, tx.Type)}
		}
	}
	if err := ledger.CheckBalanced(data.Ledger); err != nil {
		return ledger.ERPData{}, &InvalidSnapshotError{Reason: "journal does not balance", Cause: err}
	}

	if data.UserProfile == nil {
		data.UserProfile = &ledger.UserProfile{}
	}
	return data.Clone(), nil
}

// EncodeSnapshot writes indented JSON with every collection present.
func EncodeSnapshot(data ledger.ERPData) ([]byte, error) {
	out := data.Clone()
	if out.UserProfile == nil {
		out.UserProfile = &ledger.UserProfile{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// ExportFilename names a backup taken at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("business_manager_backup_%s.json", t.Format("2006-01-02"))
}
