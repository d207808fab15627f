/*
Package sqlite provides a SQLite-backed SnapshotStore.

PURPOSE:
  Persists the books as relational tables so they can be inspected with
  any SQL tool, while still behaving as one snapshot: Save replaces
  everything inside a single SQL transaction and Load rebuilds the
  ERPData in its original order.

KEY TABLES:
  user_profile:   Single row (id = 1); its presence means "saved"
  products:       Inventory, decimal columns as TEXT
  transactions:   Purchases and sales
  ledger_entries: Journal lines

ORDER:
  Each table has a position column. Load orders by it so the snapshot
  round-trips exactly, including trial-balance row order.

WAL MODE:
  Opened with WAL (Write-Ahead Logging) and foreign keys on.

USAGE:
  store, err := sqlite.New("./data/books.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  books, err := bookkeeping.Open(ctx, store)

MIGRATION:
  Versioned SQL files under migrations/ are embedded and applied on New()
  with golang-migrate.

SEE ALSO:
  - bookkeeping/store.go: SnapshotStore interface
  - store/memory: In-memory implementation for testing
  - store/kv: Blob implementations
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/warp/books-engine/ledger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements bookkeeping.SnapshotStore using SQLite.
type Store struct {
	db *sqlx.DB
}

// New opens (creating if needed) the database at dbPath and migrates it.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// One connection: keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	if err := migrateUp(db.DB); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrateUp applies pending migrations. The migrate instance is not closed:
// closing it would close db.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return errors.Wrap(err, "migration setup")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

// =============================================================================
// ROW TYPES
// =============================================================================

type profileRow struct {
	Name         string `db:"name"`
	BusinessName string `db:"business_name"`
	Location     string `db:"location"`
	Role         string `db:"role"`
	Industry     string `db:"industry"`
	SavedAt      string `db:"saved_at"`
}

type productRow struct {
	Position     int             `db:"position"`
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	SKU          string          `db:"sku"`
	Quantity     decimal.Decimal `db:"quantity"`
	AverageCost  decimal.Decimal `db:"average_cost"`
	SellingPrice decimal.Decimal `db:"selling_price"`
}

type transactionRow struct {
	Position    int             `db:"position"`
	ID          string          `db:"id"`
	Type        string          `db:"tx_type"`
	Date        string          `db:"tx_date"`
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    decimal.Decimal `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Party       string          `db:"party"`
}

type entryRow struct {
	Position      int             `db:"position"`
	ID            string          `db:"id"`
	TransactionID string          `db:"transaction_id"`
	Date          string          `db:"entry_date"`
	Description   string          `db:"description"`
	Account       string          `db:"account"`
	Debit         decimal.Decimal `db:"debit"`
	Credit        decimal.Decimal `db:"credit"`
}

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

// Save replaces the stored snapshot atomically.
func (s *Store) Save(ctx context.Context, data ledger.ERPData) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"ledger_entries", "transactions", "products", "user_profile"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return errors.Wrapf(err, "clear %s", table)
			}
		}

		profile := ledger.UserProfile{}
		if data.UserProfile != nil {
			profile = *data.UserProfile
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO user_profile (id, name, business_name, location, role, industry, saved_at)
			VALUES (1, :name, :business_name, :location, :role, :industry, :saved_at)`,
			profileRow{
				Name: profile.Name, BusinessName: profile.BusinessName, Location: profile.Location,
				Role: profile.Role, Industry: profile.Industry,
				SavedAt: time.Now().UTC().Format(time.RFC3339Nano),
			}); err != nil {
			return errors.Wrap(err, "insert profile")
		}

		for i, p := range data.Products {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO products (position, id, name, sku, quantity, average_cost, selling_price)
				VALUES (:position, :id, :name, :sku, :quantity, :average_cost, :selling_price)`,
				productRow{
					Position: i, ID: p.ID, Name: p.Name, SKU: p.SKU,
					Quantity: p.Quantity, AverageCost: p.AverageCost, SellingPrice: p.SellingPrice,
				}); err != nil {
				return errors.Wrapf(err, "insert product %s", p.ID)
			}
		}

		for i, t := range data.Transactions {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO transactions (position, id, tx_type, tx_date, product_id, product_name, quantity, unit_price, total_amount, party)
				VALUES (:position, :id, :tx_type, :tx_date, :product_id, :product_name, :quantity, :unit_price, :total_amount, :party)`,
				transactionRow{
					Position: i, ID: t.ID, Type: string(t.Type), Date: formatTime(t.Date),
					ProductID: t.ProductID, ProductName: t.ProductName,
					Quantity: t.Quantity, UnitPrice: t.UnitPrice, TotalAmount: t.TotalAmount, Party: t.Party,
				}); err != nil {
				return errors.Wrapf(err, "insert transaction %s", t.ID)
			}
		}

		for i, e := range data.Ledger {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO ledger_entries (position, id, transaction_id, entry_date, description, account, debit, credit)
				VALUES (:position, :id, :transaction_id, :entry_date, :description, :account, :debit, :credit)`,
				entryRow{
					Position: i, ID: e.ID, TransactionID: e.TransactionID, Date: formatTime(e.Date),
					Description: e.Description, Account: e.Account, Debit: e.Debit, Credit: e.Credit,
				}); err != nil {
				return errors.Wrapf(err, "insert ledger entry %s", e.ID)
			}
		}
		return nil
	})
}

// Load rebuilds the stored snapshot. found is false for a fresh database.
func (s *Store) Load(ctx context.Context) (ledger.ERPData, bool, error) {
	var profile profileRow
	err := s.db.GetContext(ctx, &profile,
		`SELECT name, business_name, location, role, industry, saved_at FROM user_profile WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ERPData{}, false, nil
	}
	if err != nil {
		return ledger.ERPData{}, false, errors.Wrap(err, "load profile")
	}

	data := ledger.Empty()
	data.UserProfile = &ledger.UserProfile{
		Name: profile.Name, BusinessName: profile.BusinessName, Location: profile.Location,
		Role: profile.Role, Industry: profile.Industry,
	}

	var products []productRow
	if err := s.db.SelectContext(ctx, &products, `SELECT * FROM products ORDER BY position`); err != nil {
		return ledger.ERPData{}, false, errors.Wrap(err, "load products")
	}
	for _, p := range products {
		data.Products = append(data.Products, ledger.Product{
			ID: p.ID, Name: p.Name, SKU: p.SKU,
			Quantity: p.Quantity, AverageCost: p.AverageCost, SellingPrice: p.SellingPrice,
		})
	}

	var txs []transactionRow
	if err := s.db.SelectContext(ctx, &txs, `SELECT * FROM transactions ORDER BY position`); err != nil {
		return ledger.ERPData{}, false, errors.Wrap(err, "load transactions")
	}
	for _, t := range txs {
		date, err := parseTime(t.Date)
		if err != nil {
			return ledger.ERPData{}, false, errors.Wrapf(err, "transaction %s date", t.ID)
		}
		data.Transactions = append(data.Transactions, ledger.Transaction{
			ID: t.ID, Type: ledger.TransactionType(t.Type), Date: date,
			ProductID: t.ProductID, ProductName: t.ProductName,
			Quantity: t.Quantity, UnitPrice: t.UnitPrice, TotalAmount: t.TotalAmount, Party: t.Party,
		})
	}

	var entries []entryRow
	if err := s.db.SelectContext(ctx, &entries, `SELECT * FROM ledger_entries ORDER BY position`); err != nil {
		return ledger.ERPData{}, false, errors.Wrap(err, "load ledger")
	}
	for _, e := range entries {
		date, err := parseTime(e.Date)
		if err != nil {
			return ledger.ERPData{}, false, errors.Wrapf(err, "ledger entry %s date", e.ID)
		}
		data.Ledger = append(data.Ledger, ledger.LedgerEntry{
			ID: e.ID, TransactionID: e.TransactionID, Date: date,
			Description: e.Description, Account: e.Account, Debit: e.Debit, Credit: e.Credit,
		})
	}
	return data, true, nil
}

// =============================================================================
// TRANSACTIONS & HELPERS
// =============================================================================

// WithTx runs fn inside a SQL transaction, rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// Counts reports the number of stored rows per table.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int)
	for _, table := range []string{"products", "transactions", "ledger_entries"} {
		var n int
		if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, errors.Wrapf(err, "count %s", table)
		}
		out[table] = n
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
