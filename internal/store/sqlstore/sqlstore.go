// Package sqlstore implements the catalog store on database/sql, backed by
// SQLite for single-node deployments or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/store"
)

//go:embed schema_sqlite.sql
var schemaSQLite string

//go:embed schema_postgres.sql
var schemaPostgres string

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const columns = "id, name, sku, category, price, quantity, created_at, image"

// Store is a SQL-backed store.Catalog. Catalog order is the insertion
// sequence.
type Store struct {
	db       *sql.DB
	postgres bool
	now      func() time.Time
}

var _ store.Catalog = (*Store)(nil)

// Open connects to the database, verifies the connection and applies the
// schema. The call is idempotent.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		sqlDriver string
		schema    string
	)
	switch driver {
	case DriverSQLite:
		sqlDriver, schema = "sqlite3", schemaSQLite
	case DriverPostgres:
		sqlDriver, schema = "postgres", schemaPostgres
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// single writer avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == DriverSQLite {
		for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
			}
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, postgres: driver == DriverPostgres, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(q string) string {
	if !s.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (model.Product, error) {
	var (
		p       model.Product
		price   string
		created string
	)
	if err := r.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &price, &p.Quantity, &created, &p.Image); err != nil {
		return model.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return model.Product{}, fmt.Errorf("product %s: bad price %q: %w", p.ID, price, err)
	}
	p.Price = d
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return model.Product{}, fmt.Errorf("product %s: bad created_at %q: %w", p.ID, created, err)
	}
	p.CreatedAt = t
	return p, nil
}

// List returns all products in catalog order.
func (s *Store) List(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM products ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return out, nil
}

func (s *Store) get(ctx context.Context, q queryer, where string, arg any) (model.Product, error) {
	row := q.QueryRowContext(ctx, s.rebind("SELECT "+columns+" FROM products WHERE "+where+" = ?"), arg)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("%s %q: %w", where, arg, model.ErrNotFound)
	}
	return p, err
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get returns the product with id or model.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (model.Product, error) {
	return s.get(ctx, s.db, "id", id)
}

// FindBySKU looks a product up by SKU, ignoring case.
func (s *Store) FindBySKU(ctx context.Context, sku string) (model.Product, error) {
	return s.get(ctx, s.db, "sku_key", model.SKUKey(sku))
}

// Create inserts p, assigning an id and creation time when missing.
func (s *Store) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	p.Quantity = max(p.Quantity, 0)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.skuTaken(ctx, tx, p.SKU, ""); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, s.rebind(
			"INSERT INTO products (id, name, sku, sku_key, category, price, quantity, created_at, image) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"),
			p.ID, p.Name, p.SKU, model.SKUKey(p.SKU), p.Category, p.Price.String(), p.Quantity,
			p.CreatedAt.Format(time.RFC3339Nano), p.Image)
		if err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("create %q: %w", p.SKU, err)
	}
	return p, nil
}

// Update replaces the stored fields of p.
func (s *Store) Update(ctx context.Context, p model.Product) (model.Product, error) {
	p.Quantity = max(p.Quantity, 0)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := s.get(ctx, tx, "id", p.ID)
		if err != nil {
			return err
		}
		if err := s.skuTaken(ctx, tx, p.SKU, p.ID); err != nil {
			return err
		}
		p.CreatedAt = cur.CreatedAt
		_, err = tx.ExecContext(ctx, s.rebind(
			"UPDATE products SET name = ?, sku = ?, sku_key = ?, category = ?, price = ?, quantity = ?, image = ? WHERE id = ?"),
			p.Name, p.SKU, model.SKUKey(p.SKU), p.Category, p.Price.String(), p.Quantity, p.Image, p.ID)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("update %q: %w", p.ID, err)
	}
	return p, nil
}

// ApplyQuantityDeltas sets new quantities in one transaction.
func (s *Store) ApplyQuantityDeltas(ctx context.Context, deltas []model.QuantityDelta) ([]model.QuantityChange, error) {
	changes := make([]model.QuantityChange, 0, len(deltas))
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, d := range deltas {
			var ch model.QuantityChange
			row := tx.QueryRowContext(ctx, s.rebind("SELECT id, name, quantity FROM products WHERE id = ?"), d.ProductID)
			if err := row.Scan(&ch.ProductID, &ch.Name, &ch.Before); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("apply deltas %q: %w", d.ProductID, model.ErrNotFound)
				}
				return err
			}
			ch.After = max(d.Quantity, 0)
			if _, err := tx.ExecContext(ctx, s.rebind("UPDATE products SET quantity = ? WHERE id = ?"), ch.After, d.ProductID); err != nil {
				return fmt.Errorf("failed to update quantity: %w", err)
			}
			changes = append(changes, ch)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *Store) skuTaken(ctx context.Context, tx *sql.Tx, sku, self string) error {
	var owner string
	err := tx.QueryRowContext(ctx, s.rebind("SELECT id FROM products WHERE sku_key = ?"), model.SKUKey(sku)).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check sku: %w", err)
	case owner != self:
		return model.ErrDuplicateSKU
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
