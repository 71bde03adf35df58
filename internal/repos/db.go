package repos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx so repos can run inside a transaction.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// unicode_lower folds case with Go's Unicode tables. SQLite's LOWER only knows ASCII.
func init() {
	err := sqlite.RegisterDeterministicScalarFunction("unicode_lower", 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
	if err != nil {
		panic(fmt.Sprintf("register unicode_lower: %v", err))
	}
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	memory := strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
	db, err := sqlx.Open("sqlite", withPragmas(dsn, memory))
	if err != nil {
		return nil, err
	}
	if memory {
		// every new connection to :memory: is a fresh, empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func withPragmas(dsn string, memory bool) string {
	if memory || strings.Contains(dsn, "_pragma") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users (id comes from the identity provider)
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  username TEXT NOT NULL DEFAULT '',
  bio TEXT NOT NULL DEFAULT '',
  profile_image_url TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  zip_code TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  condition TEXT NOT NULL CHECK (condition IN ('new','excellent','good','fair','poor')),
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','sold','draft')),
  image_url TEXT NOT NULL DEFAULT '',
  views INTEGER NOT NULL DEFAULT 0,
  seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_status_created ON products(status, created_at);
CREATE INDEX IF NOT EXISTS idx_products_category      ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_seller        ON products(seller_id);

-- Cart
CREATE TABLE IF NOT EXISTS cart_items(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL REFERENCES users(id),
  total TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id, created_at);

CREATE TABLE IF NOT EXISTS order_items(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  seller_id TEXT NOT NULL REFERENCES users(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  price TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
`
	_, err := db.Exec(schema)
	return err
}

// stamp returns a fixed-width UTC timestamp so text ordering matches time ordering.
func stamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isForeignKey(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

func cols(alias, prefix string, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if prefix == "" {
			parts[i] = alias + "." + f
			continue
		}
		parts[i] = fmt.Sprintf(`%s.%s AS "%s.%s"`, alias, f, prefix, f)
	}
	return strings.Join(parts, ", ")
}

var (
	userFields     = []string{"id", "email", "first_name", "last_name", "username", "bio", "profile_image_url", "address", "city", "state", "zip_code", "created_at", "updated_at"}
	categoryFields = []string{"id", "name", "slug", "description", "created_at"}
	productFields  = []string{"id", "title", "description", "price", "condition", "status", "image_url", "views", "seller_id", "category_id", "created_at", "updated_at"}
)

// setList accumulates "col = ?" assignments for partial updates.
type setList struct {
	parts []string
	args  []any
}

func (s *setList) add(col string, v any) {
	s.parts = append(s.parts, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setList) addString(col string, v *string) {
	if v != nil {
		s.add(col, *v)
	}
}

func (s *setList) empty() bool { return len(s.parts) == 0 }

func (s *setList) String() string { return strings.Join(s.parts, ", ") }
