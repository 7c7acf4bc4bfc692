package repos

import (
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// OpenDB opens the sqlite store. File-backed DSNs get write transactions
// started with BEGIN IMMEDIATE, so a sale commit holds the write lock from
// its first statement instead of upgrading mid-transaction, and a bounded
// busy timeout so lock waits fail fast as a retryable condition.
func OpenDB(dsn string) (*sqlx.DB, error) {
	mem := strings.HasPrefix(dsn, ":memory:")
	if !strings.Contains(dsn, "?") {
		if mem {
			dsn += "?_pragma=foreign_keys(1)"
		} else {
			dsn += "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
		}
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if mem {
		// every pool connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (catalog/customers)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products. Money columns are TEXT on purpose: NUMERIC affinity would let
-- sqlite coerce '129.99' to REAL and lose the exact decimal value.
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  price TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_code ON products(LOWER(code));

-- Customers, keyed by national id
CREATE TABLE IF NOT EXISTS customers(
  national_id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT,
  city TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Sales. The unique index on number is the final guard behind the
-- generator's retry loop.
CREATE TABLE IF NOT EXISTS sales(
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL,
  sale_date TEXT NOT NULL,
  customer_id TEXT NOT NULL REFERENCES customers(national_id) ON DELETE RESTRICT,
  total TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_number ON sales(number);
CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(sale_date);

-- Sale lines keyed by position: the same product may appear on several lines
CREATE TABLE IF NOT EXISTS sale_lines(
  sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE RESTRICT,
  line_no INTEGER NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  PRIMARY KEY (sale_id, line_no)
);
CREATE INDEX IF NOT EXISTS idx_sale_lines_product ON sale_lines(product_id);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog/customers")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(id,code,name,price,stock) VALUES
	  ('p-cafe-250','CAFE-250','Ground Coffee 250g','5990',24),
	  ('p-mate-1kg','MATE-1KG','Yerba Mate 1kg','8490',12),
	  ('p-mug-std','MUG-STD','Ceramic Mug','3990',30),
	  ('p-choc-70','CHOC-70','Dark Chocolate 70%','2490',0)`)

	tx.MustExec(`INSERT INTO customers(national_id,first_name,last_name,email,city) VALUES
	  ('12345678-5','Maria','Rojas','maria@correo.test','Valparaiso'),
	  ('9876543-3','Pedro','Soto','pedro@correo.test','Santiago')`)

	return tx.Commit()
}

// seedUsers ensures one clerk and one admin exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-clerk", "clerk@puntoventa.test", "Clerk", "USER", "Passw0rd!"),
		mk("u-admin", "admin@puntoventa.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
