package repos

import (
	"puntoventa/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SaleRepo struct{ db *sqlx.DB }

func NewSaleRepo(db *sqlx.DB) *SaleRepo { return &SaleRepo{db: db} }

// ---------- History list row (used by /sales and the admin page) ----------
type SaleSummary struct {
	ID         string `db:"id" json:"id"`
	Number     string `db:"number" json:"number"`
	Date       string `db:"sale_date" json:"date"`
	CustomerID string `db:"customer_id" json:"customer_id"`
	Customer   string `db:"customer" json:"customer"`
	Total      string `db:"total" json:"total"`
	CreatedAt  string `db:"created_at" json:"created_at"`
}

// ---------- Commit-transaction primitives ----------

// CountForDate counts sales already recorded for a calendar date, within tx.
// It seeds the 1-based daily sequence of the sale number.
func (r *SaleRepo) CountForDate(tx *sqlx.Tx, date string) (int, error) {
	var n int
	err := tx.Get(&n, `SELECT COUNT(*) FROM sales WHERE sale_date = ?`, date)
	return n, err
}

// NumberTaken probes a candidate number, within tx.
func (r *SaleRepo) NumberTaken(tx *sqlx.Tx, number string) (bool, error) {
	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM sales WHERE number = ?`, number); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert writes the sale header. The unique index on number is the last
// guard against a generator race.
func (r *SaleRepo) Insert(tx *sqlx.Tx, s domain.Sale) error {
	_, err := tx.Exec(`
	  INSERT INTO sales(id, number, sale_date, customer_id, total, created_at)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, s.ID, s.Number, s.Date, s.CustomerID, s.Total.String(), s.CreatedAt)
	return err
}

// InsertLine writes a single line item alongside its sale.
func (r *SaleRepo) InsertLine(tx *sqlx.Tx, l domain.SaleLine) error {
	_, err := tx.Exec(`
	  INSERT INTO sale_lines(sale_id, line_no, product_id, quantity, unit_price, subtotal)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, l.SaleID, l.LineNo, l.ProductID, l.Quantity, l.UnitPrice.String(), l.Subtotal.String())
	return err
}

// ---------- Read model ----------

func (r *SaleRepo) GetByNumber(number string) (domain.Sale, error) {
	var s domain.Sale
	if err := r.db.Get(&s, `
		SELECT id, number, sale_date, customer_id, total, created_at
		FROM sales WHERE number = ?
	`, number); err != nil {
		return domain.Sale{}, err
	}
	if err := r.db.Select(&s.Lines, `
		SELECT sale_id, line_no, product_id, quantity, unit_price, subtotal
		FROM sale_lines
		WHERE sale_id = ?
		ORDER BY line_no
	`, s.ID); err != nil {
		return domain.Sale{}, err
	}
	return s, nil
}

// History lists sales newest-first, optionally filtered by exact date and
// by customer national-id substring.
func (r *SaleRepo) History(date, customer string, limit int) ([]SaleSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	where := `1=1`
	args := []any{}
	if date != "" {
		where += ` AND s.sale_date = ?`
		args = append(args, date)
	}
	if customer != "" {
		where += ` AND s.customer_id LIKE ?`
		args = append(args, "%"+customer+"%")
	}
	args = append(args, limit)

	var out []SaleSummary
	err := r.db.Select(&out, `
		SELECT s.id, s.number, s.sale_date, s.customer_id,
		       (c.first_name || ' ' || c.last_name) AS customer,
		       s.total, s.created_at
		FROM sales s
		JOIN customers c ON c.national_id = s.customer_id
		WHERE `+where+`
		ORDER BY s.sale_date DESC, s.created_at DESC
		LIMIT ?
	`, args...)
	return out, err
}

// PurchaseRow is one line purchase for a customer, used by the
// recommendation helper to build a purchase profile.
type PurchaseRow struct {
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Quantity  int    `db:"quantity"`
}

func (r *SaleRepo) Purchases(customerID string, limit int) ([]PurchaseRow, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []PurchaseRow
	err := r.db.Select(&out, `
		SELECT sl.product_id, p.name, sl.quantity
		FROM sale_lines sl
		JOIN sales s ON s.id = sl.sale_id
		JOIN products p ON p.id = sl.product_id
		WHERE s.customer_id = ?
		ORDER BY s.created_at DESC
		LIMIT ?
	`, customerID, limit)
	return out, err
}
