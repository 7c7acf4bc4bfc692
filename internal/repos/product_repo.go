package repos

import (
	"strings"

	"puntoventa/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, code, name, price, stock, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) List() ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products ORDER BY name`)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) GetByCode(code string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE LOWER(code) = LOWER(?)`, code)
	return p, err
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id, code, name, price, stock, created_at)
	  VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.Code, p.Name, p.Price.String(), p.Stock)
	return err
}

func (r *ProductRepo) Update(id, name string, price decimal.Decimal, stock int) error {
	_, err := r.db.Exec(`
	  UPDATE products SET name = ?, price = ?, stock = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, name, price.String(), stock, id)
	return err
}

// Delete removes a product unless a committed sale line references it.
// The FK RESTRICT on sale_lines is the backstop for the same rule.
func (r *ProductRepo) Delete(id string) error {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM sale_lines WHERE product_id = ?`, id); err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrProductReferenced
	}
	_, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil && strings.Contains(err.Error(), "FOREIGN KEY") {
		return domain.ErrProductReferenced
	}
	return err
}
