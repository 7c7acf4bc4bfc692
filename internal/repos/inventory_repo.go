package repos

import (
	"database/sql"
	"errors"
	"fmt"

	"puntoventa/internal/domain"

	"github.com/jmoiron/sqlx"
)

// InventoryRepo is the single writer of product stock. Both primitives run
// inside a caller-owned transaction; with BEGIN IMMEDIATE that transaction
// already holds the store's write lock, so the snapshot LockAndGet returns
// stays valid until Decrement or rollback.
type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// LockAndGet returns the authoritative stock/price snapshot for a product
// within tx.
func (r *InventoryRepo) LockAndGet(tx *sqlx.Tx, productID string) (domain.Product, error) {
	var p domain.Product
	err := tx.Get(&p, `
		SELECT `+productCols+`
		FROM products WHERE id = ?
	`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: productID}
	}
	return p, err
}

// Decrement subtracts qty within tx. The guarded WHERE never lets stock go
// negative even if a caller skipped the snapshot check.
func (r *InventoryRepo) Decrement(tx *sqlx.Tx, productID string, qty int) error {
	res, err := tx.Exec(`
		UPDATE products
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, productID, qty)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("insufficient stock for %s", productID)
	}
	return nil
}

// Qty is a plain read used by the availability endpoint and tests.
func (r *InventoryRepo) Qty(productID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT stock FROM products WHERE id = ?`, productID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}
