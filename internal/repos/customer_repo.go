package repos

import (
	"puntoventa/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = `national_id, first_name, last_name, COALESCE(email,'') AS email, COALESCE(city,'') AS city, created_at`

func (r *CustomerRepo) Get(nationalID string) (domain.Customer, error) {
	var c domain.Customer
	err := r.db.Get(&c, `SELECT `+customerCols+` FROM customers WHERE national_id = ?`, nationalID)
	return c, err
}

// GetTx reads a customer inside a sale transaction.
func (r *CustomerRepo) GetTx(tx *sqlx.Tx, nationalID string) (domain.Customer, error) {
	var c domain.Customer
	err := tx.Get(&c, `SELECT `+customerCols+` FROM customers WHERE national_id = ?`, nationalID)
	return c, err
}

func (r *CustomerRepo) List() ([]domain.Customer, error) {
	var out []domain.Customer
	err := r.db.Select(&out, `SELECT `+customerCols+` FROM customers ORDER BY last_name, first_name`)
	return out, err
}

func (r *CustomerRepo) Create(c domain.Customer) error {
	_, err := r.db.Exec(`
	  INSERT INTO customers(national_id, first_name, last_name, email, city, created_at)
	  VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, c.NationalID, c.FirstName, c.LastName, c.Email, c.City)
	return err
}

// CreateTx inserts a walk-in placeholder inside a sale transaction.
func (r *CustomerRepo) CreateTx(tx *sqlx.Tx, c domain.Customer) error {
	_, err := tx.Exec(`
	  INSERT INTO customers(national_id, first_name, last_name, email, city, created_at)
	  VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, c.NationalID, c.FirstName, c.LastName, c.Email, c.City)
	return err
}

func (r *CustomerRepo) Exists(nationalID string) (bool, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM customers WHERE national_id = ?`, nationalID); err != nil {
		return false, err
	}
	return n > 0, nil
}
