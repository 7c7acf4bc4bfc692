package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID        string          `db:"id" json:"id"`
	Code      string          `db:"code" json:"code"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Stock     int             `db:"stock" json:"stock"`
	CreatedAt string          `db:"created_at" json:"-"`
	UpdatedAt string          `db:"updated_at" json:"-"`
}

type Customer struct {
	NationalID string `db:"national_id" json:"national_id"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	Email      string `db:"email" json:"email,omitempty"`
	City       string `db:"city" json:"city,omitempty"`
	CreatedAt  string `db:"created_at" json:"-"`
}

// Sale is immutable once committed; its lines are only ever created with it.
type Sale struct {
	ID         string          `db:"id" json:"id"`
	Number     string          `db:"number" json:"number"`
	Date       string          `db:"sale_date" json:"date"` // YYYY-MM-DD
	CustomerID string          `db:"customer_id" json:"customer_id"`
	Total      decimal.Decimal `db:"total" json:"total"`
	CreatedAt  string          `db:"created_at" json:"created_at"`
	Lines      []SaleLine      `db:"-" json:"lines,omitempty"`
}

type SaleLine struct {
	SaleID    string          `db:"sale_id" json:"-"`
	LineNo    int             `db:"line_no" json:"line_no"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
}
