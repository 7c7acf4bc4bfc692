package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"puntoventa/internal/domain"
	"puntoventa/internal/repos"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CustomerPolicy selects how an unknown customer key is handled at commit
// time. Callers choose explicitly; the two flows are never mixed.
type CustomerPolicy int

const (
	// CustomerStrict rejects carts for unregistered customers (staff flow).
	CustomerStrict CustomerPolicy = iota
	// CustomerWalkIn auto-creates a placeholder record (no-login flow).
	CustomerWalkIn
)

// CartLine is one submitted (product, quantity, unit price) entry. Lines
// are kept in submission order; the same product may appear more than once.
type CartLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// SaleService turns a cart into a committed sale, or rejects it with no
// observable effect. One call is one transaction: stock checks, the sale
// header, its lines and the stock decrements all commit or roll back
// together.
type SaleService struct {
	DB        *sqlx.DB
	Inv       *repos.InventoryRepo
	Sales     *repos.SaleRepo
	Customers *repos.CustomerRepo

	now func() time.Time
}

func NewSaleService(db *sqlx.DB, inv *repos.InventoryRepo, sales *repos.SaleRepo, customers *repos.CustomerRepo) *SaleService {
	return &SaleService{DB: db, Inv: inv, Sales: sales, Customers: customers, now: time.Now}
}

// numberAttempts bounds the sale-number probe loop before falling back to a
// timestamp suffix.
const numberAttempts = 10

func (s *SaleService) Commit(customerKey string, policy CustomerPolicy, lines []CartLine) (domain.Sale, error) {
	if len(lines) == 0 {
		return domain.Sale{}, domain.ErrEmptyCart
	}
	if strings.TrimSpace(customerKey) == "" {
		return domain.Sale{}, &domain.ValidationError{Field: "customer_id", Reason: "required"}
	}
	for i, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return domain.Sale{}, &domain.ValidationError{Field: fmt.Sprintf("lines[%d].product_id", i), Reason: "required"}
		}
		if l.Quantity < 1 {
			return domain.Sale{}, &domain.ValidationError{Field: fmt.Sprintf("lines[%d].quantity", i), Reason: "must be at least 1"}
		}
		if l.UnitPrice.IsNegative() {
			return domain.Sale{}, &domain.ValidationError{Field: fmt.Sprintf("lines[%d].unit_price", i), Reason: "must not be negative"}
		}
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Sale{}, busyOr(err)
	}
	defer func() { _ = tx.Rollback() }()

	cust, err := s.Customers.GetTx(tx, customerKey)
	if errors.Is(err, sql.ErrNoRows) {
		if policy == CustomerStrict {
			return domain.Sale{}, domain.ErrCustomerNotFound
		}
		cust = domain.Customer{NationalID: customerKey, FirstName: "Walk-in", LastName: "Customer", City: "Unspecified"}
		if err := s.Customers.CreateTx(tx, cust); err != nil {
			return domain.Sale{}, busyOr(err)
		}
	} else if err != nil {
		return domain.Sale{}, busyOr(err)
	}

	// Lock and check each line in submission order. Duplicate product lines
	// accumulate demand against the one locked balance via reserved.
	reserved := map[string]int{}
	total := decimal.Zero
	saleLines := make([]domain.SaleLine, 0, len(lines))
	for i, l := range lines {
		snap, err := s.Inv.LockAndGet(tx, l.ProductID)
		if err != nil {
			var nf *domain.ProductNotFoundError
			if errors.As(err, &nf) {
				return domain.Sale{}, err
			}
			return domain.Sale{}, busyOr(err)
		}
		avail := snap.Stock - reserved[l.ProductID]
		if l.Quantity > avail {
			return domain.Sale{}, &domain.InsufficientStockError{
				ProductID: snap.ID,
				Name:      snap.Name,
				Requested: l.Quantity,
				Available: avail,
			}
		}
		reserved[l.ProductID] += l.Quantity

		sub := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(sub)
		saleLines = append(saleLines, domain.SaleLine{
			LineNo:    i + 1,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  sub,
		})
	}

	now := s.now()
	date := now.Format("2006-01-02")
	number, err := s.nextNumber(tx, now, date)
	if err != nil {
		return domain.Sale{}, busyOr(err)
	}

	sale := domain.Sale{
		ID:         uuid.NewString(),
		Number:     number,
		Date:       date,
		CustomerID: cust.NationalID,
		Total:      total,
		CreatedAt:  now.UTC().Format(time.RFC3339),
	}
	if err := s.Sales.Insert(tx, sale); err != nil {
		if isUniqueViolation(err) {
			// generator raced past its probes; the index caught it
			return domain.Sale{}, domain.ErrNumberConflict
		}
		return domain.Sale{}, busyOr(err)
	}
	for i := range saleLines {
		saleLines[i].SaleID = sale.ID
		if err := s.Sales.InsertLine(tx, saleLines[i]); err != nil {
			return domain.Sale{}, busyOr(err)
		}
	}
	// Decrement against the same snapshot the checks used; no re-read.
	for _, l := range saleLines {
		if err := s.Inv.Decrement(tx, l.ProductID, l.Quantity); err != nil {
			return domain.Sale{}, busyOr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Sale{}, busyOr(err)
	}
	sale.Lines = saleLines
	return sale, nil
}

// nextNumber allocates YYYYMMDD-NNNN: a 4-digit 1-based sequence over the
// sales already recorded today. Bounded probes, then a timestamp suffix.
func (s *SaleService) nextNumber(tx *sqlx.Tx, now time.Time, date string) (string, error) {
	prefix := now.Format("20060102")
	count, err := s.Sales.CountForDate(tx, date)
	if err != nil {
		return "", err
	}
	for i := 0; i < numberAttempts; i++ {
		cand := fmt.Sprintf("%s-%04d", prefix, count+i+1)
		taken, err := s.Sales.NumberTaken(tx, cand)
		if err != nil {
			return "", err
		}
		if !taken {
			return cand, nil
		}
	}
	return fmt.Sprintf("%s-%d", prefix, now.Unix()), nil
}

// busyOr maps a sqlite lock-wait timeout to the transient ErrBusy; anything
// else passes through for the generic internal-error surface.
func busyOr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return domain.ErrBusy
	}
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
