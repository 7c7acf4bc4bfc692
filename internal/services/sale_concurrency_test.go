package services_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"puntoventa/internal/domain"
	"puntoventa/internal/repos"
	"puntoventa/internal/services"
)

// filedb opens a real file-backed store so commits contend on the write
// lock the way concurrent requests do in production.
func filedb(t *testing.T) (*services.SaleService, *repos.InventoryRepo) {
	t.Helper()
	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "pos.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	setStock(t, db, "p-cafe-250", 5)
	return newSaleService(db), repos.NewInventoryRepo(db)
}

// Two carts race for 4 of 5 units: exactly one commits, the loser is told
// how much was really left, and stock never goes negative.
func TestCommitSale_NoOversell_TwoCarts(t *testing.T) {
	svc, inv := filedb(t)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Commit("12345678-5", services.CustomerStrict, []services.CartLine{
				{ProductID: "p-cafe-250", Quantity: 4, UnitPrice: dec("5990")},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var committed, rejected int
	for err := range errs {
		if err == nil {
			committed++
			continue
		}
		var is *domain.InsufficientStockError
		if !errors.As(err, &is) {
			t.Fatalf("unexpected failure: %v", err)
		}
		if is.Available != 1 {
			t.Fatalf("loser should see 1 left after the winner, got %d", is.Available)
		}
		rejected++
	}
	if committed != 1 || rejected != 1 {
		t.Fatalf("want 1 commit / 1 reject, got %d / %d", committed, rejected)
	}
	if qty, _ := inv.Qty("p-cafe-250"); qty != 1 {
		t.Fatalf("want stock 1, got %d", qty)
	}
}

// Eight concurrent carts of 2 against stock 5: the decremented sum can
// never exceed stock, and every committed sale gets a distinct number.
func TestCommitSale_NoOversell_ManyCarts(t *testing.T) {
	svc, inv := filedb(t)

	type result struct {
		number string
		err    error
	}
	results := make(chan result, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := svc.Commit("12345678-5", services.CustomerStrict, []services.CartLine{
				{ProductID: "p-cafe-250", Quantity: 2, UnitPrice: dec("5990")},
			})
			results <- result{number: sale.Number, err: err}
		}()
	}
	wg.Wait()
	close(results)

	committed := 0
	seen := map[string]bool{}
	for r := range results {
		if r.err != nil {
			var is *domain.InsufficientStockError
			if !errors.As(r.err, &is) {
				t.Fatalf("unexpected failure: %v", r.err)
			}
			continue
		}
		committed++
		if seen[r.number] {
			t.Fatalf("duplicate sale number %s", r.number)
		}
		seen[r.number] = true
	}

	// 5 units, 2 per cart: exactly two carts can be served
	if committed != 2 {
		t.Fatalf("want 2 commits, got %d", committed)
	}
	qty, err := inv.Qty("p-cafe-250")
	if err != nil {
		t.Fatal(err)
	}
	if qty != 5-2*committed {
		t.Fatalf("stock drifted: want %d, got %d", 5-2*committed, qty)
	}
}
