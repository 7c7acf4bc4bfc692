package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"puntoventa/internal/config"
	"puntoventa/internal/http/handlers"
	"puntoventa/internal/repos"
	"puntoventa/internal/services"
)

// newAPIApp wires the JSON surface against the seeded in-memory store.
func newAPIApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())

	deps := handlers.NewDeps(db, config.Config{}, authSvc)
	api := app.Group("/api/v1")
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Get)
	api.Get("/customers", handlers.RequireAdmin(authSvc), deps.CustomerHandler.List)
	api.Post("/customers", deps.CustomerHandler.Register)
	api.Post("/sales", deps.SaleHandler.Commit)
	api.Get("/sales", deps.SaleHandler.History)
	api.Get("/sales/:number", deps.SaleHandler.Get)

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	b, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(b, &out)
	return resp.StatusCode, out
}

func TestSaleAPI_CommitAndRead(t *testing.T) {
	app, _ := newAPIApp(t)

	status, body := postJSON(t, app, "/api/v1/sales", map[string]any{
		"customer_id": "12345678-5",
		"total":       "999999", // client totals are never trusted
		"lines": []map[string]any{
			{"product_id": "p-cafe-250", "quantity": 2, "unit_price": "5990"},
			{"product_id": "p-mug-std", "quantity": 1, "unit_price": "3990"},
		},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("want 201, got %d: %v", status, body)
	}
	if body["total"] != "15970" {
		t.Fatalf("server must recompute the total, got %v", body["total"])
	}
	number, _ := body["number"].(string)
	if number == "" {
		t.Fatalf("no sale number in response: %v", body)
	}

	// committed sales read back identically (immutable)
	read := func() []byte {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sales/"+number, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("want 200 reading sale, got %d", resp.StatusCode)
		}
		b, _ := io.ReadAll(resp.Body)
		return b
	}
	first, second := read(), read()
	if !bytes.Equal(first, second) {
		t.Fatalf("repeated reads differ:\n%s\n%s", first, second)
	}
}

func TestSaleAPI_ErrorStatuses(t *testing.T) {
	app, db := newAPIApp(t)
	if _, err := db.Exec(`UPDATE products SET stock=1 WHERE id='p-mate-1kg'`); err != nil {
		t.Fatal(err)
	}

	// empty cart
	status, _ := postJSON(t, app, "/api/v1/sales", map[string]any{
		"customer_id": "12345678-5", "lines": []any{},
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("empty cart: want 400, got %d", status)
	}

	// unknown product
	status, _ = postJSON(t, app, "/api/v1/sales", map[string]any{
		"customer_id": "12345678-5",
		"lines":       []map[string]any{{"product_id": "p-ghost", "quantity": 1, "unit_price": "1"}},
	})
	if status != fiber.StatusNotFound {
		t.Fatalf("unknown product: want 404, got %d", status)
	}

	// strict flow, unknown customer
	status, _ = postJSON(t, app, "/api/v1/sales", map[string]any{
		"customer_id": "99999999-9",
		"lines":       []map[string]any{{"product_id": "p-cafe-250", "quantity": 1, "unit_price": "5990"}},
	})
	if status != fiber.StatusNotFound {
		t.Fatalf("strict unknown customer: want 404, got %d", status)
	}

	// insufficient stock carries the line detail
	status, body := postJSON(t, app, "/api/v1/sales", map[string]any{
		"customer_id": "12345678-5",
		"lines":       []map[string]any{{"product_id": "p-mate-1kg", "quantity": 3, "unit_price": "8490"}},
	})
	if status != fiber.StatusConflict {
		t.Fatalf("insufficient stock: want 409, got %d", status)
	}
	if body["available"] != float64(1) || body["requested"] != float64(3) {
		t.Fatalf("missing stock detail: %v", body)
	}

	// malformed history date filter
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sales?date=yesterday", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad date: want 400, got %d", resp.StatusCode)
	}
}

func TestSaleAPI_WalkInFlow(t *testing.T) {
	app, db := newAPIApp(t)

	status, body := postJSON(t, app, "/api/v1/sales", map[string]any{
		"customer_id": "33333333-3",
		"walk_in":     true,
		"lines":       []map[string]any{{"product_id": "p-mug-std", "quantity": 1, "unit_price": "3990"}},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("walk-in commit: want 201, got %d: %v", status, body)
	}

	var first string
	if err := db.Get(&first, `SELECT first_name FROM customers WHERE national_id='33333333-3'`); err != nil {
		t.Fatalf("placeholder customer missing: %v", err)
	}
	if first != "Walk-in" {
		t.Fatalf("unexpected placeholder name %q", first)
	}
}

func TestCustomerAPI_RegisterValidation(t *testing.T) {
	app, _ := newAPIApp(t)

	status, _ := postJSON(t, app, "/api/v1/customers", map[string]any{
		"national_id": "not-an-id", "first_name": "Ana", "last_name": "Perez",
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("bad national id: want 400, got %d", status)
	}

	status, _ = postJSON(t, app, "/api/v1/customers", map[string]any{
		"national_id": "22222222-2", "first_name": "Ana", "last_name": "Perez", "city": "Santiago",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register: want 201, got %d", status)
	}

	status, _ = postJSON(t, app, "/api/v1/customers", map[string]any{
		"national_id": "22222222-2", "first_name": "Ana", "last_name": "Perez",
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("duplicate: want 400, got %d", status)
	}
}

func TestAdminAPI_RequiresSession(t *testing.T) {
	app, _ := newAPIApp(t)

	// no session cookie: bounced to login
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/customers", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("want 302 redirect, got %d", resp.StatusCode)
	}

	// bogus session cookie: denied
	req := httptest.NewRequest("GET", "/api/v1/customers", nil)
	req.Header.Set("Cookie", "sid=not-a-session")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("want 403, got %d", resp.StatusCode)
	}
}
