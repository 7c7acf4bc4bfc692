package handlers

import (
	"encoding/json"
	"errors"

	"puntoventa/internal/domain"
	applog "puntoventa/internal/log"
	"puntoventa/internal/repos"
	"puntoventa/internal/services"
	"puntoventa/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SaleHandler struct {
	Sales *services.SaleService
	Repo  *repos.SaleRepo
}

type saleLineReq struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type saleReq struct {
	CustomerID string `json:"customer_id"`
	// WalkIn selects the auto-create policy for unknown customers; the
	// default is the strict staff flow.
	WalkIn bool `json:"walk_in"`
	// Total is accepted for wire compatibility and discarded: the server
	// always recomputes it from the lines.
	Total json.RawMessage `json:"total"`
	Lines []saleLineReq   `json:"lines"`
}

// POST /api/v1/sales — the atomic cart commit.
func (h *SaleHandler) Commit(c *fiber.Ctx) error {
	var req saleReq
	if err := c.BodyParser(&req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	policy := services.CustomerStrict
	if req.WalkIn {
		policy = services.CustomerWalkIn
	}
	lines := make([]services.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, services.CartLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	sale, err := h.Sales.Commit(req.CustomerID, policy, lines)
	if err != nil {
		status, body := commitFailure(err)
		if status == fiber.StatusInternalServerError {
			applog.Error(c, "sale.commit.fail", err, nil)
		} else {
			applog.Security(c, "sale.commit.reject", map[string]any{"reason": err.Error()})
		}
		return c.Status(status).JSON(body)
	}

	applog.Audit(c, "sale.commit", map[string]any{
		"number":   sale.Number,
		"customer": sale.CustomerID,
		"total":    sale.Total.String(),
		"lines":    len(sale.Lines),
	})
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// commitFailure maps orchestrator errors onto the API surface without
// leaking storage internals.
func commitFailure(err error) (int, fiber.Map) {
	var ve *domain.ValidationError
	var nf *domain.ProductNotFoundError
	var is *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return fiber.StatusBadRequest, fiber.Map{"error": "cart is empty"}
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, fiber.Map{"error": ve.Error(), "field": ve.Field}
	case errors.As(err, &nf):
		return fiber.StatusNotFound, fiber.Map{"error": "product not found", "product_id": nf.ProductID}
	case errors.Is(err, domain.ErrCustomerNotFound):
		return fiber.StatusNotFound, fiber.Map{"error": "customer not registered"}
	case errors.As(err, &is):
		return fiber.StatusConflict, fiber.Map{
			"error":      "insufficient stock",
			"product_id": is.ProductID,
			"product":    is.Name,
			"requested":  is.Requested,
			"available":  is.Available,
		}
	case errors.Is(err, domain.ErrNumberConflict):
		return fiber.StatusConflict, fiber.Map{"error": "could not allocate a sale number, resubmit"}
	case errors.Is(err, domain.ErrBusy):
		return fiber.StatusServiceUnavailable, fiber.Map{"error": "store is busy, retry shortly"}
	default:
		return fiber.StatusInternalServerError, fiber.Map{"error": "could not commit sale"}
	}
}

// GET /api/v1/sales/:number
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	number := c.Params("number")
	if number == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sale not found"})
	}
	s, err := h.Repo.GetByNumber(number)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sale not found"})
	}
	return c.JSON(s)
}

// GET /api/v1/sales?date=YYYY-MM-DD&customer=substr
func (h *SaleHandler) History(c *fiber.Ctx) error {
	date := ""
	if raw := c.Query("date"); raw != "" {
		d, ok := validate.Date(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "date"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = d
	}
	customer := c.Query("customer")

	rows, err := h.Repo.History(date, customer, 100)
	if err != nil {
		applog.Error(c, "sale.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load sales"})
	}

	// grand total of the filtered set, summed exactly
	grand := decimal.Zero
	for _, r := range rows {
		t, err := decimal.NewFromString(r.Total)
		if err != nil {
			applog.Error(c, "sale.history.total", err, map[string]any{"sale": r.Number})
			continue
		}
		grand = grand.Add(t)
	}

	return c.JSON(fiber.Map{"sales": rows, "count": len(rows), "grand_total": grand})
}
