package handlers

import (
	applog "puntoventa/internal/log"
	"puntoventa/internal/repos"
	"puntoventa/internal/services"
	"puntoventa/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the thin HTML admin: product list, sale history and
// sale detail. All mutation goes through the JSON API.
type AdminHandler struct {
	Catalog  *services.CatalogService
	SaleRepo *repos.SaleRepo
}

// GET /
func (h *AdminHandler) Home(c *fiber.Ctx) error {
	prods, err := h.Catalog.ListProducts()
	if err != nil {
		applog.Error(c, "admin.products.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	return render(c, "home", fiber.Map{"Products": prods})
}

// GET /sales
func (h *AdminHandler) SalesPage(c *fiber.Ctx) error {
	date := ""
	if raw := c.Query("date"); raw != "" {
		if d, ok := validate.Date(raw); ok {
			date = d
		}
	}
	rows, err := h.SaleRepo.History(date, c.Query("customer"), 100)
	if err != nil {
		applog.Error(c, "admin.sales.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load sales"})
	}
	return render(c, "sales", fiber.Map{"Sales": rows, "Date": date})
}

// GET /sale/:number
func (h *AdminHandler) SalePage(c *fiber.Ctx) error {
	number := c.Params("number")
	s, err := h.SaleRepo.GetByNumber(number)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Sale not found"})
	}
	return render(c, "sale", fiber.Map{"Sale": s})
}
