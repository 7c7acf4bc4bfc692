package handlers

import (
	"errors"

	"puntoventa/internal/domain"
	applog "puntoventa/internal/log"
	"puntoventa/internal/services"
	"puntoventa/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CustomerHandler struct {
	Customers *services.CustomerService
}

// GET /api/v1/customers (admin)
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	out, err := h.Customers.List()
	if err != nil {
		applog.Error(c, "customers.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load customers"})
	}
	return c.JSON(out)
}

type customerReq struct {
	NationalID string `json:"national_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	City       string `json:"city"`
}

// POST /api/v1/customers
func (h *CustomerHandler) Register(c *fiber.Ctx) error {
	var req customerReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	nid, ok := validate.NationalID(req.NationalID)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "national_id"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid national id"})
	}
	first, ok := validate.Name(req.FirstName)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid first name"})
	}
	last, ok := validate.Name(req.LastName)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid last name"})
	}
	email := ""
	if req.Email != "" {
		e, ok := validate.Email(req.Email)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email"})
		}
		email = e
	}

	cust, err := h.Customers.Register(domain.Customer{
		NationalID: nid, FirstName: first, LastName: last, Email: email, City: req.City,
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error()})
		}
		applog.Error(c, "customers.register.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not register customer"})
	}
	applog.Audit(c, "customers.register", map[string]any{"national_id": nid})
	return c.Status(fiber.StatusCreated).JSON(cust)
}
