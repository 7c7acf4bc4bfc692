package handlers

import (
	"errors"

	applog "puntoventa/internal/log"
	"puntoventa/internal/services"
	"puntoventa/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AssistHandler struct {
	Assist *services.AssistService
}

func (h *AssistHandler) fail(c *fiber.Ctx, action string, err error) error {
	if errors.Is(err, services.ErrAssistDisabled) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "assistant is not configured"})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "assistant is unavailable, try again later"})
}

// POST /api/v1/assist/recommendations {customer_id, limit}
func (h *AssistHandler) Recommend(c *fiber.Ctx) error {
	var req struct {
		CustomerID string `json:"customer_id"`
		Limit      int    `json:"limit"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	nid, ok := validate.NationalID(req.CustomerID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid customer id"})
	}
	reply, err := h.Assist.RecommendProducts(c.Context(), nid, req.Limit)
	if err != nil {
		return h.fail(c, "assist.recommend.fail", err)
	}
	return c.JSON(fiber.Map{"reply": reply})
}

// POST /api/v1/assist/description {product_id}
func (h *AssistHandler) Describe(c *fiber.Ctx) error {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	id, ok := validate.ID(req.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	reply, err := h.Assist.DescribeProduct(c.Context(), id)
	if err != nil {
		return h.fail(c, "assist.describe.fail", err)
	}
	return c.JSON(fiber.Map{"reply": reply})
}

// POST /api/v1/assist/chat {message}
func (h *AssistHandler) Chat(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	if len(req.Message) == 0 || len(req.Message) > 2000 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message must be 1-2000 characters"})
	}
	reply, err := h.Assist.Chat(c.Context(), req.Message)
	if err != nil {
		return h.fail(c, "assist.chat.fail", err)
	}
	return c.JSON(fiber.Map{"reply": reply})
}
