package handlers

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"

	"puntoventa/internal/domain"
)

func TestCommitFailureStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty cart", domain.ErrEmptyCart, fiber.StatusBadRequest},
		{"validation", &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}, fiber.StatusBadRequest},
		{"unknown product", &domain.ProductNotFoundError{ProductID: "p-ghost"}, fiber.StatusNotFound},
		{"unknown customer", domain.ErrCustomerNotFound, fiber.StatusNotFound},
		{"insufficient stock", &domain.InsufficientStockError{ProductID: "p-x", Requested: 2, Available: 1}, fiber.StatusConflict},
		{"number conflict", domain.ErrNumberConflict, fiber.StatusConflict},
		{"busy store", domain.ErrBusy, fiber.StatusServiceUnavailable},
		{"anything else", errors.New("disk on fire"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, body := commitFailure(tc.err)
		if status != tc.want {
			t.Fatalf("%s: want %d, got %d", tc.name, tc.want, status)
		}
		if body["error"] == nil || body["error"] == "" {
			t.Fatalf("%s: no error message in body", tc.name)
		}
	}
}
