package services

import (
	"puntoventa/internal/domain"
	"puntoventa/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) ListProducts() ([]domain.Product, error) {
	return s.Prods.List()
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) CreateProduct(code, name string, price decimal.Decimal, stock int) (domain.Product, error) {
	if price.IsNegative() {
		return domain.Product{}, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if stock < 0 {
		return domain.Product{}, &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	p := domain.Product{ID: uuid.NewString(), Code: code, Name: name, Price: price, Stock: stock}
	if err := s.Prods.Create(p); err != nil {
		if isUniqueViolation(err) {
			return domain.Product{}, &domain.ValidationError{Field: "code", Reason: "already in use"}
		}
		return domain.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(id, name string, price decimal.Decimal, stock int) (domain.Product, error) {
	if price.IsNegative() {
		return domain.Product{}, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if stock < 0 {
		return domain.Product{}, &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	if _, err := s.Prods.Get(id); err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.Update(id, name, price, stock); err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Get(id)
}

// DeleteProduct refuses when any sale line references the product.
func (s *CatalogService) DeleteProduct(id string) error {
	if _, err := s.Prods.Get(id); err != nil {
		return err
	}
	return s.Prods.Delete(id)
}
