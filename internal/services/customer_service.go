package services

import (
	"puntoventa/internal/domain"
	"puntoventa/internal/repos"
)

type CustomerService struct {
	Customers *repos.CustomerRepo
}

func NewCustomerService(customers *repos.CustomerRepo) *CustomerService {
	return &CustomerService{Customers: customers}
}

func (s *CustomerService) Register(c domain.Customer) (domain.Customer, error) {
	exists, err := s.Customers.Exists(c.NationalID)
	if err != nil {
		return domain.Customer{}, err
	}
	if exists {
		return domain.Customer{}, &domain.ValidationError{Field: "national_id", Reason: "already registered"}
	}
	if err := s.Customers.Create(c); err != nil {
		if isUniqueViolation(err) {
			return domain.Customer{}, &domain.ValidationError{Field: "national_id", Reason: "already registered"}
		}
		return domain.Customer{}, err
	}
	return c, nil
}

func (s *CustomerService) List() ([]domain.Customer, error) {
	return s.Customers.List()
}

func (s *CustomerService) Get(nationalID string) (domain.Customer, error) {
	return s.Customers.Get(nationalID)
}
