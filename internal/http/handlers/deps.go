package handlers

import (
	"puntoventa/internal/ai"
	"puntoventa/internal/config"
	"puntoventa/internal/repos"
	"puntoventa/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	ProductHandler  *ProductHandler
	CustomerHandler *CustomerHandler
	SaleHandler     *SaleHandler
	AssistHandler   *AssistHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	custRepo := repos.NewCustomerRepo(db)
	saleRepo := repos.NewSaleRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	custSvc := services.NewCustomerService(custRepo)
	saleSvc := services.NewSaleService(db, invRepo, saleRepo, custRepo)
	assistSvc := services.NewAssistService(
		ai.NewClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL),
		prodRepo, saleRepo)

	return &Deps{
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CustomerHandler: &CustomerHandler{Customers: custSvc},
		SaleHandler:     &SaleHandler{Sales: saleSvc, Repo: saleRepo},
		AssistHandler:   &AssistHandler{Assist: assistSvc},
		AdminHandler:    &AdminHandler{Catalog: catalogSvc, SaleRepo: saleRepo},
	}
}
