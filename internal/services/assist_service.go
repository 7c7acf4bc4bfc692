package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"puntoventa/internal/ai"
	"puntoventa/internal/repos"
)

// ErrAssistDisabled means no API key is configured; endpoints answer 503.
var ErrAssistDisabled = errors.New("assistant is not configured")

// AssistService wraps the LLM helpers. It only ever reads the product and
// sale projections; nothing here mutates stock or sales.
type AssistService struct {
	AI    *ai.Client
	Prods *repos.ProductRepo
	Sales *repos.SaleRepo
}

func NewAssistService(client *ai.Client, prods *repos.ProductRepo, sales *repos.SaleRepo) *AssistService {
	return &AssistService{AI: client, Prods: prods, Sales: sales}
}

func (s *AssistService) catalogContext() (string, error) {
	prods, err := s.Prods.List()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("Available products (code | name | price | stock):\n")
	for _, p := range prods {
		fmt.Fprintf(&b, "- %s | %s | %s | %d\n", p.Code, p.Name, p.Price.String(), p.Stock)
	}
	return b.String(), nil
}

// RecommendProducts suggests up to limit products for a customer based on
// their purchase history and the current catalog.
func (s *AssistService) RecommendProducts(ctx context.Context, customerID string, limit int) (string, error) {
	if !s.AI.Enabled() {
		return "", ErrAssistDisabled
	}
	if limit <= 0 || limit > 10 {
		limit = 3
	}
	catalog, err := s.catalogContext()
	if err != nil {
		return "", err
	}
	purchases, err := s.Sales.Purchases(customerID, 50)
	if err != nil {
		return "", err
	}
	var hist strings.Builder
	if len(purchases) == 0 {
		hist.WriteString("No previous purchases on record.\n")
	} else {
		hist.WriteString("Previous purchases (name x quantity):\n")
		for _, p := range purchases {
			fmt.Fprintf(&hist, "- %s x%d\n", p.Name, p.Quantity)
		}
	}

	prompt := fmt.Sprintf(
		"%s\n%s\nRecommend at most %d in-stock products for this customer. "+
			"For each, give the product name and one short reason. Answer as a plain list.",
		catalog, hist.String(), limit)

	return s.AI.Chat(ctx, []ai.Message{
		{Role: "system", Content: "You are a helpful retail assistant. Only recommend products from the provided catalog."},
		{Role: "user", Content: prompt},
	}, 0.7, 512)
}

// DescribeProduct generates short marketing copy for one product.
func (s *AssistService) DescribeProduct(ctx context.Context, productID string) (string, error) {
	if !s.AI.Enabled() {
		return "", ErrAssistDisabled
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(
		"Write a short, enthusiastic product description (2-3 sentences) for a retail listing.\nProduct: %s (code %s), price %s.",
		p.Name, p.Code, p.Price.String())
	return s.AI.Chat(ctx, []ai.Message{
		{Role: "system", Content: "You write concise retail marketing copy. No invented specifications."},
		{Role: "user", Content: prompt},
	}, 0.9, 256)
}

// Chat answers a free-form support question grounded on the catalog.
func (s *AssistService) Chat(ctx context.Context, question string) (string, error) {
	if !s.AI.Enabled() {
		return "", ErrAssistDisabled
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("empty question")
	}
	catalog, err := s.catalogContext()
	if err != nil {
		return "", err
	}
	return s.AI.Chat(ctx, []ai.Message{
		{Role: "system", Content: "You are the support assistant for a small retail store. Use only the catalog below; " +
			"if you don't know, say so.\n\n" + catalog},
		{Role: "user", Content: question},
	}, 0.7, 512)
}
