package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"puntoventa/internal/ai"
	"puntoventa/internal/repos"
	"puntoventa/internal/services"
)

func stubChatServer(t *testing.T, reply string, lastPrompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []ai.Message `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if lastPrompt != nil && len(req.Messages) > 0 {
			*lastPrompt = req.Messages[len(req.Messages)-1].Content
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func TestAssist_DisabledWithoutKey(t *testing.T) {
	db := memdb(t)
	svc := services.NewAssistService(ai.NewClient("", "m", "http://unused"),
		repos.NewProductRepo(db), repos.NewSaleRepo(db))

	_, err := svc.Chat(context.Background(), "anything in stock?")
	if !errors.Is(err, services.ErrAssistDisabled) {
		t.Fatalf("want ErrAssistDisabled, got %v", err)
	}
}

func TestAssist_RecommendIncludesHistoryAndCatalog(t *testing.T) {
	db := memdb(t)

	// give the customer a purchase so the profile isn't empty
	if _, err := newSaleService(db).Commit("12345678-5", services.CustomerStrict,
		[]services.CartLine{{ProductID: "p-cafe-250", Quantity: 2, UnitPrice: dec("5990")}}); err != nil {
		t.Fatal(err)
	}

	var prompt string
	srv := stubChatServer(t, "Try the Ceramic Mug.", &prompt)
	defer srv.Close()

	svc := services.NewAssistService(ai.NewClient("k", "m", srv.URL),
		repos.NewProductRepo(db), repos.NewSaleRepo(db))

	out, err := svc.RecommendProducts(context.Background(), "12345678-5", 3)
	if err != nil {
		t.Fatal(err)
	}
	if out != "Try the Ceramic Mug." {
		t.Fatalf("unexpected reply %q", out)
	}
	if !strings.Contains(prompt, "Ground Coffee 250g x2") {
		t.Fatalf("purchase history missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "MUG-STD") {
		t.Fatalf("catalog missing from prompt:\n%s", prompt)
	}
}

func TestAssist_DescribeUnknownProduct(t *testing.T) {
	db := memdb(t)
	srv := stubChatServer(t, "unused", nil)
	defer srv.Close()

	svc := services.NewAssistService(ai.NewClient("k", "m", srv.URL),
		repos.NewProductRepo(db), repos.NewSaleRepo(db))

	if _, err := svc.DescribeProduct(context.Background(), "p-ghost"); err == nil {
		t.Fatal("want error for unknown product")
	}
}
