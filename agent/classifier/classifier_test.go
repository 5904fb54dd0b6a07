package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
)

func completionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status >= 400 {
			http.Error(w, `{"error":{"message":"upstream failure"}}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
					"finish_reason": "stop",
				},
			},
		}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode completion body: %v", err)
		}
	}))
}

func newTestClassifier(t *testing.T, baseURL string) *Classifier {
	t.Helper()
	c, err := New(Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func testCatalog() []contractx.Product {
	return []contractx.Product{
		{ID: "bouquet_roses", Title: "Bouquet of Red Roses", PriceCents: 3500, Stock: 1000},
	}
}

func TestClassifyParsesDecision(t *testing.T) {
	srv := completionServer(t, `{"intent":"purchase","product_id":"bouquet_roses","message":"Roses it is!"}`, http.StatusOK)
	defer srv.Close()

	c := newTestClassifier(t, srv.URL)
	decision, err := c.Classify(context.Background(), "I want roses", testCatalog())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if decision.Intent != contractx.IntentPurchase {
		t.Fatalf("intent = %q, want purchase", decision.Intent)
	}
	if decision.ProductID != "bouquet_roses" {
		t.Fatalf("product id = %q, want bouquet_roses", decision.ProductID)
	}
	if decision.Message != "Roses it is!" {
		t.Fatalf("message = %q", decision.Message)
	}
}

func TestClassifyStripsCodeFences(t *testing.T) {
	content := "```json\n{\"intent\":\"inquiry\",\"product_id\":null,\"message\":\"We deliver daily.\"}\n```"
	srv := completionServer(t, content, http.StatusOK)
	defer srv.Close()

	c := newTestClassifier(t, srv.URL)
	decision, err := c.Classify(context.Background(), "do you deliver?", testCatalog())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if decision.Intent != contractx.IntentInquiry {
		t.Fatalf("intent = %q, want inquiry", decision.Intent)
	}
	if decision.ProductID != "" {
		t.Fatalf("product id = %q, want empty", decision.ProductID)
	}
}

func TestClassifyMalformedContentFallsBack(t *testing.T) {
	srv := completionServer(t, "sure, here is my thinking about your request", http.StatusOK)
	defer srv.Close()

	c := newTestClassifier(t, srv.URL)
	decision, err := c.Classify(context.Background(), "I want roses", testCatalog())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if decision.Intent != contractx.IntentOther {
		t.Fatalf("intent = %q, want other", decision.Intent)
	}
	if decision.Message != FallbackMessage {
		t.Fatalf("message = %q, want fallback", decision.Message)
	}
}

func TestClassifyUnknownIntentFallsBack(t *testing.T) {
	srv := completionServer(t, `{"intent":"refund","message":"sure"}`, http.StatusOK)
	defer srv.Close()

	c := newTestClassifier(t, srv.URL)
	decision, err := c.Classify(context.Background(), "refund please", testCatalog())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if decision.Intent != contractx.IntentOther || decision.Message != FallbackMessage {
		t.Fatalf("decision = %+v, want fallback", decision)
	}
}

func TestClassifyTransportFailureFallsBack(t *testing.T) {
	srv := completionServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	c := newTestClassifier(t, srv.URL)
	decision, err := c.Classify(context.Background(), "I want roses", testCatalog())
	if err != nil {
		t.Fatalf("Classify() error = %v, want graceful fallback", err)
	}
	if decision.Intent != contractx.IntentOther || decision.Message != FallbackMessage {
		t.Fatalf("decision = %+v, want fallback", decision)
	}
}

func TestClassifyCanceledContextReturnsError(t *testing.T) {
	srv := completionServer(t, `{"intent":"other","message":"hi"}`, http.StatusOK)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClassifier(t, srv.URL)
	if _, err := c.Classify(ctx, "I want roses", testCatalog()); err == nil {
		t.Fatal("Classify() with canceled context should error")
	}
}

func TestParseDecisionSanitizesMessage(t *testing.T) {
	content := `{"intent":"other","message":"line one\nline\ttwo\u0007 bell"}`
	decision, ok := parseDecision(content)
	if !ok {
		t.Fatal("parseDecision() should accept the payload")
	}
	if decision.Message != "line one line two bell" {
		t.Fatalf("message = %q", decision.Message)
	}
}

func TestSanitizeMessage(t *testing.T) {
	long := strings.Repeat("ab", 600)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello there", "hello there"},
		{"collapses whitespace", "  a \n\t b  ", "a b"},
		{"drops control characters", "a\x00b\x1bc", "abc"},
		{"caps length", long, long[:maxMessageRunes]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeMessage(tc.in); got != tc.want {
				t.Fatalf("SanitizeMessage(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{APIKey: "k", Model: "m"}, false},
		{"missing key", Config{Model: "m"}, true},
		{"missing model", Config{APIKey: "k"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("Validate() should error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}
