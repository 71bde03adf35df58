package validate

import (
	"strings"
	"testing"

	"marketplace/internal/domain"
)

func TestID(t *testing.T) {
	if _, ok := ID("a1b2-c3_d4"); !ok {
		t.Fatal("expected valid id")
	}
	for _, bad := range []string{"", "  ", "../etc", "a b", "<script>"} {
		if _, ok := ID(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestSubject(t *testing.T) {
	for _, good := range []string{"owner", "auth0|5f1c", "user@example.com", "1234.5678"} {
		if got, ok := Subject(good); !ok || got != good {
			t.Fatalf("expected %q to be accepted, got %q %v", good, got, ok)
		}
	}
	for _, bad := range []string{"", "   ", "a\nb", strings.Repeat("x", 256)} {
		if _, ok := Subject(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestSearch(t *testing.T) {
	if s, ok := Search("  Vintage Lamp "); !ok || s != "Vintage Lamp" {
		t.Fatalf("got %q %v", s, ok)
	}
	if _, ok := Search("bad\x00term"); ok {
		t.Fatal("control characters must be rejected")
	}
}

func TestStructMessages(t *testing.T) {
	err := Struct(domain.PlaceOrder{ShippingAddress: "1 Main St"})
	if err == nil {
		t.Fatal("missing items must fail")
	}
	if got := Message(err); got != "items is required" {
		t.Fatalf("unexpected message %q", got)
	}

	err = Struct(domain.PlaceOrder{
		Items:           []domain.LineItem{{ProductID: "p1", Quantity: 0}},
		ShippingAddress: "1 Main St",
	})
	if got := Message(err); got != "items[0].quantity is required" {
		t.Fatalf("unexpected message %q", got)
	}

	bad := "mint"
	if got := Message(Struct(domain.ProductPatch{Condition: &bad})); got != "condition must be one of: new excellent good fair poor" {
		t.Fatalf("unexpected message %q", got)
	}

	if err := Struct(domain.ProductPatch{}); err != nil {
		t.Fatalf("empty patch is valid, got %v", err)
	}
}
