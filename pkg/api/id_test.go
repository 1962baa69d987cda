package api

import (
	"testing"
)

func TestNewProductID(t *testing.T) {
	id := NewProductID()
	if !ValidateProductID(id) {
		t.Errorf("NewProductID() = %q, want valid product ID", id)
	}
	if other := NewProductID(); other == id {
		t.Errorf("NewProductID() returned %q twice", id)
	}
}

func TestValidateProductID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "prod_abcdefghijklmnopqrstuvwx", true},
		{"valid mixed case", "prod_AbCdEfGhIjKlMnOpQrStUvWx", true},
		{"valid digits", "prod_123456789012345678901234", true},
		{"wrong prefix", "item_abcdefghijklmnopqrstuvwx", false},
		{"no prefix", "abcdefghijklmnopqrstuvwxyz1234", false},
		{"too short", "prod_abc", false},
		{"too long", "prod_abcdefghijklmnopqrstuvwxy", false},
		{"special chars", "prod_abcdefghijklmnopqrstuv!@", false},
		{"empty", "", false},
		{"prefix only", "prod_", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateProductID(tt.id); got != tt.want {
				t.Errorf("ValidateProductID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
