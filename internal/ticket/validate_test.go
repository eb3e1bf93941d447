package ticket

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	longEnough := "0123456789"
	tests := []struct {
		name      string
		draft     Draft
		wantField string
	}{
		{name: "valid minimum", draft: Draft{MerchantName: "AB", Description: longEnough}},
		{name: "merchant too short", draft: Draft{MerchantName: "A", Description: longEnough}, wantField: "merchant"},
		{name: "merchant only spaces", draft: Draft{MerchantName: "   A  ", Description: longEnough}, wantField: "merchant"},
		{name: "merchant empty", draft: Draft{Description: longEnough}, wantField: "merchant"},
		{name: "description too short", draft: Draft{MerchantName: "Acme", Description: "012345678"}, wantField: "description"},
		{name: "description padded", draft: Draft{MerchantName: "Acme", Description: "  012345678  "}, wantField: "description"},
		{name: "merchant checked first", draft: Draft{MerchantName: "A", Description: "short"}, wantField: "merchant"},
		{name: "multibyte counts characters", draft: Draft{MerchantName: "ÄÖ", Description: strings.Repeat("é", 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.draft)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Fatalf("field = %s, want %s", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidationMessages(t *testing.T) {
	err := Validate(Draft{MerchantName: "A"})
	if err == nil || err.Error() != "Merchant name must be at least 2 characters long" {
		t.Fatalf("merchant message = %v", err)
	}
	err = Validate(Draft{MerchantName: "Acme", Description: "short"})
	if err == nil || err.Error() != "Problem description must be at least 10 characters long" {
		t.Fatalf("description message = %v", err)
	}
}
