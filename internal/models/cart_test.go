package models

import (
	"strings"
	"testing"
)

func validCart() *Cart {
	return &Cart{
		OrderType: "DINE_IN",
		Items: []CartItem{
			{MenuID: 1, Quantity: 2, Addons: []CartAddon{{AddonItemID: 7, Quantity: 1}}},
			{MenuID: 2, Quantity: 1},
		},
	}
}

func TestCartValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Cart)
		wantErr string
	}{
		{
			name:   "valid dine-in cart",
			mutate: func(c *Cart) {},
		},
		{
			name:   "valid takeaway cart",
			mutate: func(c *Cart) { c.OrderType = "TAKEAWAY" },
		},
		{
			name:    "unknown order type",
			mutate:  func(c *Cart) { c.OrderType = "DRIVE_THROUGH" },
			wantErr: "orderType",
		},
		{
			name:    "empty items",
			mutate:  func(c *Cart) { c.Items = nil },
			wantErr: "items",
		},
		{
			name:    "zero quantity",
			mutate:  func(c *Cart) { c.Items[0].Quantity = 0 },
			wantErr: "items[0].quantity",
		},
		{
			name:    "negative quantity",
			mutate:  func(c *Cart) { c.Items[1].Quantity = -3 },
			wantErr: "items[1].quantity",
		},
		{
			name:    "missing menu id",
			mutate:  func(c *Cart) { c.Items[0].MenuID = 0 },
			wantErr: "items[0].menuId",
		},
		{
			name:    "missing addon id",
			mutate:  func(c *Cart) { c.Items[0].Addons[0].AddonItemID = 0 },
			wantErr: "items[0].addons[0].addonItemId",
		},
		{
			name:    "negative addon quantity",
			mutate:  func(c *Cart) { c.Items[0].Addons[0].Quantity = -1 },
			wantErr: "items[0].addons[0].quantity",
		},
		{
			name:    "oversized notes",
			mutate:  func(c *Cart) { c.Notes = strings.Repeat("x", maxNotesLen+1) },
			wantErr: "notes",
		},
		{
			name:    "bad customer email",
			mutate:  func(c *Cart) { c.Customer = &CartCustomer{Email: "not-an-email"} },
			wantErr: "customer.email",
		},
		{
			name:   "customer with valid email",
			mutate: func(c *Cart) { c.Customer = &CartCustomer{Name: "Ava", Email: "ava@example.com"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := validCart()
			tt.mutate(cart)
			cart.Normalize()
			err := cart.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid cart, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error on %s, got nil", tt.wantErr)
			}
			ve, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if ve.Field != tt.wantErr {
				t.Fatalf("expected field %q, got %q", tt.wantErr, ve.Field)
			}
		})
	}
}

func TestCartNormalizeDefaultsAddonQuantity(t *testing.T) {
	cart := &Cart{
		OrderType: " dine_in ",
		Items: []CartItem{
			{MenuID: 1, Quantity: 1, Addons: []CartAddon{{AddonItemID: 5}}},
		},
	}
	cart.Normalize()

	if cart.OrderType != "DINE_IN" {
		t.Fatalf("expected normalized order type DINE_IN, got %q", cart.OrderType)
	}
	if got := cart.Items[0].Addons[0].Quantity; got != 1 {
		t.Fatalf("expected addon quantity defaulted to 1, got %d", got)
	}
	if err := cart.Validate(); err != nil {
		t.Fatalf("normalized cart should validate, got %v", err)
	}
}
