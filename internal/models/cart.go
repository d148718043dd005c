package models

import (
	"fmt"
	"strings"
)

// Cart is the request shape shared by all four order-origination paths. It
// is validated and normalized at the boundary; the assembly pipeline only
// ever sees carts that passed Validate.
type Cart struct {
	OrderType   string        `json:"orderType"`
	TableNumber string        `json:"tableNumber,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Items       []CartItem    `json:"items"`
	Customer    *CartCustomer `json:"customer,omitempty"`
}

// CartItem is one requested line: a menu item, a quantity and optional
// addons.
type CartItem struct {
	MenuID   int64       `json:"menuId"`
	Quantity int         `json:"quantity"`
	Notes    string      `json:"notes,omitempty"`
	Addons   []CartAddon `json:"addons,omitempty"`
}

// CartAddon references an addon item under a cart line. A zero quantity is
// normalized to 1.
type CartAddon struct {
	AddonItemID int64 `json:"addonItemId"`
	Quantity    int   `json:"quantity,omitempty"`
}

// CartCustomer is the optional customer contact attached to a cart.
type CartCustomer struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

const (
	maxCartItems   = 50
	maxLineQty     = 100
	maxNotesLen    = 500
	maxNameLen     = 100
	maxPhoneLen    = 32
	maxTableNumLen = 16
)

// Normalize trims free-text fields and applies defaults (addon quantity 1).
// Call before Validate.
func (c *Cart) Normalize() {
	c.OrderType = strings.ToUpper(strings.TrimSpace(c.OrderType))
	c.TableNumber = strings.TrimSpace(c.TableNumber)
	c.Notes = strings.TrimSpace(c.Notes)
	for i := range c.Items {
		c.Items[i].Notes = strings.TrimSpace(c.Items[i].Notes)
		for j := range c.Items[i].Addons {
			if c.Items[i].Addons[j].Quantity == 0 {
				c.Items[i].Addons[j].Quantity = 1
			}
		}
	}
	if c.Customer != nil {
		c.Customer.Name = strings.TrimSpace(c.Customer.Name)
		c.Customer.Phone = strings.TrimSpace(c.Customer.Phone)
		c.Customer.Email = strings.ToLower(strings.TrimSpace(c.Customer.Email))
	}
}

// Validate checks shape only: enum membership, positive quantities, sane
// lengths. Whether the order type is enabled for the merchant, and whether
// the referenced items exist, is decided inside the transaction.
func (c *Cart) Validate() error {
	if _, ok := ParseOrderType(c.OrderType); !ok {
		return NewValidationError("orderType", "must be one of DINE_IN, TAKEAWAY, DELIVERY")
	}
	if len(c.TableNumber) > maxTableNumLen {
		return NewValidationError("tableNumber", fmt.Sprintf("must not exceed %d characters", maxTableNumLen))
	}
	if len(c.Notes) > maxNotesLen {
		return NewValidationError("notes", fmt.Sprintf("must not exceed %d characters", maxNotesLen))
	}
	if len(c.Items) == 0 {
		return NewValidationError("items", "must not be empty")
	}
	if len(c.Items) > maxCartItems {
		return NewValidationError("items", fmt.Sprintf("must not exceed %d lines", maxCartItems))
	}
	for i, item := range c.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if item.MenuID <= 0 {
			return NewValidationError(prefix+".menuId", "is required")
		}
		if item.Quantity < 1 {
			return NewValidationError(prefix+".quantity", "must be at least 1")
		}
		if item.Quantity > maxLineQty {
			return NewValidationError(prefix+".quantity", fmt.Sprintf("must not exceed %d", maxLineQty))
		}
		if len(item.Notes) > maxNotesLen {
			return NewValidationError(prefix+".notes", fmt.Sprintf("must not exceed %d characters", maxNotesLen))
		}
		for j, addon := range item.Addons {
			ap := fmt.Sprintf("%s.addons[%d]", prefix, j)
			if addon.AddonItemID <= 0 {
				return NewValidationError(ap+".addonItemId", "is required")
			}
			if addon.Quantity < 1 {
				return NewValidationError(ap+".quantity", "must be at least 1")
			}
			if addon.Quantity > maxLineQty {
				return NewValidationError(ap+".quantity", fmt.Sprintf("must not exceed %d", maxLineQty))
			}
		}
	}
	if c.Customer != nil {
		if err := c.Customer.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (cc *CartCustomer) validate() error {
	if len(cc.Name) > maxNameLen {
		return NewValidationError("customer.name", fmt.Sprintf("must not exceed %d characters", maxNameLen))
	}
	if len(cc.Phone) > maxPhoneLen {
		return NewValidationError("customer.phone", fmt.Sprintf("must not exceed %d characters", maxPhoneLen))
	}
	if cc.Email != "" && !strings.Contains(cc.Email, "@") {
		return NewValidationError("customer.email", "is not a valid email address")
	}
	return nil
}
