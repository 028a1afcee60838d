package types

import "strings"

// ShippingAddress is the delivery contact attached to an order.
type ShippingAddress struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required,phone"`
	SecondaryPhone string `json:"secondaryPhone,omitempty" validate:"omitempty,phone"`
	Address        string `json:"address" validate:"required"`
	City           string `json:"city" validate:"required"`
	Country        string `json:"country" validate:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (a ShippingAddress) Normalize() ShippingAddress {
	return ShippingAddress{
		FirstName:      strings.TrimSpace(a.FirstName),
		LastName:       strings.TrimSpace(a.LastName),
		Email:          strings.TrimSpace(a.Email),
		Phone:          strings.TrimSpace(a.Phone),
		SecondaryPhone: strings.TrimSpace(a.SecondaryPhone),
		Address:        strings.TrimSpace(a.Address),
		City:           strings.TrimSpace(a.City),
		Country:        strings.TrimSpace(a.Country),
	}
}

// FullName joins first and last name for display.
func (a ShippingAddress) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
