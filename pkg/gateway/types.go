package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/chieftain/pkg/enums"
	"github.com/angelmondragon/chieftain/pkg/types"
)

type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"imageUrl"`
}

type Product struct {
	ID             string                 `json:"id" yaml:"id"`
	Name           string                 `json:"name" yaml:"name"`
	Description    string                 `json:"description" yaml:"description"`
	Price          decimal.Decimal        `json:"price" yaml:"price"`
	OriginalPrice  *decimal.Decimal       `json:"originalPrice,omitempty" yaml:"originalPrice"`
	ImageURL       string                 `json:"imageUrl" yaml:"imageUrl"`
	Category       Category               `json:"category" yaml:"category"`
	Brand          string                 `json:"brand" yaml:"brand"`
	Compatibility  []string               `json:"compatibility" yaml:"compatibility"`
	Condition      enums.ProductCondition `json:"condition" yaml:"condition"`
	Stock          int                    `json:"stock" yaml:"stock"`
	Ratings        float64                `json:"ratings" yaml:"ratings"`
	ReviewCount    int                    `json:"reviewCount" yaml:"reviewCount"`
	Specifications map[string]string      `json:"specifications" yaml:"specifications"`
	CreatedAt      time.Time              `json:"createdAt" yaml:"createdAt"`
}

// InStock reports whether at least one unit can be added to a cart.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// CartItem is one line of the gateway's cart payload.
type CartItem struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartPayload is the cart exactly as the gateway returns it. TotalItems and
// TotalAmount are informational; the storefront derives its own totals.
type CartPayload struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Items       []CartItem      `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type OrderItem struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

type Order struct {
	ID              string                `json:"id"`
	UserID          string                `json:"userId"`
	OrderNumber     string                `json:"orderNumber"`
	Items           []OrderItem           `json:"items"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
	Status          enums.OrderStatus     `json:"status"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   enums.PaymentStatus   `json:"paymentStatus"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      enums.UserRole `json:"role"`
	Phone     string         `json:"phone"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == enums.UserRoleAdmin
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"required,phone"`
}

// AuthResult is returned by login and signup.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CreateOrderRequest carries only the draft; the gateway prices the order
// from the cart it already holds.
type CreateOrderRequest struct {
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
}

// ProductQuery is the wire form of a product listing request.
type ProductQuery struct {
	Page          int
	Size          int
	SortBy        string
	SortDirection enums.SortDirection
	Categories    []string
	Brands        []string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Conditions    []enums.ProductCondition
	Compatibility []string
	Query         string
}

// ProductPage mirrors the gateway's paged product listing.
type ProductPage struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}
