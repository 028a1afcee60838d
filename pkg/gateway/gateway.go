// Package gateway is the storefront's contract with the remote commerce API.
// The API owns identity, inventory, carts and orders; everything here is a
// thin typed call against it.
package gateway

import (
	"context"

	"github.com/angelmondragon/chieftain/pkg/enums"
)

// Public covers the calls that need no session.
type Public interface {
	Login(ctx context.Context, creds Credentials) (AuthResult, error)
	Signup(ctx context.Context, req SignupRequest) (AuthResult, error)
	ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error)
	SearchProducts(ctx context.Context, q ProductQuery) (ProductPage, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	FeaturedProducts(ctx context.Context) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// Authorized covers the calls made on behalf of one signed-in user.
type Authorized interface {
	CurrentUser(ctx context.Context) (User, error)
	Logout(ctx context.Context) error

	FetchCart(ctx context.Context) (CartPayload, error)
	AddLine(ctx context.Context, productID string, quantity int) (CartPayload, error)
	UpdateLine(ctx context.Context, lineID string, quantity int) (CartPayload, error)
	RemoveLine(ctx context.Context, lineID string) (CartPayload, error)
	ClearCart(ctx context.Context) error

	CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status enums.OrderStatus) (Order, error)
}

// Gateway binds a bearer token to get an Authorized view.
type Gateway interface {
	Public
	ForToken(token string) Authorized
}
