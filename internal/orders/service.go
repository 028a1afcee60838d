// Package orders serves order history and the admin order workflow.
package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/chieftain/pkg/enums"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/logger"
)

// Actor is the signed-in caller.
type Actor interface {
	Client() gateway.Authorized
	IsAdmin() bool
}

// Summary is the admin dashboard headline.
type Summary struct {
	TotalOrders   int                       `json:"totalOrders"`
	PendingOrders int                       `json:"pendingOrders"`
	Revenue       decimal.Decimal           `json:"revenue"`
	TotalProducts int                       `json:"totalProducts"`
	ByStatus      map[enums.OrderStatus]int `json:"byStatus"`
}

type Service struct {
	catalog gateway.Public
	logg    *logger.Logger
}

func NewService(catalog gateway.Public, logg *logger.Logger) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{catalog: catalog, logg: logg}, nil
}

// History lists the caller's orders, newest first. Admins see every order.
func (s *Service) History(ctx context.Context, actor Actor) ([]gateway.Order, error) {
	return actor.Client().ListOrders(ctx)
}

func (s *Service) Get(ctx context.Context, actor Actor, id string) (gateway.Order, error) {
	if strings.TrimSpace(id) == "" {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return actor.Client().GetOrder(ctx, id)
}

// Advance moves an order one step along PLACED, CONFIRMED, PACKED, SHIPPED,
// DELIVERED.
func (s *Service) Advance(ctx context.Context, actor Actor, id string) (gateway.Order, error) {
	order, err := s.adminOrder(ctx, actor, id)
	if err != nil {
		return gateway.Order{}, err
	}
	next, ok := enums.NextOrderStatus(order.Status)
	if !ok {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s and cannot advance", order.Status))
	}
	return s.move(ctx, actor, order, next)
}

// Cancel cancels an order that is not yet delivered or cancelled.
func (s *Service) Cancel(ctx context.Context, actor Actor, id string) (gateway.Order, error) {
	order, err := s.adminOrder(ctx, actor, id)
	if err != nil {
		return gateway.Order{}, err
	}
	if order.Status.IsTerminal() {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s and cannot be cancelled", order.Status))
	}
	return s.move(ctx, actor, order, enums.OrderStatusCancelled)
}

// Summary aggregates every order plus the catalog size. Cancelled orders do
// not count toward revenue.
func (s *Service) Summary(ctx context.Context, actor Actor) (Summary, error) {
	if !actor.IsAdmin() {
		return Summary{}, errForbidden()
	}
	all, err := actor.Client().ListOrders(ctx)
	if err != nil {
		return Summary{}, err
	}
	products, err := s.catalog.ListProducts(ctx, gateway.ProductQuery{Page: 1, Size: 1})
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		TotalOrders:   len(all),
		Revenue:       decimal.Zero,
		TotalProducts: products.Total,
		ByStatus:      map[enums.OrderStatus]int{},
	}
	for _, o := range all {
		out.ByStatus[o.Status]++
		if o.Status.IsPending() {
			out.PendingOrders++
		}
		if o.Status != enums.OrderStatusCancelled {
			out.Revenue = out.Revenue.Add(o.TotalAmount)
		}
	}
	return out, nil
}

func (s *Service) adminOrder(ctx context.Context, actor Actor, id string) (gateway.Order, error) {
	if !actor.IsAdmin() {
		return gateway.Order{}, errForbidden()
	}
	return s.Get(ctx, actor, id)
}

func (s *Service) move(ctx context.Context, actor Actor, order gateway.Order, to enums.OrderStatus) (gateway.Order, error) {
	updated, err := actor.Client().UpdateOrderStatus(ctx, order.ID, to)
	if err != nil {
		return gateway.Order{}, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":    order.ID,
		"from_status": order.Status.String(),
		"to_status":   updated.Status.String(),
	}), "order status updated")
	return updated, nil
}

func errForbidden() error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
}
