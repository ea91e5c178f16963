// Package application 结算服务
package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/apiclient"
	cart "github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// OrderPlacer 远端下单接口
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req apiclient.OrderRequest) (*apiclient.Response, error)
}

// Cart 结算所需的购物车能力
type Cart interface {
	Snapshot() cart.Cart
	Clear(ctx context.Context) cart.Cart
}

// CheckoutService 结算服务
type CheckoutService struct {
	remote OrderPlacer
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(remote OrderPlacer) *CheckoutService {
	return &CheckoutService{remote: remote}
}

// Checkout 以当前购物车下单，成功后清空购物车
func (s *CheckoutService) Checkout(ctx context.Context, c Cart, payment *apiclient.Payment) (*apiclient.Response, error) {
	order, err := domain.FromCart(c.Snapshot())
	if err != nil {
		return nil, err
	}

	req := apiclient.OrderRequest{
		TotalPrice:  order.TotalPrice,
		Items:       make([]apiclient.OrderItemRequest, 0, len(order.Items)),
		PaymentInfo: payment,
	}
	for _, it := range order.Items {
		req.Items = append(req.Items, apiclient.OrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	resp, err := s.remote.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	c.Clear(ctx)
	logger.Info(ctx, "order placed", "items", len(req.Items), "total", req.TotalPrice.String())
	return resp, nil
}
