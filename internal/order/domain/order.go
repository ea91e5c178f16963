// Package domain 结算：把购物车行转换为下单请求
package domain

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	cart "github.com/wyfcoding/storefront/internal/cart/domain"
)

var (
	// ErrEmptyCart 购物车为空
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidProductID 远端要求整数商品 id
	ErrInvalidProductID = errors.New("product id is not an integer")
)

// Item 下单项
type Item struct {
	ProductID int64
	Quantity  int
}

// Order 待提交的订单，总价等于购物车小计
type Order struct {
	TotalPrice decimal.Decimal
	Items      []Item
}

// FromCart 由购物车构造订单
func FromCart(c cart.Cart) (Order, error) {
	if c.Len() == 0 {
		return Order{}, ErrEmptyCart
	}
	items := make([]Item, 0, c.Len())
	for _, l := range c.Lines {
		id, err := strconv.ParseInt(l.ID, 10, 64)
		if err != nil {
			return Order{}, fmt.Errorf("%w: %q", ErrInvalidProductID, l.ID)
		}
		items = append(items, Item{ProductID: id, Quantity: l.Quantity})
	}
	return Order{TotalPrice: c.Subtotal(), Items: items}, nil
}
