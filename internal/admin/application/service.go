// Package application 后台管理：商品、分类、订单项与用户
package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/apiclient"
)

// Backoffice 远端管理接口
type Backoffice interface {
	CreateProduct(ctx context.Context, form apiclient.ProductForm) (*apiclient.Response, error)
	UpdateProduct(ctx context.Context, form apiclient.ProductForm) (*apiclient.Response, error)
	DeleteProduct(ctx context.Context, id int64) (*apiclient.Response, error)
	CreateCategory(ctx context.Context, cat apiclient.Category) (*apiclient.Response, error)
	UpdateCategory(ctx context.Context, id int64, cat apiclient.Category) (*apiclient.Response, error)
	DeleteCategory(ctx context.Context, id int64) (*apiclient.Response, error)
	FilterOrderItems(ctx context.Context, f apiclient.OrderFilter) (*apiclient.Response, error)
	UpdateOrderItemStatus(ctx context.Context, itemID int64, status string) (*apiclient.Response, error)
	GetAllUsers(ctx context.Context) (*apiclient.Response, error)
}

// 订单项状态
var OrderStatuses = []string{"PENDING", "CONFIRMED", "SHIPPED", "DELIVERED", "CANCELLED", "RETURNED"}

// AdminService 后台服务
type AdminService struct {
	remote Backoffice
}

// NewAdminService 创建后台服务
func NewAdminService(remote Backoffice) *AdminService {
	return &AdminService{remote: remote}
}

// CreateProduct 创建商品
func (s *AdminService) CreateProduct(ctx context.Context, form apiclient.ProductForm) (string, error) {
	return message(s.remote.CreateProduct(ctx, form))
}

// UpdateProduct 更新商品
func (s *AdminService) UpdateProduct(ctx context.Context, form apiclient.ProductForm) (string, error) {
	return message(s.remote.UpdateProduct(ctx, form))
}

// DeleteProduct 删除商品
func (s *AdminService) DeleteProduct(ctx context.Context, id int64) (string, error) {
	return message(s.remote.DeleteProduct(ctx, id))
}

// CreateCategory 创建分类
func (s *AdminService) CreateCategory(ctx context.Context, cat apiclient.Category) (string, error) {
	return message(s.remote.CreateCategory(ctx, cat))
}

// UpdateCategory 更新分类
func (s *AdminService) UpdateCategory(ctx context.Context, id int64, cat apiclient.Category) (string, error) {
	return message(s.remote.UpdateCategory(ctx, id, cat))
}

// DeleteCategory 删除分类
func (s *AdminService) DeleteCategory(ctx context.Context, id int64) (string, error) {
	return message(s.remote.DeleteCategory(ctx, id))
}

// OrderItemPage 订单项分页结果
type OrderItemPage struct {
	Items        []apiclient.OrderItem `json:"items"`
	TotalPage    int                   `json:"totalPage"`
	TotalElement int64                 `json:"totalElement"`
}

// FilterOrderItems 按条件查询订单项
func (s *AdminService) FilterOrderItems(ctx context.Context, f apiclient.OrderFilter) (*OrderItemPage, error) {
	resp, err := s.remote.FilterOrderItems(ctx, f)
	if err != nil {
		return nil, err
	}
	items := resp.OrderItemList
	if items == nil {
		items = []apiclient.OrderItem{}
	}
	return &OrderItemPage{Items: items, TotalPage: resp.TotalPage, TotalElement: resp.TotalElement}, nil
}

// GetOrderItem 按 id 查询单个订单项
func (s *AdminService) GetOrderItem(ctx context.Context, itemID int64) (*apiclient.OrderItem, error) {
	page, err := s.FilterOrderItems(ctx, apiclient.OrderFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, &apiclient.APIError{Status: 404, Message: "order item not found"}
	}
	return &page.Items[0], nil
}

// UpdateOrderItemStatus 更新订单项状态
func (s *AdminService) UpdateOrderItemStatus(ctx context.Context, itemID int64, status string) (string, error) {
	return message(s.remote.UpdateOrderItemStatus(ctx, itemID, status))
}

// ListUsers 全部用户
func (s *AdminService) ListUsers(ctx context.Context) ([]apiclient.User, error) {
	resp, err := s.remote.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	if resp.UserList == nil {
		return []apiclient.User{}, nil
	}
	return resp.UserList, nil
}

func message(resp *apiclient.Response, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
