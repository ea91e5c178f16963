// Package application 商品与分类浏览，数据来自远端 API
package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/apiclient"
)

// Catalog 远端目录接口
type Catalog interface {
	GetAllProducts(ctx context.Context) (*apiclient.Response, error)
	SearchProducts(ctx context.Context, searchValue string) (*apiclient.Response, error)
	GetProductByID(ctx context.Context, id int64) (*apiclient.Response, error)
	GetProductsByCategory(ctx context.Context, categoryID int64) (*apiclient.Response, error)
	GetAllCategories(ctx context.Context) (*apiclient.Response, error)
	GetCategoryByID(ctx context.Context, id int64) (*apiclient.Response, error)
}

// CatalogQueryService 目录查询服务
type CatalogQueryService struct {
	remote Catalog
}

// NewCatalogQueryService 创建目录查询服务
func NewCatalogQueryService(remote Catalog) *CatalogQueryService {
	return &CatalogQueryService{remote: remote}
}

// ListProducts 全部商品
func (s *CatalogQueryService) ListProducts(ctx context.Context) ([]apiclient.Product, error) {
	resp, err := s.remote.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(resp.ProductList), nil
}

// SearchProducts 按名称搜索，空关键字等同列出全部
func (s *CatalogQueryService) SearchProducts(ctx context.Context, q string) ([]apiclient.Product, error) {
	if q == "" {
		return s.ListProducts(ctx)
	}
	resp, err := s.remote.SearchProducts(ctx, q)
	if err != nil {
		return nil, err
	}
	return nonNil(resp.ProductList), nil
}

// GetProduct 商品详情
func (s *CatalogQueryService) GetProduct(ctx context.Context, id int64) (*apiclient.Product, error) {
	resp, err := s.remote.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, &apiclient.APIError{Status: 404, Message: "product not found"}
	}
	return resp.Product, nil
}

// ListCategories 全部分类
func (s *CatalogQueryService) ListCategories(ctx context.Context) ([]apiclient.Category, error) {
	resp, err := s.remote.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	if resp.CategoryList == nil {
		return []apiclient.Category{}, nil
	}
	return resp.CategoryList, nil
}

// GetCategory 分类详情
func (s *CatalogQueryService) GetCategory(ctx context.Context, id int64) (*apiclient.Category, error) {
	resp, err := s.remote.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.Category == nil {
		return nil, &apiclient.APIError{Status: 404, Message: "category not found"}
	}
	return resp.Category, nil
}

// ProductsInCategory 分类下的商品
func (s *CatalogQueryService) ProductsInCategory(ctx context.Context, categoryID int64) ([]apiclient.Product, error) {
	resp, err := s.remote.GetProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return nonNil(resp.ProductList), nil
}

func nonNil(p []apiclient.Product) []apiclient.Product {
	if p == nil {
		return []apiclient.Product{}
	}
	return p
}
