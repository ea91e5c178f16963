package apiclient

import (
	"bytes"
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// RegisterUser 注册
func (c *Client) RegisterUser(ctx context.Context, u User) (*Response, error) {
	return c.do(ctx, "register_user", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(u).Post("/auth/register")
	})
}

// LoginUser 登录，返回 token 与 role
func (c *Client) LoginUser(ctx context.Context, req LoginRequest) (*Response, error) {
	return c.do(ctx, "login_user", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post("/auth/login")
	})
}

// GetLoggedInUserInfo 当前用户信息与订单历史
func (c *Client) GetLoggedInUserInfo(ctx context.Context) (*Response, error) {
	return c.do(ctx, "logged_in_user_info", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/user/loggedInUserInfo")
	})
}

// GetAllUsers 全部用户（管理员）
func (c *Client) GetAllUsers(ctx context.Context) (*Response, error) {
	return c.do(ctx, "get_all_users", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/user/getAllUsers")
	})
}

// CreateProduct 创建商品（multipart）
func (c *Client) CreateProduct(ctx context.Context, form ProductForm) (*Response, error) {
	return c.do(ctx, "create_product", func(r *resty.Request) (*resty.Response, error) {
		return withProductForm(r, form).Post("/product/createProduct")
	})
}

// UpdateProduct 更新商品（multipart）
func (c *Client) UpdateProduct(ctx context.Context, form ProductForm) (*Response, error) {
	return c.do(ctx, "update_product", func(r *resty.Request) (*resty.Response, error) {
		return withProductForm(r, form).Put("/product/update")
	})
}

func withProductForm(r *resty.Request, form ProductForm) *resty.Request {
	fields := map[string]string{}
	if form.ProductID > 0 {
		fields["productId"] = strconv.FormatInt(form.ProductID, 10)
	}
	if form.CategoryID > 0 {
		fields["categoryId"] = strconv.FormatInt(form.CategoryID, 10)
	}
	if form.Name != "" {
		fields["name"] = form.Name
	}
	if form.Description != "" {
		fields["description"] = form.Description
	}
	if form.Price != "" {
		fields["price"] = form.Price
	}
	r.SetMultipartFormData(fields)
	if form.Image != nil {
		r.SetMultipartField("image", form.Image.Filename, "application/octet-stream", bytes.NewReader(form.Image.Data))
	}
	return r
}

// GetAllProducts 全部商品
func (c *Client) GetAllProducts(ctx context.Context) (*Response, error) {
	return c.do(ctx, "get_all_products", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/product/getAllProducts")
	})
}

// SearchProducts 按名称搜索商品
func (c *Client) SearchProducts(ctx context.Context, searchValue string) (*Response, error) {
	return c.do(ctx, "search_products", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("searchValue", searchValue).Get("/product/searchProduct")
	})
}

// GetProductByID 商品详情
func (c *Client) GetProductByID(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, "get_product", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(id, 10)).Get("/product/getProductById/{id}")
	})
}

// GetProductsByCategory 分类下的商品
func (c *Client) GetProductsByCategory(ctx context.Context, categoryID int64) (*Response, error) {
	return c.do(ctx, "get_products_by_category", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(categoryID, 10)).Get("/product/getProductByCategoryId/{id}")
	})
}

// DeleteProduct 删除商品
func (c *Client) DeleteProduct(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, "delete_product", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(id, 10)).Delete("/product/delete/{id}")
	})
}

// CreateCategory 创建分类
func (c *Client) CreateCategory(ctx context.Context, cat Category) (*Response, error) {
	return c.do(ctx, "create_category", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(cat).Post("/category/createCategory")
	})
}

// GetAllCategories 全部分类
func (c *Client) GetAllCategories(ctx context.Context) (*Response, error) {
	return c.do(ctx, "get_all_categories", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/category/getAllCategories")
	})
}

// UpdateCategory 更新分类
func (c *Client) UpdateCategory(ctx context.Context, id int64, cat Category) (*Response, error) {
	return c.do(ctx, "update_category", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(id, 10)).SetBody(cat).Put("/category/update/{id}")
	})
}

// GetCategoryByID 分类详情
func (c *Client) GetCategoryByID(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, "get_category", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(id, 10)).Get("/category/getCategoryById/{id}")
	})
}

// DeleteCategory 删除分类
func (c *Client) DeleteCategory(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, "delete_category", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(id, 10)).Delete("/category/delete/{id}")
	})
}

// CreateOrder 下单
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Response, error) {
	return c.do(ctx, "create_order", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post("/order/create")
	})
}

// FilterOrderItems 按条件查询订单项（管理员）
func (c *Client) FilterOrderItems(ctx context.Context, f OrderFilter) (*Response, error) {
	return c.do(ctx, "filter_order_items", func(r *resty.Request) (*resty.Response, error) {
		if f.StartDate != nil {
			r.SetQueryParam("startDate", f.StartDate.Format(isoDateTime))
		}
		if f.EndDate != nil {
			r.SetQueryParam("endDate", f.EndDate.Format(isoDateTime))
		}
		if f.Status != "" {
			r.SetQueryParam("status", f.Status)
		}
		if f.ItemID > 0 {
			r.SetQueryParam("itemId", strconv.FormatInt(f.ItemID, 10))
		}
		if f.Page > 0 {
			r.SetQueryParam("page", strconv.Itoa(f.Page))
		}
		if f.Size > 0 {
			r.SetQueryParam("size", strconv.Itoa(f.Size))
		}
		return r.Get("/order/filter")
	})
}

// UpdateOrderItemStatus 更新订单项状态（管理员）
func (c *Client) UpdateOrderItemStatus(ctx context.Context, itemID int64, status string) (*Response, error) {
	return c.do(ctx, "update_order_item_status", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(itemID, 10)).
			SetQueryParam("status", status).
			Put("/order/updateItemStatus/{id}")
	})
}

// SaveAddress 保存收货地址
func (c *Client) SaveAddress(ctx context.Context, addr Address) (*Response, error) {
	return c.do(ctx, "save_address", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(addr).Post("/address/saveAddress")
	})
}

// ISO-8601 本地时间，与远端的 DateTimeFormat.ISO.DATE_TIME 对应
const isoDateTime = "2006-01-02T15:04:05"

