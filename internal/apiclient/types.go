package apiclient

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Response 远端 API 的统一响应信封
type Response struct {
	Status         int         `json:"status"`
	Message        string      `json:"message,omitempty"`
	Token          string      `json:"token,omitempty"`
	Role           string      `json:"role,omitempty"`
	ExpirationTime string      `json:"expirationTime,omitempty"`
	TotalPage      int         `json:"totalPage,omitempty"`
	TotalElement   int64       `json:"totalElement,omitempty"`
	User           *User       `json:"user,omitempty"`
	UserList       []User      `json:"userList,omitempty"`
	Product        *Product    `json:"product,omitempty"`
	ProductList    []Product   `json:"productList,omitempty"`
	Category       *Category   `json:"category,omitempty"`
	CategoryList   []Category  `json:"categoryList,omitempty"`
	OrderItemList  []OrderItem `json:"orderItemList,omitempty"`
}

// APIError 远端返回的错误
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote api status %d", e.Status)
	}
	return fmt.Sprintf("remote api status %d: %s", e.Status, e.Message)
}

// User 用户
type User struct {
	ID            int64       `json:"id,omitempty"`
	Email         string      `json:"email,omitempty"`
	Name          string      `json:"name,omitempty"`
	PhoneNumber   string      `json:"phoneNumber,omitempty"`
	Password      string      `json:"password,omitempty"`
	Role          string      `json:"role,omitempty"`
	Address       *Address    `json:"address,omitempty"`
	OrderItemList []OrderItem `json:"orderItemList,omitempty"`
}

// Address 收货地址
type Address struct {
	ID      int64  `json:"id,omitempty"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zipCode" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Category 分类
type Category struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name" binding:"required"`
}

// Product 商品
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Category    *Category       `json:"category,omitempty"`
}

// OrderItem 订单项
type OrderItem struct {
	ID        int64           `json:"id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
	CreatedAt any             `json:"createdAt,omitempty"`
	Product   *Product        `json:"product,omitempty"`
	User      *User           `json:"user,omitempty"`
}

// OrderItemRequest 下单项
type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Payment 支付信息
type Payment struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
}

// OrderRequest 下单请求
type OrderRequest struct {
	TotalPrice  decimal.Decimal    `json:"totalPrice"`
	Items       []OrderItemRequest `json:"items"`
	PaymentInfo *Payment           `json:"paymentInfo,omitempty"`
}

// ProductForm 创建或更新商品的表单；更新时 ProductID 必填，其余为空则不修改
type ProductForm struct {
	ProductID   int64
	CategoryID  int64
	Name        string
	Description string
	Price       string
	Image       *FileUpload
}

// FileUpload 上传文件
type FileUpload struct {
	Filename string
	Data     []byte
}

// OrderFilter 订单项筛选条件，对应 /order/filter 的查询参数
type OrderFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	ItemID    int64
	Page      int
	Size      int
}
