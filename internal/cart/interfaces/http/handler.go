package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/cart/application"
	"github.com/wyfcoding/storefront/internal/cart/domain"
)

// StoreResolver 返回当前请求会话的购物车
type StoreResolver func(c *gin.Context) *application.Store

// CartResponse 购物车视图
type CartResponse struct {
	Items    []domain.Line `json:"items"`
	Count    int           `json:"count"`
	Subtotal string        `json:"subtotal"`
}

// NewCartResponse 由购物车状态构造视图
func NewCartResponse(c domain.Cart) CartResponse {
	items := c.Lines
	if items == nil {
		items = []domain.Line{}
	}
	return CartResponse{
		Items:    items,
		Count:    c.Count(),
		Subtotal: c.Subtotal().StringFixed(2),
	}
}

type Handler struct {
	stores StoreResolver
}

func NewHandler(stores StoreResolver) *Handler {
	return &Handler{stores: stores}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/cart")
	g.GET("", h.Get)
	g.DELETE("", h.Clear)
	g.POST("/items", h.Add)
	g.POST("/items/:id/increase", h.Increase)
	g.POST("/items/:id/decrease", h.Decrease)
	g.DELETE("/items/:id", h.Remove)
	g.POST("/actions", h.Dispatch)
}

func (h *Handler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, NewCartResponse(h.stores(c).Snapshot()))
}

func (h *Handler) Add(c *gin.Context) {
	var item domain.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, NewCartResponse(h.stores(c).AddToCart(c.Request.Context(), item)))
}

func (h *Handler) Increase(c *gin.Context) {
	c.JSON(http.StatusOK, NewCartResponse(h.stores(c).Increase(c.Request.Context(), c.Param("id"))))
}

func (h *Handler) Decrease(c *gin.Context) {
	c.JSON(http.StatusOK, NewCartResponse(h.stores(c).Decrease(c.Request.Context(), c.Param("id"))))
}

func (h *Handler) Remove(c *gin.Context) {
	c.JSON(http.StatusOK, NewCartResponse(h.stores(c).RemoveItem(c.Request.Context(), c.Param("id"))))
}

func (h *Handler) Clear(c *gin.Context) {
	c.JSON(http.StatusOK, NewCartResponse(h.stores(c).Clear(c.Request.Context())))
}

func (h *Handler) Dispatch(c *gin.Context) {
	var action domain.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, NewCartResponse(h.stores(c).Dispatch(c.Request.Context(), action)))
}
