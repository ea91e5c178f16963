package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/internal/admin/application"
	"github.com/wyfcoding/storefront/internal/apiclient"
	"github.com/wyfcoding/storefront/pkg/utils"
)

const maxImageSize = 8 << 20

type Handler struct {
	svc *application.AdminService
}

func NewHandler(svc *application.AdminService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mw 通常是 RequireAdmin
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	g := r.Group("/admin", mw...)

	g.POST("/products", h.CreateProduct)
	g.PUT("/products", h.UpdateProduct)
	g.DELETE("/products/:id", h.DeleteProduct)

	g.POST("/categories", h.CreateCategory)
	g.PUT("/categories/:id", h.UpdateCategory)
	g.DELETE("/categories/:id", h.DeleteCategory)

	g.GET("/orders", h.FilterOrders)
	g.GET("/orders/:id", h.GetOrderItem)
	g.PUT("/orders/:id/status", h.UpdateOrderStatus)

	g.GET("/users", h.ListUsers)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	form, err := productForm(c, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.reply(c, http.StatusCreated)(h.svc.CreateProduct(c.Request.Context(), form))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	form, err := productForm(c, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.reply(c, http.StatusOK)(h.svc.UpdateProduct(c.Request.Context(), form))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.reply(c, http.StatusOK)(h.svc.DeleteProduct(c.Request.Context(), id))
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var cat apiclient.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.reply(c, http.StatusCreated)(h.svc.CreateCategory(c.Request.Context(), cat))
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var cat apiclient.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.reply(c, http.StatusOK)(h.svc.UpdateCategory(c.Request.Context(), id, cat))
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.reply(c, http.StatusOK)(h.svc.DeleteCategory(c.Request.Context(), id))
}

func (h *Handler) FilterOrders(c *gin.Context) {
	f, err := orderFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.svc.FilterOrderItems(c.Request.Context(), f)
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetOrderItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.svc.GetOrderItem(c.Request.Context(), id)
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderItem": item})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := strings.ToUpper(req.Status)
	if !slices.Contains(application.OrderStatuses, status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + req.Status})
		return
	}
	h.reply(c, http.StatusOK)(h.svc.UpdateOrderItemStatus(c.Request.Context(), id, status))
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) reply(c *gin.Context, status int) func(string, error) {
	return func(msg string, err error) {
		if err != nil {
			c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(status, gin.H{"message": msg})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// 创建时除 productId 外全部必填；更新时只有 productId 必填
func productForm(c *gin.Context, create bool) (apiclient.ProductForm, error) {
	var form apiclient.ProductForm
	var err error

	if v := c.PostForm("productId"); v != "" {
		if form.ProductID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return form, errors.New("invalid productId")
		}
	}
	if v := c.PostForm("categoryId"); v != "" {
		if form.CategoryID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return form, errors.New("invalid categoryId")
		}
	}
	form.Name = c.PostForm("name")
	form.Description = c.PostForm("description")
	if v := c.PostForm("price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil || price.IsNegative() {
			return form, errors.New("invalid price")
		}
		form.Price = price.String()
	}

	if fh, err := c.FormFile("image"); err == nil {
		if fh.Size > maxImageSize {
			return form, fmt.Errorf("image larger than %d bytes", maxImageSize)
		}
		f, err := fh.Open()
		if err != nil {
			return form, err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxImageSize))
		if err != nil {
			return form, err
		}
		form.Image = &apiclient.FileUpload{Filename: fh.Filename, Data: data}
	}

	if create {
		if form.CategoryID == 0 || form.Name == "" || form.Description == "" || form.Price == "" || form.Image == nil {
			return form, errors.New("categoryId, name, description, price and image are required")
		}
	} else if form.ProductID == 0 {
		return form, errors.New("productId is required")
	}
	return form, nil
}

var filterLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

func orderFilter(c *gin.Context) (apiclient.OrderFilter, error) {
	p := utils.ParsePagination(c.Query("page"), c.Query("size"))
	f := apiclient.OrderFilter{
		Status: strings.ToUpper(c.Query("status")),
		Page:   p.Page,
		Size:   p.PageSize,
	}
	if v := c.Query("itemId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, errors.New("invalid itemId")
		}
		f.ItemID = id
	}
	for name, dst := range map[string]**time.Time{"startDate": &f.StartDate, "endDate": &f.EndDate} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		t, err := utils.ParseTime(v, filterLayouts...)
		if err != nil {
			return f, fmt.Errorf("invalid %s", name)
		}
		*dst = &t
	}
	return f, nil
}
