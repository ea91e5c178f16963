package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/apiclient"
	"github.com/wyfcoding/storefront/internal/catalog/application"
)

type Handler struct {
	query *application.CatalogQueryService
}

func NewHandler(query *application.CatalogQueryService) *Handler {
	return &Handler{query: query}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/products", h.ListProducts)
	r.GET("/products/search", h.Search)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/categories", h.ListCategories)
	r.GET("/categories/:id", h.GetCategory)
	r.GET("/categories/:id/products", h.ProductsInCategory)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.query.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) Search(c *gin.Context) {
	products, err := h.query.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.query.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.query.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	category, err := h.query.GetCategory(c.Request.Context(), id)
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *Handler) ProductsInCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	products, err := h.query.ProductsInCategory(c.Request.Context(), id)
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
