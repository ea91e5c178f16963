package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/apiclient"
	"github.com/wyfcoding/storefront/internal/order/application"
	"github.com/wyfcoding/storefront/internal/order/domain"
)

// CartResolver 当前会话的购物车
type CartResolver func(c *gin.Context) application.Cart

type Handler struct {
	checkout *application.CheckoutService
	carts    CartResolver
}

func NewHandler(checkout *application.CheckoutService, carts CartResolver) *Handler {
	return &Handler{checkout: checkout, carts: carts}
}

// RegisterRoutes mw 通常是 RequireAuth
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	r.POST("/checkout", append(mw, h.Checkout)...)
}

type checkoutRequest struct {
	Payment *apiclient.Payment `json:"paymentInfo"`
}

func (h *Handler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.checkout.Checkout(c.Request.Context(), h.carts(c), req.Payment)
	switch {
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrInvalidProductID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": resp.Message})
}
