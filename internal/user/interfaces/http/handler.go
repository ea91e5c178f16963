package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/apiclient"
	"github.com/wyfcoding/storefront/internal/user/application"
)

type Handler struct {
	account *application.AccountService
}

func NewHandler(account *application.AccountService) *Handler {
	return &Handler{account: account}
}

// RegisterRoutes mw 通常是 RequireAuth
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	g := r.Group("/account", mw...)
	g.GET("", h.Profile)
	g.POST("/address", h.SaveAddress)
}

func (h *Handler) Profile(c *gin.Context) {
	user, err := h.account.Profile(c.Request.Context())
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) SaveAddress(c *gin.Context) {
	var addr apiclient.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := h.account.SaveAddress(c.Request.Context(), addr)
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
