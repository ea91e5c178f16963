package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/apiclient"
	"github.com/wyfcoding/storefront/internal/auth/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// RemoteAuth 远端注册与登录
type RemoteAuth interface {
	RegisterUser(ctx context.Context, u apiclient.User) (*apiclient.Response, error)
	LoginUser(ctx context.Context, req apiclient.LoginRequest) (*apiclient.Response, error)
}

type Handler struct {
	remote    RemoteAuth
	guards    Resolver
	loginPath string
}

func NewHandler(remote RemoteAuth, guards Resolver, loginPath string) *Handler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Handler{remote: remote, guards: guards, loginPath: loginPath}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/status", h.Status)

	r.GET(h.loginPath, h.LoginView)
}

type registerRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.remote.RegisterUser(c.Request.Context(), apiclient.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": resp.Message})
}

func (h *Handler) Login(c *gin.Context) {
	var req apiclient.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	resp, err := h.remote.LoginUser(ctx, req)
	if err != nil {
		c.JSON(apiclient.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	if err := h.guards(c).SaveCredential(ctx, domain.Credential{Token: resp.Token, Role: resp.Role}); err != nil {
		logger.Error(ctx, "credential not stored after login", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "login succeeded but the session could not be saved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        resp.Message,
		"role":           resp.Role,
		"expirationTime": resp.ExpirationTime,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	h.guards(c).Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) Status(c *gin.Context) {
	g := h.guards(c)
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"authenticated": g.IsAuthenticated(ctx),
		"admin":         g.IsAdmin(ctx),
	})
}

// LoginView 登录页视图模型，回显 from
func (h *Handler) LoginView(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"from": c.Query("from")})
}
