package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/apiclient"
	cartapp "github.com/wyfcoding/storefront/internal/cart/application"
	cart "github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/internal/cart/infrastructure/persistence/kv"
	"github.com/wyfcoding/storefront/internal/order/application"
	"github.com/wyfcoding/storefront/internal/storage/infrastructure/persistence/memory"
)

type fakePlacer struct {
	got *apiclient.OrderRequest
	err error
}

func (f *fakePlacer) CreateOrder(_ context.Context, req apiclient.OrderRequest) (*apiclient.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = &req
	return &apiclient.Response{Status: 200, Message: "Order was successfully placed"}, nil
}

func setup(t *testing.T) (*gin.Engine, *cartapp.Store, *memory.Store, *fakePlacer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	base := memory.NewStore()
	store := cartapp.NewStore(context.Background(), kv.NewSnapshotRepository(base), nil)
	placer := &fakePlacer{}

	r := gin.New()
	NewHandler(application.NewCheckoutService(placer), func(*gin.Context) application.Cart { return store }).
		RegisterRoutes(r.Group("/api"))
	return r, store, base, placer
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	r, store, base, placer := setup(t)
	ctx := context.Background()
	store.AddToCart(ctx, cart.NewItem("1", map[string]any{"price": "12.00"}))
	store.AddToCart(ctx, cart.NewItem("2", map[string]any{"price": 0.5}))
	store.Increase(ctx, "1")
	subtotal := store.Snapshot().Subtotal()

	w := post(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Order was successfully placed"}`, w.Body.String())

	require.NotNil(t, placer.got)
	assert.True(t, subtotal.Equal(placer.got.TotalPrice))
	assert.Equal(t, []apiclient.OrderItemRequest{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, placer.got.Items)
	assert.Nil(t, placer.got.PaymentInfo)

	assert.Empty(t, store.Lines())
	_, ok, _ := base.Get(ctx, "cart")
	assert.False(t, ok)
}

func TestCheckout_ForwardsPayment(t *testing.T) {
	r, store, _, placer := setup(t)
	store.AddToCart(context.Background(), cart.NewItem("5", map[string]any{"price": 3}))

	w := post(r, `{"paymentInfo":{"amount":"3","method":"CARD"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, placer.got.PaymentInfo)
	assert.Equal(t, "CARD", placer.got.PaymentInfo.Method)
}

func TestCheckout_Rejections(t *testing.T) {
	r, store, _, placer := setup(t)
	ctx := context.Background()

	w := post(r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cart is empty")

	store.AddToCart(ctx, cart.NewItem("sku-9", nil))
	w = post(r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.Clear(ctx)

	store.AddToCart(ctx, cart.NewItem("4", nil))
	placer.err = &apiclient.APIError{Status: 500, Message: "boom"}
	w = post(r, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Len(t, store.Lines(), 1)
}
