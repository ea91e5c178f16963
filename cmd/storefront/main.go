// Storefront BFF 主程序
// 功能：购物车、登录态守卫、商品浏览、结算与后台管理的 HTTP 入口
// 架构：DDD 分层 + Gin + 可替换的持久化键值存储
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	adminapp "github.com/wyfcoding/storefront/internal/admin/application"
	adminhttp "github.com/wyfcoding/storefront/internal/admin/interfaces/http"
	"github.com/wyfcoding/storefront/internal/apiclient"
	authapp "github.com/wyfcoding/storefront/internal/auth/application"
	authhttp "github.com/wyfcoding/storefront/internal/auth/interfaces/http"
	cartapp "github.com/wyfcoding/storefront/internal/cart/application"
	cartdomain "github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/internal/cart/infrastructure/messaging"
	"github.com/wyfcoding/storefront/internal/cart/infrastructure/persistence/kv"
	carthttp "github.com/wyfcoding/storefront/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	cataloghttp "github.com/wyfcoding/storefront/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/storefront/internal/order/application"
	orderhttp "github.com/wyfcoding/storefront/internal/order/interfaces/http"
	"github.com/wyfcoding/storefront/internal/session"
	storage "github.com/wyfcoding/storefront/internal/storage/domain"
	"github.com/wyfcoding/storefront/internal/storage/infrastructure/persistence/memory"
	redisstore "github.com/wyfcoding/storefront/internal/storage/infrastructure/persistence/redis"
	sqlstore "github.com/wyfcoding/storefront/internal/storage/infrastructure/persistence/sql"
	userapp "github.com/wyfcoding/storefront/internal/user/application"
	userhttp "github.com/wyfcoding/storefront/internal/user/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/mq"
	"github.com/wyfcoding/storefront/pkg/ratelimit"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/storefront/config.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Error(context.Background(), "storefront exited with error", "error", err)
		os.Exit(1)
	}
}

// infra 需要在退出时释放的外部资源
type infra struct {
	store   storage.Store
	rdb     *redis.Client
	closers []func() error
}

func (i *infra) close(ctx context.Context) {
	for _, c := range i.closers {
		if err := c(); err != nil {
			logger.Warn(ctx, "resource close failed", "error", err)
		}
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	logger.Info(ctx, "Starting storefront",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 指标
	m := metrics.New()

	// 4. 持久化存储与 Redis
	res, err := openInfra(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer res.close(ctx)

	// 5. 购物车事件发布
	var publisher cartdomain.EventPublisher = messaging.NopPublisher{}
	switch {
	case cfg.Kafka.Enabled:
		producer := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		res.closers = append(res.closers, producer.Close)
		publisher = messaging.NewKafkaPublisher(producer, cfg.Kafka.CartTopic)
	case cfg.Logger.Level == "debug":
		publisher = messaging.LogPublisher{}
	}

	// 6. 购物车注册表
	prefix := cfg.Storage.KeyPrefix
	carts := cartapp.NewRegistry(func(sessionID string) cartdomain.SnapshotRepository {
		return kv.NewSnapshotRepository(storage.Scoped(res.store, storage.SessionNamespace(prefix, sessionID)))
	}, publisher, time.Duration(cfg.Session.IdleTTL)*time.Second, m)

	// 7. 远端 API 客户端，token 从当前请求的会话里取
	client := apiclient.New(apiclient.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    time.Duration(cfg.API.Timeout) * time.Second,
		RetryCount: cfg.API.RetryCount,
	}, func(ctx context.Context) string {
		if _, store, ok := session.FromContext(ctx); ok {
			return authapp.NewGuard(store).Token(ctx)
		}
		return ""
	}, m)

	// 8. HTTP
	router := newRouter(cfg, m, res, carts, client)
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		carts.Run(gctx, time.Duration(cfg.Session.SweepInterval)*time.Second)
		return nil
	})

	g.Go(func() error {
		logger.Info(ctx, "HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Shutting down storefront")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info(ctx, "storefront stopped")
	return nil
}

// openInfra 按 storage.driver 打开持久化存储；启用限流时另需 Redis
func openInfra(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*infra, error) {
	res := &infra{}

	needRedis := cfg.Storage.Driver == "redis" || cfg.RateLimit.Enabled
	if needRedis {
		rdb, err := cache.New(ctx, cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			MaxRetries:   3,
		})
		if err != nil {
			return nil, err
		}
		res.rdb = rdb
		res.closers = append(res.closers, rdb.Close)
	}

	var base storage.Store
	switch cfg.Storage.Driver {
	case "redis":
		base = redisstore.NewStore(res.rdb)
	case "mysql", "postgres":
		gdb, err := db.Open(ctx, db.Config{
			Driver:             cfg.Storage.Driver,
			DSN:                cfg.Database.DSN,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			LogEnabled:         cfg.Database.LogEnabled,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		})
		if err != nil {
			res.close(ctx)
			return nil, err
		}
		res.closers = append(res.closers, func() error { return db.Close(gdb) })
		if base, err = sqlstore.NewStore(gdb); err != nil {
			res.close(ctx)
			return nil, err
		}
	default:
		logger.Warn(ctx, "memory storage selected, carts and credentials are lost on restart")
		base = memory.NewStore()
	}

	res.store = storage.Instrumented(base, cfg.Storage.Driver, m)
	return res, nil
}

func newRouter(cfg *config.Config, m *metrics.Metrics, res *infra, carts *cartapp.Registry, client *apiclient.Client) *gin.Engine {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinLoggingMiddleware())
	if cfg.Metrics.Enabled {
		router.Use(middleware.GinMetricsMiddleware(m))
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}
	router.Use(middleware.GinCORSMiddleware(cfg.HTTP.AllowedOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/readyz", func(c *gin.Context) {
		if _, _, err := res.store.Get(c.Request.Context(), "readyz"); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.RateLimit.Enabled && res.rdb != nil {
		limiter := ratelimit.NewRedisRateLimiter(res.rdb, cfg.Storage.KeyPrefix+":ratelimit")
		router.Use(middleware.RateLimitMiddleware(limiter, ratelimit.PerSecond(cfg.RateLimit.QPS, cfg.RateLimit.Burst), middleware.ByRoute))
	}

	router.Use(session.Middleware(res.store, session.Config{
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.Session.Secure,
		KeyPrefix:  cfg.Storage.KeyPrefix,
	}))

	guards := func(c *gin.Context) *authapp.Guard {
		if s := session.Store(c); s != nil {
			return authapp.NewGuard(s)
		}
		return nil
	}
	stores := func(c *gin.Context) *cartapp.Store {
		return carts.Get(c.Request.Context(), session.ID(c))
	}
	gate := authhttp.NewGatekeeper(guards, cfg.HTTP.LoginPath, m)

	authhttp.NewHandler(client, guards, cfg.HTTP.LoginPath).RegisterRoutes(router)

	api := router.Group("/api")
	cataloghttp.NewHandler(catalogapp.NewCatalogQueryService(client)).RegisterRoutes(api)
	carthttp.NewHandler(stores).RegisterRoutes(api)
	orderhttp.NewHandler(orderapp.NewCheckoutService(client), func(c *gin.Context) orderapp.Cart {
		return stores(c)
	}).RegisterRoutes(api, gate.RequireAuth())
	userhttp.NewHandler(userapp.NewAccountService(client)).RegisterRoutes(api, gate.RequireAuth())
	adminhttp.NewHandler(adminapp.NewAdminService(client)).RegisterRoutes(api, gate.RequireAdmin())

	return router
}
