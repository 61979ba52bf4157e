package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/financeplus/docs"
	"github.com/fatflowers/financeplus/internal/app/api/handlers"
	mw "github.com/fatflowers/financeplus/internal/app/api/middleware"
	"github.com/fatflowers/financeplus/internal/app/service/statistics"
	subsvc "github.com/fatflowers/financeplus/internal/app/service/subscription"
	usersvc "github.com/fatflowers/financeplus/internal/app/service/user"
	cfgpkg "github.com/fatflowers/financeplus/pkg/config"
	"github.com/fatflowers/financeplus/pkg/metrics"
	"github.com/fatflowers/financeplus/pkg/types"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Engine  *gin.Engine
	Log     *zap.SugaredLogger
	Config  *cfgpkg.Config
	DB      *gorm.DB
	Metrics *metrics.HTTPMetrics
	Subs    *subsvc.Service
	Stats   *statistics.Service
	Users   *usersvc.Service
}

func newHTTPMetrics() (*metrics.HTTPMetrics, error) {
	return metrics.NewHTTPMetrics(metrics.HTTPMetricsOptions{})
}

func registerRoutes(d routeDeps) {
	r, log, cfg := d.Engine, d.Log, d.Config

	if cfg.MetricsAddr != "" {
		r.Use(d.Metrics.Middleware())
		metrics.MustRegisterBusiness(prometheus.DefaultRegisterer)
	}

	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub, d.DB)
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.Auth.JWTSecret == "" {
		log.Warnw("auth.jwt_secret is empty; every bearer token will be rejected")
	}
	apiV1 := r.Group("/api/v1")
	apiV1.Use(
		mw.RequestLoggerMiddleware(log),
		mw.AccessLogMiddleware(),
		mw.Authenticate(mw.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer), d.Users),
	)
	handlers.RegisterSubscriptionRoutes(apiV1, d.Subs, log)

	admin := apiV1.Group("/admin")
	admin.Use(mw.RequireRole(types.RoleAdmin, types.RoleRoot))
	handlers.RegisterAdminRoutes(admin, d.Subs, d.Stats, d.Users, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// runMetricsServer serves the metrics router on metrics_addr, apart from the API listener.
func runMetricsServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, m *metrics.HTTPMetrics) {
	if cfg.MetricsAddr == "" {
		log.Infow("metrics_addr not configured, metrics server disabled")
		return
	}
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Router(), ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen for metrics on %s: %w", srv.Addr, err)
			}
			log.Infow("starting metrics server", "addr", ln.Addr().String(), "path", m.Path())
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorw("metrics server error", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping metrics server")
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine, newHTTPMetrics),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer, runMetricsServer),
)
