// Package server exposes the admin HTTP API: settlement inspection and a
// manual run trigger. Authentication is handled upstream by the gateway.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/clearvia/payops/internal/config"
	feeappdomain "github.com/clearvia/payops/internal/feeapplication/domain"
	merchantdomain "github.com/clearvia/payops/internal/merchant/domain"
	"github.com/clearvia/payops/internal/scheduler"
	shopdomain "github.com/clearvia/payops/internal/shop/domain"
	pkgrepository "github.com/clearvia/payops/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config       config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	Scheduler    *scheduler.Scheduler
	MerchantRepo merchantdomain.Repository
	Merchants    pkgrepository.Repository[merchantdomain.Merchant]
	ShopRepo     shopdomain.Repository
	History      feeappdomain.Repository
}

type Server struct {
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	engine       *gin.Engine
	scheduler    *scheduler.Scheduler
	merchantRepo merchantdomain.Repository
	merchants    pkgrepository.Repository[merchantdomain.Merchant]
	shopRepo     shopdomain.Repository
	history      feeappdomain.Repository
}

func New(p Params) *Server {
	if p.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(p.Log))

	s := &Server{
		cfg:          p.Config,
		db:           p.DB,
		log:          p.Log.Named("server"),
		engine:       engine,
		scheduler:    p.Scheduler,
		merchantRepo: p.MerchantRepo,
		merchants:    p.Merchants,
		shopRepo:     p.ShopRepo,
		history:      p.History,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/v1")
	v1.POST("/settlements/run", s.runSettlement)
	v1.GET("/merchants", s.listMerchants)
	v1.GET("/merchants/:account_id/fees", s.listMerchantFees)
	v1.GET("/shops/:external_id/settings", s.getShopSettings)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func RunHTTP(lc fx.Lifecycle, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(pkgrepository.ProvideStore[merchantdomain.Merchant]),
	fx.Provide(New),
	fx.Invoke(RunHTTP),
)
