package server

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/haulbiz/dispatch/internal/alert"
	"github.com/haulbiz/dispatch/internal/config"
	"github.com/haulbiz/dispatch/internal/job"
	jobdomain "github.com/haulbiz/dispatch/internal/job/domain"
	"github.com/haulbiz/dispatch/internal/payment"
	paymentdomain "github.com/haulbiz/dispatch/internal/payment/domain"
	"github.com/haulbiz/dispatch/internal/pricelist"
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	"github.com/haulbiz/dispatch/internal/reference"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"github.com/haulbiz/dispatch/internal/statement"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg          config.Config
	Engine       *gin.Engine
	Log          *zap.Logger
	DB           *gorm.DB
	GenID        *snowflake.Node
	JobSvc       jobdomain.Service
	PriceListSvc pricelistdomain.Service
	StatementSvc statementdomain.Service
	PaymentSvc   paymentdomain.Service
	Registry     referencedomain.Registry
}

type Server struct {
	cfg          config.Config
	engine       *gin.Engine
	log          *zap.Logger
	db           *gorm.DB
	genID        *snowflake.Node
	refs         refStores
	jobSvc       jobdomain.Service
	pricelistSvc pricelistdomain.Service
	statementSvc statementdomain.Service
	paymentSvc   paymentdomain.Service
	registry     referencedomain.Registry

	requests *prometheus.CounterVec
}

func NewEngine(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(ErrorHandlingMiddleware())
	return engine
}

func NewServer(p Params) *Server {
	s := &Server{
		cfg:          p.Cfg,
		engine:       p.Engine,
		log:          p.Log.Named("server"),
		db:           p.DB,
		genID:        p.GenID,
		refs:         newRefStores(p.DB),
		jobSvc:       p.JobSvc,
		pricelistSvc: p.PriceListSvc,
		statementSvc: p.StatementSvc,
		paymentSvc:   p.PaymentSvc,
		registry:     p.Registry,
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_http_requests_total",
			Help: "HTTP requests by path and status.",
		}, []string{"path", "status"}),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.AppVersion})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/v1")
	v1.Use(OrgContext())
	v1.Use(s.countRequests())

	jobs := v1.Group("/jobs")
	{
		jobs.POST("", s.CreateJob)
		jobs.GET("", s.ListJobs)
		jobs.GET("/:id", s.GetJob)
		jobs.PATCH("/:id", s.UpdateJob)
		jobs.POST("/:id/assign", s.AssignJob)
		jobs.POST("/:id/status", s.SetJobStatus)
		jobs.POST("/:id/price", s.PriceJob)
		jobs.GET("/:id/events", s.JobEvents)
	}

	prices := v1.Group("/price-list")
	{
		prices.POST("", s.CreatePriceEntry)
		prices.GET("", s.ListPriceEntries)
		prices.GET("/:id", s.GetPriceEntry)
		prices.POST("/resolve", s.ResolvePrice)
	}

	statements := v1.Group("/statements")
	{
		statements.POST("", s.GenerateStatement)
		statements.GET("", s.ListStatements)
		statements.GET("/:id", s.GetStatement)
		statements.POST("/:id/send", s.SendStatement)
	}

	payments := v1.Group("/payments")
	{
		payments.POST("", s.RecordPayment)
		payments.GET("", s.ListPayments)
		payments.GET("/:id", s.GetPayment)
		payments.POST("/:id/allocate", s.AllocatePayment)
	}

	s.registerReferenceRoutes(v1)
}

func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.requests.WithLabelValues(c.FullPath(), http.StatusText(c.Writer.Status())).Inc()
	}
}

func run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// Module assembles the HTTP surface and every domain it serves.
var Module = fx.Module("http.server",
	reference.Module,
	pricelist.Module,
	job.Module,
	statement.Module,
	payment.Module,
	alert.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)
