// Package httpapi exposes the ledger over HTTP: signed trade submission,
// trade and history reads, a websocket TradeRecorded stream, metrics and
// health.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"kolangkoding.com/tradeledger/internal/config"
	"kolangkoding.com/tradeledger/internal/notify"
	"kolangkoding.com/tradeledger/internal/trade"
)

type Ledger interface {
	RecordTrade(
		ctx context.Context,
		caller common.Address,
		symbol string,
		amount, price *big.Int,
		timestamp uint64,
	) (trade.ID, error)
	Lookup(id trade.ID) (trade.Trade, bool)
	GetTraderTrades(trader common.Address) []trade.Trade
}

type Server struct {
	cfg      config.HTTPConfig
	ledger   Ledger
	bus      *notify.Bus
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	router   *gin.Engine
	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer wires the routes. gatherer backs /metrics; nil serves the
// default registry.
func NewServer(
	cfg config.HTTPConfig,
	ledger Ledger,
	bus *notify.Bus,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:      cfg,
		ledger:   ledger,
		bus:      bus,
		gatherer: gatherer,
		logger:   logger.Named("http"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.logger, true))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", headerAddress, headerSignature},
		MaxAge:       12 * time.Hour,
	}))

	s.router = router
	s.registerRoutes()

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/v1")
	{
		v1.POST("/trades", s.recordTrade)
		v1.GET("/trades/:id", s.getTrade)
		v1.GET("/traders/:address/trades", s.getTraderTrades)
		v1.GET("/events", s.streamEvents)
	}
}

// Router returns the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// ListenAndServe blocks until the server stops. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting http server", zap.String("addr", s.cfg.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}
