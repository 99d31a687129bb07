package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nilzex/exchange/internal/analytics"
	"github.com/nilzex/exchange/internal/api/dto"
	"github.com/nilzex/exchange/internal/api/ws"
	"github.com/nilzex/exchange/internal/core"
	"github.com/nilzex/exchange/internal/domain"
	"github.com/nilzex/exchange/internal/middleware"
	"github.com/nilzex/exchange/internal/port"
)

type HTTPServer struct {
	eng      *core.Engine
	analyzer *analytics.Analyzer
	repo     port.Repository
	feed     *ws.Feed
	log      *zap.Logger

	// RateLimit is the minimum interval between requests per client; zero
	// disables the limiter.
	RateLimit time.Duration
}

func NewHTTPServer(eng *core.Engine, analyzer *analytics.Analyzer, repo port.Repository, feed *ws.Feed, log *zap.Logger) *HTTPServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPServer{eng: eng, analyzer: analyzer, repo: repo, feed: feed, log: log}
}

func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if s.RateLimit > 0 {
		rl := middleware.NewRateLimiter(s.RateLimit)
		r.Use(rl.Middleware())
	}

	r.GET("/api/v1/status", s.status)

	trading := r.Group("/api/trading")
	{
		trading.POST("/orders", s.placeOrder)
		trading.POST("/match/:symbol", s.triggerMatch)
		trading.GET("/orderbook/:symbol", s.getOrderBook)
		trading.GET("/orders/user/:userID", s.getUserOrders)
		trading.POST("/demo/populate", s.populateDemoData)
		trading.GET("/report/:symbol", s.tradeReport)
	}

	assets := r.Group("/api/assets")
	{
		assets.POST("", s.createAsset)
		assets.GET("", s.listAssets)
		assets.GET("/:symbol", s.getAsset)
	}

	if s.feed != nil {
		r.GET("/ws/trades", gin.WrapH(s.feed))
	}
	return r
}

func (s *HTTPServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *HTTPServer) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "exchange is online"})
}

func (s *HTTPServer) placeOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := domain.OrderKind(strings.ToUpper(req.Kind))
	side := domain.Side(strings.ToUpper(req.Side))
	o, err := s.eng.PlaceOrder(c.Request.Context(), req.Symbol, side, req.Price, req.Quantity, req.UserID, kind)
	if err != nil {
		if errors.Is(err, core.ErrInvalidOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(o))
}

func (s *HTTPServer) triggerMatch(c *gin.Context) {
	symbol := c.Param("symbol")
	report, err := s.eng.MatchSymbol(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MatchResponse{
		Symbol:           report.Symbol,
		BuyOrdersBefore:  report.BuyOrdersBefore,
		SellOrdersBefore: report.SellOrdersBefore,
		BuyOrdersAfter:   report.BuyOrdersAfter,
		SellOrdersAfter:  report.SellOrdersAfter,
		TradesExecuted:   report.TradesExecuted,
		RecentTrades:     dto.FromTrades(report.RecentTrades),
		Timestamp:        report.Timestamp,
	})
}

func (s *HTTPServer) getOrderBook(c *gin.Context) {
	symbol := c.Param("symbol")
	book, err := s.eng.OrderBook(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.OrderBookResponse{
		Symbol:       book.Symbol,
		BuyOrders:    dto.FromOrders(book.BuyOrders),
		SellOrders:   dto.FromOrders(book.SellOrders),
		RecentTrades: dto.FromTrades(book.RecentTrades),
		Timestamp:    book.Timestamp,
	})
}

func (s *HTTPServer) getUserOrders(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	orders, err := s.eng.UserOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromOrders(orders))
}

func (s *HTTPServer) populateDemoData(c *gin.Context) {
	count, symbols, err := s.eng.SeedDemoData(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.SeedResponse{
		Message:       "demo data created",
		OrdersCreated: count,
		Symbols:       symbols,
		Timestamp:     time.Now(),
	})
}

func (s *HTTPServer) tradeReport(c *gin.Context) {
	symbol := c.Param("symbol")
	var b strings.Builder
	if err := s.analyzer.WriteReport(c.Request.Context(), &b, symbol); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, b.String())
}

func (s *HTTPServer) createAsset(c *gin.Context) {
	var req dto.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := &domain.Asset{
		Symbol:            strings.ToUpper(req.Symbol),
		Name:              req.Name,
		Type:              req.Type,
		Currency:          req.Currency,
		Exchange:          req.Exchange,
		SharesOutstanding: req.SharesOutstanding,
		CreatedAt:         time.Now(),
	}
	if err := s.repo.SaveAsset(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *HTTPServer) listAssets(c *gin.Context) {
	assets, err := s.repo.Assets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (s *HTTPServer) getAsset(c *gin.Context) {
	a, err := s.repo.AssetBySymbol(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}
