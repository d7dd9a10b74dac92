package workerd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	"github.com/muhammadchandra19/tick-extractor/internal/worker"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
)

// Server exposes one connector over the worker HTTP/JSON API. It binds to
// loopback only, the routed port is the worker's identity on the host.
type Server struct {
	broker    string
	symbol    string
	port      int
	connector Connector
	logger    logger.Interface
	engine    *gin.Engine
	http      *http.Server
}

// NewServer wires the worker routes for a single (broker, symbol) pair.
func NewServer(broker, symbol string, port int, connector Connector, log logger.Interface) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		broker:    broker,
		symbol:    symbol,
		port:      port,
		connector: connector,
		logger:    log,
		engine:    engine,
	}

	engine.GET("/healthcheck", s.handleHealthcheck)
	engine.POST("/init", s.handleInit)
	engine.GET("/ticks", s.handleTicks)
	engine.POST("/shutdown", s.handleShutdown)

	s.http = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: engine,
	}
	return s
}

// Run serves until the context is cancelled or /shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.logger.InfoContext(ctx, "worker listening",
		logger.NewField("broker", s.broker),
		logger.NewField("symbol", s.symbol),
		logger.NewField("port", s.port),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler exposes the route tree for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealthcheck(c *gin.Context) {
	if s.connector.HealthCheck(c.Request.Context()) {
		c.JSON(http.StatusOK, worker.StatusResponse{Status: worker.StatusOK})
		return
	}
	c.JSON(http.StatusOK, worker.StatusResponse{Status: worker.StatusFail})
}

func (s *Server) handleInit(c *gin.Context) {
	var req worker.InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, worker.ErrorResponse{Error: "invalid init payload: " + err.Error()})
		return
	}
	if req.Broker != s.broker {
		c.JSON(http.StatusBadRequest, worker.ErrorResponse{
			Error: fmt.Sprintf("this worker serves broker %s, not %s", s.broker, req.Broker),
		})
		return
	}

	if err := s.connector.Initialize(c.Request.Context(), req); err != nil {
		s.logger.ErrorContext(c.Request.Context(), err)
		c.JSON(http.StatusOK, worker.StatusResponse{Status: worker.StatusFail})
		return
	}
	c.JSON(http.StatusOK, worker.StatusResponse{Status: worker.StatusOK})
}

func (s *Server) handleTicks(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol != s.symbol {
		c.JSON(http.StatusBadRequest, worker.ErrorResponse{
			Error: fmt.Sprintf("this worker serves symbol %s, not %s", s.symbol, symbol),
		})
		return
	}

	from, err := time.Parse(time.RFC3339Nano, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, worker.ErrorResponse{Error: "invalid from timestamp: " + err.Error()})
		return
	}
	to, err := time.Parse(time.RFC3339Nano, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, worker.ErrorResponse{Error: "invalid to timestamp: " + err.Error()})
		return
	}
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, worker.ErrorResponse{Error: "window end must be after window start"})
		return
	}

	ticks, err := s.connector.TickData(c.Request.Context(), symbol, from, to)
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, worker.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, worker.TicksResponse{Ticks: clampWindow(ticks, to)})
}

func (s *Server) handleShutdown(c *gin.Context) {
	if err := s.connector.Shutdown(c.Request.Context()); err != nil {
		s.logger.ErrorContext(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, worker.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, worker.StatusResponse{Status: worker.StatusOK})

	// let the response flush before the listener dies
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.http.Shutdown(ctx)
	}()
}

// clampWindow drops any tick at or past the window end. The platform side of
// a range query is inclusive, the API contract is exclusive, so the boundary
// is enforced here regardless of what the connector returned.
func clampWindow(ticks []extraction.Tick, windowEnd time.Time) []extraction.Tick {
	out := make([]extraction.Tick, 0, len(ticks))
	for _, tick := range ticks {
		if tick.Timestamp.Before(windowEnd) {
			out = append(out, tick)
		}
	}
	return out
}
