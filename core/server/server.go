package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/R0SEWT/smartParkSystem/internal/domain"
	"github.com/R0SEWT/smartParkSystem/internal/health"
	"github.com/R0SEWT/smartParkSystem/internal/ingest"
	"github.com/R0SEWT/smartParkSystem/internal/metrics"
	"github.com/R0SEWT/smartParkSystem/internal/query"
)

const requestTimeout = 30 * time.Second

type Server struct {
	config   *ServerConfig
	ingestor *ingest.Ingestor
	query    *query.Service
	health   *health.Aggregator
	router   *gin.Engine
}

func NewServer(options ...ConfigOption) (*Server, error) {
	config := &ServerConfig{
		Port:    "8080",
		Shape:   domain.ShapeRegistro,
		Origins: []string{"*"},
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return nil, err
		}
	}

	if config.RawStore == nil {
		return nil, errors.New("a mongo raw store is required")
	}
	if config.RecordStore == nil {
		return nil, errors.New("a postgres record store is required")
	}
	// Default to the extended wire schema if none was selected
	if config.Codec == nil {
		codec, err := domain.CodecFor(domain.GenerationExtended)
		if err != nil {
			return nil, err
		}
		config.Codec = codec
	}

	server := &Server{
		config:   config,
		ingestor: ingest.New(config.Codec, config.RawStore, config.RecordStore),
		query:    query.New(config.RawStore, config.RecordStore, config.Shape),
		health:   health.New(config.RecordStore, config.RawStore),
		router:   gin.Default(),
	}

	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(requestID(), corsMiddleware(s.config.Origins))

	// Liveness: process only, never touches a store
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	s.router.GET("/healthzdb", s.handleHealthDB)

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/openapi.json", s.handleOpenAPI)
	s.router.GET("/docs", s.handleDocs)

	s.router.POST("/sensor_event", s.handleSensorEvent)
	s.router.GET("/status_overview", s.handleStatusOverview)
	s.router.GET("/registro_data", s.handleRegistroData)
}

func (s *Server) handleSensorEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		metrics.ObserveIngest(metrics.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "failed to read body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	result, err := s.ingestor.Ingest(ctx, body)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindValidation:
			metrics.ObserveIngest(metrics.OutcomeInvalid)
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		case domain.KindRawStore:
			metrics.ObserveIngest(metrics.OutcomeRawError)
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		case domain.KindRelationalWrite:
			metrics.ObserveIngest(metrics.OutcomeRelationalError)
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}

	metrics.ObserveIngest(metrics.OutcomeAccepted)
	resp := gin.H{"ok": true, "ts": result.TS.Format(time.RFC3339)}
	if result.Estado != "" {
		resp["estado"] = result.Estado
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleStatusOverview(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	overview := s.query.StatusOverview(ctx)

	var registro any = overview.Records
	if s.query.Shape() == domain.ShapeOccupancy {
		registro = overview.Points
	}
	c.JSON(http.StatusOK, gin.H{
		"last_events":   overview.LastEvents,
		"registro_data": registro,
	})
}

func (s *Server) handleRegistroData(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(query.DefaultLimit)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "limit must be an integer"})
		return
	}

	filter := domain.Filter{
		SiteID:   c.Query("estacionamiento_id"),
		SensorID: c.Query("sensor_id"),
		Limit:    limit,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	items, err := s.query.List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(items), "items": items})
}

func (s *Server) handleHealthDB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	report := s.health.Check(ctx)
	status := http.StatusOK
	if !report.OK {
		// A dependency outage, not an internal fault: 503, never 500
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("Server starting on port %s", s.config.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Close() error {
	var firstErr error
	for _, closer := range s.config.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
