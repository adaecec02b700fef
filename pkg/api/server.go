// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the exchange over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luxfi/adcat/pkg/exchange"
	"github.com/luxfi/adcat/pkg/log"
	"github.com/luxfi/adcat/pkg/metric"
)

// Config holds the HTTP surface settings
type Config struct {
	Env         string
	CORSOrigins []string
	AdImagesDir string
}

// Option configures the router
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics records request metrics and serves /metrics
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithFeed serves the live feed at /ws/events
func WithFeed(h http.Handler) Option {
	return func(s *Server) { s.feed = h }
}

// WithClock replaces time.Now for response timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server holds the handlers' dependencies
type Server struct {
	svc     *exchange.Service
	cfg     Config
	log     log.Logger
	metrics *metric.Metrics
	feed    http.Handler
	now     func() time.Time
}

// NewRouter builds the gin engine serving svc
func NewRouter(svc *exchange.Service, cfg Config, opts ...Option) *gin.Engine {
	s := &Server{
		svc: svc,
		cfg: cfg,
		log: log.NoOp(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	if s.metrics != nil {
		router.Use(s.requestMetrics())
	}

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsCfg))

	router.GET("/health", s.health)

	// Catalog and auction
	router.GET("/categories_ads", s.listCategories)
	router.POST("/purchase_category", s.purchaseCategory)

	// Serving and ledger
	router.GET("/get_ad", s.getAd)
	router.POST("/track_click", s.trackClick)
	router.POST("/log_query_time", s.logQueryTime)
	router.POST("/log_api_cost", s.logAPICost)
	router.POST("/log_token_usage", s.logTokenUsage)

	// Reports
	router.GET("/company_summary/:company", s.companySummary)
	router.GET("/categories_for_sale", s.categoriesForSale)
	router.GET("/revenue", s.revenue)

	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.GetGatherer(), promhttp.HandlerOpts{})))
	}
	if s.feed != nil {
		router.GET("/ws/events", gin.WrapH(s.feed))
	}
	if cfg.AdImagesDir != "" {
		router.Static("/ad_images", cfg.AdImagesDir)
	}
	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   s.now().Unix(),
	})
}
