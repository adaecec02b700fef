// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luxfi/adcat/pkg/log"
)

// route returns the matched route pattern, keeping label cardinality bounded
func route(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		l := s.log.With(
			log.String("method", c.Request.Method),
			log.String("route", route(c)),
			log.Int("status", status),
			log.Duration("latency", time.Since(start)),
		)
		switch {
		case status >= 500:
			l.Error("request failed", log.String("error", c.Errors.String()))
		case status >= 400:
			l.Info("request rejected", log.String("error", c.Errors.String()))
		default:
			l.Debug("request served")
		}
	}
}

func (s *Server) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		r := route(c)
		s.metrics.HTTPRequests.WithLabelValues(c.Request.Method, r, strconv.Itoa(c.Writer.Status())).Inc()
		s.metrics.HTTPDuration.WithLabelValues(c.Request.Method, r).Observe(time.Since(start).Seconds())
	}
}
