// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luxfi/adcat/pkg/auction"
	"github.com/luxfi/adcat/pkg/errs"
)

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	code := errs.CodeOf(err)
	resp := errorResponse{Error: err.Error(), Code: string(code)}

	var low *errs.BidTooLowError
	if errors.As(err, &low) {
		minimum := low.Minimum.InexactFloat64()
		resp.MinimumRequired = &minimum
	}
	c.AbortWithStatusJSON(code.StatusCode(), resp)
}

func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.fail(c, errs.Invalid("malformed request body: %v", err))
		return false
	}
	return true
}

func (s *Server) listCategories(c *gin.Context) {
	out := make(map[string]categoryAd)
	for _, cat := range s.svc.Categories() {
		v := categoryAd{
			Company:      cat.Owner,
			CategoryCost: cat.Price.InexactFloat64(),
			AdPath:       cat.AdImage,
			Link:         cat.AdLink,
		}
		if since, ok := s.svc.OwnedSince(cat.Name); ok {
			v.OwnedSince = &since
		}
		out[cat.Name] = v
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) purchaseCategory(c *gin.Context) {
	var req purchaseRequest
	if !s.bind(c, &req) {
		return
	}
	receipt, err := s.svc.Purchase(c.Request.Context(), auction.PurchaseRequest{
		Category: req.Disease,
		Company:  req.Company,
		BidPrice: req.BidPrice,
		AdImage:  req.AdImage,
		AdLink:   req.AdLink,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, purchaseResponse{
		Message:       fmt.Sprintf("%s now owns %s at $%s/month", receipt.Company, receipt.Category, receipt.Price.StringFixed(2)),
		Category:      receipt.Category,
		Company:       receipt.Company,
		Price:         receipt.Price.InexactFloat64(),
		PreviousOwner: receipt.PreviousOwner,
		PreviousPrice: receipt.PreviousPrice.InexactFloat64(),
		At:            receipt.At,
	})
}

func (s *Server) getAd(c *gin.Context) {
	query, ok := c.GetQuery("query")
	if !ok {
		s.fail(c, errs.Invalid("query parameter is required"))
		return
	}
	res, err := s.svc.GetAd(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := adResponse{Matched: res.Matched}
	if resp.Matched == nil {
		resp.Matched = []string{}
	}
	if res.Found {
		resp.Ad = newAdView(res.Ad)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) trackClick(c *gin.Context) {
	var req clickRequest
	if !s.bind(c, &req) {
		return
	}
	e, err := s.svc.TrackClick(c.Request.Context(), req.Disease, req.Company)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "logged": e.At})
}

func (s *Server) logQueryTime(c *gin.Context) {
	var req queryTimeRequest
	if !s.bind(c, &req) {
		return
	}
	if _, err := s.svc.LogQueryDuration(c.Request.Context(), req.Diseases, req.DurationMs); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) logAPICost(c *gin.Context) {
	var req apiCostRequest
	if !s.bind(c, &req) {
		return
	}
	if _, err := s.svc.LogAPICost(c.Request.Context(), req.Type, req.Amount); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) logTokenUsage(c *gin.Context) {
	var req tokenUsageRequest
	if !s.bind(c, &req) {
		return
	}
	e, err := s.svc.LogTokenUsage(c.Request.Context(), req.PromptTokens, req.CompletionTokens)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cost_usd": e.Amount.InexactFloat64()})
}

func (s *Server) companySummary(c *gin.Context) {
	report, err := s.svc.CompanySummary(c.Request.Context(), c.Param("company"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newCompanySummary(report))
}

func (s *Server) categoriesForSale(c *gin.Context) {
	list, err := s.svc.CategoriesForSale(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := forSaleResponse{UnclaimedDiseases: make([]unclaimedView, 0, len(list))}
	for _, u := range list {
		out.UnclaimedDiseases = append(out.UnclaimedDiseases, unclaimedView{Disease: u.Category, Mentions: u.Mentions})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) revenue(c *gin.Context) {
	rev, err := s.svc.Revenue(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newRevenue(rev))
}
