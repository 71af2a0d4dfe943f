package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/http/response"
)

// LandingSummarizer is satisfied by *landing.Aggregator.
type LandingSummarizer interface {
	Summary(ctx context.Context, country string) types.LandingSummary
}

type LandingHandler struct {
	agg LandingSummarizer
}

func NewLandingHandler(agg LandingSummarizer) *LandingHandler {
	return &LandingHandler{agg: agg}
}

// GET /api/landing/summary?country=XX
func (h *LandingHandler) Summary(c *gin.Context) {
	response.RespondOK(c, h.agg.Summary(c.Request.Context(), c.Query("country")))
}
