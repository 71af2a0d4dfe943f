package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/iapss/iapss-backend/internal/http/response"
	"github.com/iapss/iapss-backend/internal/platform/ctxutil"
	"github.com/iapss/iapss-backend/internal/services"
)

type DashboardHandler struct {
	svc services.DashboardService
}

func NewDashboardHandler(svc services.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GET /api/dashboard/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	out, err := h.svc.Summary(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/dashboard/progress
func (h *DashboardHandler) Progress(c *gin.Context) {
	out, err := h.svc.Progress(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/recommendations/next
func (h *DashboardHandler) NextRecommendation(c *gin.Context) {
	out, err := h.svc.NextRecommendation(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
