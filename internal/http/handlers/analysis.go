package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/http/response"
	"github.com/iapss/iapss-backend/internal/platform/ctxutil"
	"github.com/iapss/iapss-backend/internal/services"
)

type AnalysisHandler struct {
	svc services.AnalysisService
}

func NewAnalysisHandler(svc services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

// POST /api/problems/analyse
func (h *AnalysisHandler) AnalyseProblem(c *gin.Context) {
	var req struct {
		Text   string   `json:"text"`
		Images []string `json:"images"`
	}
	if !bindBody(c, &req) {
		return
	}
	h.analyse(c, types.AnalysisRequest{Kind: types.KindProblem, Payload: req.Text, Images: req.Images})
}

// POST /api/code/analyse
func (h *AnalysisHandler) AnalyseCode(c *gin.Context) {
	var req struct {
		Code     string `json:"code"`
		Language string `json:"language"`
	}
	if !bindBody(c, &req) {
		return
	}
	h.analyse(c, types.AnalysisRequest{Kind: types.KindCode, Payload: req.Code, Language: req.Language})
}

func (h *AnalysisHandler) analyse(c *gin.Context, req types.AnalysisRequest) {
	ctx := c.Request.Context()
	result, normalized, err := h.svc.Analyse(ctx, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, result)
	// Recording happens off the request path and never changes the response.
	h.svc.Record(ctx, ctxutil.UserID(ctx), normalized, result)
}
