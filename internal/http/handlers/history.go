package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iapss/iapss-backend/internal/data/repos"
	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/http/response"
	"github.com/iapss/iapss-backend/internal/platform/apierr"
	"github.com/iapss/iapss-backend/internal/platform/ctxutil"
	"github.com/iapss/iapss-backend/internal/services"
)

type HistoryHandler struct {
	svc services.HistoryService
}

func NewHistoryHandler(svc services.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// routeKinds maps the plural path segment to a record kind.
var routeKinds = map[string]types.AnalysisKind{
	"problems": types.KindProblem,
	"code":     types.KindCode,
}

func kindParam(c *gin.Context) (types.AnalysisKind, bool) {
	kind, ok := routeKinds[strings.ToLower(c.Param("kind"))]
	if !ok {
		response.RespondAPIError(c, apierr.NotFound(fmt.Sprintf("unknown history kind %q", c.Param("kind"))))
	}
	return kind, ok
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// GET /api/history/:kind
func (h *HistoryHandler) List(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	favorite, _ := strconv.ParseBool(c.Query("favorite"))
	page, err := h.svc.List(c.Request.Context(), ctxutil.UserID(c.Request.Context()), repos.HistoryListFilter{
		Kind:         kind,
		Query:        c.Query("q"),
		Topic:        c.Query("topic"),
		Language:     c.Query("language"),
		Tag:          c.Query("tag"),
		FavoriteOnly: favorite,
		Page:         queryInt(c, "page"),
		Limit:        queryInt(c, "limit"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/history/:kind/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), ctxutil.UserID(c.Request.Context()), kind, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rec)
}

// DELETE /api/history/:kind/:id
func (h *HistoryHandler) Delete(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), ctxutil.UserID(c.Request.Context()), kind, id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/history/:kind
func (h *HistoryHandler) Clear(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	n, err := h.svc.Clear(c.Request.Context(), ctxutil.UserID(c.Request.Context()), kind)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": n})
}

// PATCH /api/history/:kind/:id/favorite
func (h *HistoryHandler) SetFavorite(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		IsFavorite *bool `json:"isFavorite"`
	}
	invalid := apierr.Validation("isFavorite must be a boolean")
	if !bindBodyOr(c, &req, invalid) {
		return
	}
	if req.IsFavorite == nil {
		response.RespondAPIError(c, invalid)
		return
	}
	rec, err := h.svc.SetFavorite(c.Request.Context(), ctxutil.UserID(c.Request.Context()), kind, id, *req.IsFavorite)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rec)
}

// PATCH /api/history/:kind/:id/tags
func (h *HistoryHandler) SetTags(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Tags []string `json:"tags"`
	}
	if !bindBodyOr(c, &req, apierr.Validation("tags must be an array of strings")) {
		return
	}
	rec, err := h.svc.SetTags(c.Request.Context(), ctxutil.UserID(c.Request.Context()), kind, id, req.Tags)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rec)
}

// POST /api/history/:kind/:id/feedback
func (h *HistoryHandler) SetFeedback(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !bindBodyOr(c, &req, apierr.Validation("rating must be a number")) {
		return
	}
	rec, err := h.svc.SetFeedback(c.Request.Context(), ctxutil.UserID(c.Request.Context()), kind, id, req.Rating, req.Comment)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rec)
}
