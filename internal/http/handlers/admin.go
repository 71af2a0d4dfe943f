package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/http/response"
	"github.com/iapss/iapss-backend/internal/services"
)

// AdminHandler serves curated landing content. Routes sit behind RequireAdmin.
type AdminHandler struct {
	svc services.CuratedService
}

func NewAdminHandler(svc services.CuratedService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// curatedMeta is shared by every curated create body. Active defaults to true.
type curatedMeta struct {
	Active *bool `json:"active"`
	Order  int   `json:"order"`
}

func (m curatedMeta) active() bool {
	return m.Active == nil || *m.Active
}

func listResponse[T any](c *gin.Context, items []*T, err error) {
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if items == nil {
		items = []*T{}
	}
	response.RespondOK(c, gin.H{"items": items})
}

// GET /api/admin/news
func (h *AdminHandler) ListNews(c *gin.Context) {
	items, err := h.svc.ListNews(c.Request.Context())
	listResponse(c, items, err)
}

// POST /api/admin/news
func (h *AdminHandler) CreateNews(c *gin.Context) {
	var req struct {
		curatedMeta
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source string `json:"source"`
	}
	if !bindBody(c, &req) {
		return
	}
	item := &types.CuratedNews{
		Title:  req.Title,
		URL:    req.URL,
		Source: req.Source,
		Active: req.active(),
		Order:  req.Order,
	}
	if err := h.svc.CreateNews(c.Request.Context(), item); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, item)
}

// GET /api/admin/contests
func (h *AdminHandler) ListContests(c *gin.Context) {
	items, err := h.svc.ListContests(c.Request.Context())
	listResponse(c, items, err)
}

// POST /api/admin/contests
func (h *AdminHandler) CreateContest(c *gin.Context) {
	var req struct {
		curatedMeta
		Name      string    `json:"name"`
		Site      string    `json:"site"`
		URL       string    `json:"url"`
		StartTime time.Time `json:"startTime"`
		EndTime   time.Time `json:"endTime"`
	}
	if !bindBody(c, &req) {
		return
	}
	item := &types.CuratedContest{
		Name:      req.Name,
		Site:      req.Site,
		URL:       req.URL,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		Active:    req.active(),
		Order:     req.Order,
	}
	if err := h.svc.CreateContest(c.Request.Context(), item); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, item)
}

// GET /api/admin/podcasts
func (h *AdminHandler) ListPodcasts(c *gin.Context) {
	items, err := h.svc.ListPodcasts(c.Request.Context())
	listResponse(c, items, err)
}

// POST /api/admin/podcasts
func (h *AdminHandler) CreatePodcast(c *gin.Context) {
	var req struct {
		curatedMeta
		Title    string `json:"title"`
		Platform string `json:"platform"`
		URL      string `json:"url"`
	}
	if !bindBody(c, &req) {
		return
	}
	item := &types.CuratedPodcast{
		Title:    req.Title,
		Platform: req.Platform,
		URL:      req.URL,
		Active:   req.active(),
		Order:    req.Order,
	}
	if err := h.svc.CreatePodcast(c.Request.Context(), item); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, item)
}
