package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	service string
	db      Pinger
	now     func() time.Time
}

func NewHealthHandler(service string, db Pinger) *HealthHandler {
	return &HealthHandler{service: service, db: db, now: time.Now}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Status reports service liveness plus database connectivity. A down database
// degrades the status but the endpoint still answers 200 so probes can read the body.
func (h *HealthHandler) Status(c *gin.Context) {
	dbStatus := "disabled"
	status := "ok"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			_ = c.Error(err)
			dbStatus = "down"
			status = "degraded"
		} else {
			dbStatus = "up"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"service":   h.service,
		"status":    status,
		"db":        dbStatus,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
