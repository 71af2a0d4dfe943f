package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iapss/iapss-backend/internal/http/response"
	"github.com/iapss/iapss-backend/internal/platform/apierr"
)

// bindBody decodes the JSON body into dst and writes the error response on failure.
func bindBody(c *gin.Context, dst any) bool {
	return bindBodyOr(c, dst, nil)
}

// bindBodyOr is bindBody reporting malformed bodies as invalid instead of the decoder error.
// Oversized bodies are always a 413.
func bindBodyOr(c *gin.Context, dst any, invalid *apierr.Error) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		response.RespondAPIError(c, apierr.TooLarge(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
	case invalid != nil:
		response.RespondAPIError(c, invalid)
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
	}
	return false
}
