package handlers

import (
	"errors"
	"net/http"

	"carrera/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func writeAPIError(c *gin.Context, err error) {
	if err == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if errors.Is(err, models.ErrRaceNotStarted) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "race not started"})
		return
	}

	// Unknown/internal errors: log details, return generic message.
	zap.L().Error("internal error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
