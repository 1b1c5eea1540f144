package controllers

import (
	"errors"
	"net/http"
	"sync"

	"capbot-api/config"
	"capbot-api/services"

	"github.com/gin-gonic/gin"
)

var (
	matchingCfgOnce sync.Once
	matchingCfg     config.MatchingConfig
)

// getMatchingConfig loads the matching thresholds once, after .env has
// been read by main.
func getMatchingConfig() config.MatchingConfig {
	matchingCfgOnce.Do(func() {
		matchingCfg = config.LoadMatchingConfig()
	})
	return matchingCfg
}

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int); ok {
			return id, true
		}
	}
	return 0, false
}

// respondServiceError maps service-layer sentinel errors onto HTTP codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTopicNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrAssignmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotReviewer):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
