package handlers

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"absensi/internal/middleware"
	"absensi/internal/services"
)

func getUserAndRole(c *gin.Context) (userID int, role string) {
	return middleware.CurrentUser(c)
}

func parseIntParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// respondError maps service errors to HTTP statuses. Unknown errors are
// logged under [area][op] and hidden behind a generic message.
func respondError(c *gin.Context, area, op string, err error) {
	var (
		oor *services.OutOfRangeError
		vf  *services.VerificationFailedError
	)
	switch {
	case errors.As(err, &oor):
		c.JSON(http.StatusForbidden, gin.H{
			"error":    "You are outside the office radius",
			"distance": round1(oor.Distance),
			"radius":   oor.Radius,
		})
	case errors.As(err, &vf):
		body := gin.H{"error": "Face verification failed", "confidence": vf.Confidence}
		if vf.Message != "" {
			body["message"] = vf.Message
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
	case errors.Is(err, services.ErrAlreadyCheckedIn),
		errors.Is(err, services.ErrAlreadyCheckedOut),
		errors.Is(err, services.ErrNotCheckedIn),
		errors.Is(err, services.ErrLeaveProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
	case errors.Is(err, services.ErrCollaboratorUnavailable):
		log.Printf("[%s][%s] dependency unavailable: %v", area, op, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please retry"})
	default:
		log.Printf("[%s][%s] internal error: %v", area, op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
