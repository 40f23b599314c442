package httpHandler

import (
	"errors"
	"net/http"
	"strconv"

	"eudaimonia/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// statusFor maps a usecase error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecases.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecases.ErrValidation), errors.Is(err, usecases.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, usecases.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, usecases.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unclassified errors are logged
// and hidden behind a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// respondList writes one page of items as {"count", "results"}.
func respondList[T any](c *gin.Context, items []T) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page."})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page_size."})
		return
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	results := make([]T, 0, size)
	if start := (page - 1) * size; start < len(items) {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		results = append(results, items[start:end]...)
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(items),
		"page":    page,
		"results": results,
	})
}
