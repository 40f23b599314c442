package httpHandler

import (
	"net/http"

	"eudaimonia/middleware"
	"eudaimonia/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	useCase *usecases.ProfileUseCase
	log     *zap.Logger
}

func NewProfileHandler(useCase *usecases.ProfileUseCase, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{useCase: useCase, log: log}
}

// List handles GET /api/smart-profiles
func (h *ProfileHandler) List(c *gin.Context) {
	profiles, err := h.useCase.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, profiles)
}

// Create handles POST /api/smart-profiles
func (h *ProfileHandler) Create(c *gin.Context) {
	var req usecases.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	profile, err := h.useCase.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// Get handles GET /api/smart-profiles/:id
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.useCase.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update handles PUT /api/smart-profiles/:id
func (h *ProfileHandler) Update(c *gin.Context) {
	var req usecases.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	profile, err := h.useCase.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Delete handles DELETE /api/smart-profiles/:id
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.useCase.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
