package httpHandler

import (
	"io"
	"net/http"

	"eudaimonia/middleware"
	"eudaimonia/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WorldHandler struct {
	useCase *usecases.WorldUseCase
	log     *zap.Logger
}

func NewWorldHandler(useCase *usecases.WorldUseCase, log *zap.Logger) *WorldHandler {
	return &WorldHandler{useCase: useCase, log: log}
}

type joinRequest struct {
	ProfileID string `json:"profile_id"`
}

// List handles GET /api/worlds?theme=
func (h *WorldHandler) List(c *gin.Context) {
	theme := c.Query("theme")
	if theme == "" {
		theme = c.Query("category")
	}
	worlds, err := h.useCase.List(c.Request.Context(), theme)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, worlds)
}

// Create handles POST /api/worlds
func (h *WorldHandler) Create(c *gin.Context) {
	var req usecases.WorldInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	world, err := h.useCase.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, world)
}

// Get handles GET /api/worlds/:id
func (h *WorldHandler) Get(c *gin.Context) {
	world, err := h.useCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, world)
}

// Update handles PUT /api/worlds/:id
func (h *WorldHandler) Update(c *gin.Context) {
	var req usecases.WorldPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	world, err := h.useCase.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, world)
}

// Delete handles DELETE /api/worlds/:id
func (h *WorldHandler) Delete(c *gin.Context) {
	if err := h.useCase.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Join handles POST /api/worlds/:id/join. The body is optional.
func (h *WorldHandler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		respondBindError(c, err)
		return
	}
	membership, err := h.useCase.Join(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.ProfileID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, membership)
}

// Posts handles GET /api/worlds/:id/posts
func (h *WorldHandler) Posts(c *gin.Context) {
	posts, err := h.useCase.Posts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, posts)
}

// Members handles GET /api/worlds/:id/members
func (h *WorldHandler) Members(c *gin.Context) {
	members, err := h.useCase.Members(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, members)
}

// Memberships handles GET /api/memberships
func (h *WorldHandler) Memberships(c *gin.Context) {
	memberships, err := h.useCase.Memberships(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, memberships)
}
