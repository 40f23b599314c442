package httpHandler

import (
	"net/http"

	"eudaimonia/middleware"
	"eudaimonia/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FriendshipHandler struct {
	useCase *usecases.FriendshipUseCase
	log     *zap.Logger
}

func NewFriendshipHandler(useCase *usecases.FriendshipUseCase, log *zap.Logger) *FriendshipHandler {
	return &FriendshipHandler{useCase: useCase, log: log}
}

type friendRequest struct {
	User2Username string `json:"user2_username" binding:"required"`
}

// List handles GET /api/friendships
func (h *FriendshipHandler) List(c *gin.Context) {
	friendships, err := h.useCase.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, friendships)
}

// Pending handles GET /api/friendships/pending
func (h *FriendshipHandler) Pending(c *gin.Context) {
	friendships, err := h.useCase.Pending(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, friendships)
}

// Create handles POST /api/friendships
func (h *FriendshipHandler) Create(c *gin.Context) {
	var req friendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	friendship, err := h.useCase.Request(c.Request.Context(), middleware.UserID(c), req.User2Username)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, friendship)
}

// Accept handles POST /api/friendships/:id/accept
func (h *FriendshipHandler) Accept(c *gin.Context) {
	friendship, err := h.useCase.Accept(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, friendship)
}

// Reject handles POST /api/friendships/:id/reject
func (h *FriendshipHandler) Reject(c *gin.Context) {
	friendship, err := h.useCase.Reject(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, friendship)
}
