package httpHandler

import (
	"net/http"

	"eudaimonia/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	useCase *usecases.UserUseCase
	log     *zap.Logger
}

func NewUserHandler(useCase *usecases.UserUseCase, log *zap.Logger) *UserHandler {
	return &UserHandler{useCase: useCase, log: log}
}

// List handles GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.useCase.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, users)
}

// Get handles GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.useCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Profile handles GET /api/users/:id/profile
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.useCase.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Friends handles GET /api/users/:id/friends
func (h *UserHandler) Friends(c *gin.Context) {
	friends, err := h.useCase.Friends(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, friends)
}
