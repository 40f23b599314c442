package httpHandler

import (
	"net/http"

	"eudaimonia/middleware"
	"eudaimonia/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	useCase *usecases.PostUseCase
	log     *zap.Logger
}

func NewPostHandler(useCase *usecases.PostUseCase, log *zap.Logger) *PostHandler {
	return &PostHandler{useCase: useCase, log: log}
}

// List handles GET /api/posts?world_id=
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.useCase.List(c.Request.Context(), c.Query("world_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, posts)
}

// Create handles POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req usecases.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	post, err := h.useCase.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Get handles GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.useCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
