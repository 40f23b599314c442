package httpHandler

import (
	"net/http"

	"eudaimonia/middleware"
	"eudaimonia/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GovernanceHandler serves /api/proposals and /api/votes.
type GovernanceHandler struct {
	useCase *usecases.GovernanceUseCase
	log     *zap.Logger
}

func NewGovernanceHandler(useCase *usecases.GovernanceUseCase, log *zap.Logger) *GovernanceHandler {
	return &GovernanceHandler{useCase: useCase, log: log}
}

// ListProposals handles GET /api/proposals?world_id=
func (h *GovernanceHandler) ListProposals(c *gin.Context) {
	proposals, err := h.useCase.ListProposals(c.Request.Context(), c.Query("world_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, proposals)
}

// CreateProposal handles POST /api/proposals
func (h *GovernanceHandler) CreateProposal(c *gin.Context) {
	var req usecases.ProposalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	proposal, err := h.useCase.CreateProposal(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, proposal)
}

// GetProposal handles GET /api/proposals/:id
func (h *GovernanceHandler) GetProposal(c *gin.Context) {
	proposal, err := h.useCase.GetProposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}

// ProposalVotes handles GET /api/proposals/:id/votes
func (h *GovernanceHandler) ProposalVotes(c *gin.Context) {
	votes, err := h.useCase.Votes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, votes)
}

// MyVotes handles GET /api/votes
func (h *GovernanceHandler) MyVotes(c *gin.Context) {
	votes, err := h.useCase.MyVotes(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, votes)
}

// CastVote handles POST /api/votes
func (h *GovernanceHandler) CastVote(c *gin.Context) {
	var req usecases.VoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	vote, err := h.useCase.Cast(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, vote)
}
