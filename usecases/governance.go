package usecases

import (
	"context"
	"errors"
	"strings"

	"eudaimonia/entities"
	"eudaimonia/repositories"
)

type ProposalInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	WorldID     string `json:"world_id"`
}

type VoteInput struct {
	ProposalID string `json:"proposal_id"`
	Choice     string `json:"choice"`
}

// GovernanceUseCase covers proposals and the votes cast on them.
type GovernanceUseCase struct {
	repos *repositories.Repositories
	pub   Publisher
}

func NewGovernanceUseCase(repos *repositories.Repositories, pub Publisher) *GovernanceUseCase {
	return &GovernanceUseCase{repos: repos, pub: orNop(pub)}
}

func (uc *GovernanceUseCase) hydrateProposals(ctx context.Context, proposals []entities.Proposal) ([]entities.Proposal, error) {
	users := newUserLookup(uc.repos.Users)
	var err error
	for i := range proposals {
		if proposals[i].Creator, err = users.get(ctx, proposals[i].CreatorID); err != nil {
			return nil, err
		}
		if proposals[i].VoteCount, err = uc.repos.Votes.CountByProposalID(ctx, proposals[i].ID); err != nil {
			return nil, err
		}
	}
	return proposals, nil
}

func (uc *GovernanceUseCase) ListProposals(ctx context.Context, worldID string) ([]entities.Proposal, error) {
	var (
		proposals []entities.Proposal
		err       error
	)
	if worldID != "" {
		proposals, err = uc.repos.Proposals.GetByWorldID(ctx, worldID)
	} else {
		proposals, err = uc.repos.Proposals.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return uc.hydrateProposals(ctx, proposals)
}

func (uc *GovernanceUseCase) GetProposal(ctx context.Context, id string) (*entities.Proposal, error) {
	proposal, err := uc.repos.Proposals.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Proposal not found")
	}
	hydrated, err := uc.hydrateProposals(ctx, []entities.Proposal{*proposal})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

func (uc *GovernanceUseCase) CreateProposal(ctx context.Context, userID string, in ProposalInput) (*entities.Proposal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, newError(ErrValidation, "title is required")
	}
	if in.WorldID == "" {
		return nil, newError(ErrValidation, "world_id is required")
	}
	if _, err := uc.repos.Worlds.GetByID(ctx, in.WorldID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrValidation, "Invalid world \"%s\" - object does not exist.", in.WorldID)
		}
		return nil, err
	}

	proposal := &entities.Proposal{Title: title, Description: in.Description, WorldID: in.WorldID, CreatorID: userID}
	if err := uc.repos.Proposals.Create(ctx, proposal); err != nil {
		return nil, err
	}

	uc.pub.Publish("proposals", in.WorldID)
	return uc.GetProposal(ctx, proposal.ID)
}

// Votes returns the votes cast on one proposal.
func (uc *GovernanceUseCase) Votes(ctx context.Context, proposalID string) ([]entities.Vote, error) {
	if _, err := uc.repos.Proposals.GetByID(ctx, proposalID); err != nil {
		return nil, notFound(err, "Proposal not found")
	}
	votes, err := uc.repos.Votes.GetByProposalID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	users := newUserLookup(uc.repos.Users)
	for i := range votes {
		if votes[i].Voter, err = users.get(ctx, votes[i].VoterID); err != nil {
			return nil, err
		}
	}
	return votes, nil
}

// MyVotes returns the votes cast by userID.
func (uc *GovernanceUseCase) MyVotes(ctx context.Context, userID string) ([]entities.Vote, error) {
	return uc.repos.Votes.GetByVoterID(ctx, userID)
}

// Cast records userID's vote. A voter votes at most once per proposal.
func (uc *GovernanceUseCase) Cast(ctx context.Context, userID string, in VoteInput) (*entities.Vote, error) {
	if !entities.ValidChoice(in.Choice) {
		return nil, newError(ErrValidation, "\"%s\" is not a valid choice.", in.Choice)
	}
	if in.ProposalID == "" {
		return nil, newError(ErrValidation, "proposal_id is required")
	}
	proposal, err := uc.repos.Proposals.GetByID(ctx, in.ProposalID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrValidation, "Invalid proposal \"%s\" - object does not exist.", in.ProposalID)
		}
		return nil, err
	}

	if _, err := uc.repos.Votes.GetByProposalAndVoter(ctx, proposal.ID, userID); err == nil {
		return nil, newError(ErrConflict, "Already voted on this proposal")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	vote := &entities.Vote{ProposalID: proposal.ID, VoterID: userID, Choice: in.Choice}
	if err := uc.repos.Votes.Create(ctx, vote); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "Already voted on this proposal")
		}
		return nil, err
	}

	uc.pub.Publish("votes", proposal.ID)
	uc.pub.Publish("proposals", proposal.WorldID)
	uc.pub.Publish("proposal", proposal.ID)
	uc.pub.Publish("my-votes")
	return vote, nil
}
