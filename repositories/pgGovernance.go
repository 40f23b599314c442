package repositories

import (
	"context"

	"eudaimonia/db"
	"eudaimonia/entities"
)

type proposalPgRepository struct {
	db db.Database
}

func NewProposalPgRepository(database db.Database) ProposalRepository {
	return &proposalPgRepository{db: database}
}

func (r *proposalPgRepository) Create(ctx context.Context, proposal *entities.Proposal) error {
	return translate(r.db.GetDB().WithContext(ctx).Create(proposal).Error)
}

func (r *proposalPgRepository) GetByID(ctx context.Context, id string) (*entities.Proposal, error) {
	var proposal entities.Proposal
	if err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&proposal).Error; err != nil {
		return nil, translate(err)
	}
	return &proposal, nil
}

func (r *proposalPgRepository) GetAll(ctx context.Context) ([]entities.Proposal, error) {
	var proposals []entities.Proposal
	err := r.db.GetDB().WithContext(ctx).Order("created_at DESC").Find(&proposals).Error
	return proposals, translate(err)
}

func (r *proposalPgRepository) GetByWorldID(ctx context.Context, worldID string) ([]entities.Proposal, error) {
	var proposals []entities.Proposal
	err := r.db.GetDB().WithContext(ctx).Where("world_id = ?", worldID).Order("created_at DESC").Find(&proposals).Error
	return proposals, translate(err)
}

type votePgRepository struct {
	db db.Database
}

func NewVotePgRepository(database db.Database) VoteRepository {
	return &votePgRepository{db: database}
}

func (r *votePgRepository) Create(ctx context.Context, vote *entities.Vote) error {
	return translate(r.db.GetDB().WithContext(ctx).Create(vote).Error)
}

func (r *votePgRepository) GetByProposalAndVoter(ctx context.Context, proposalID, voterID string) (*entities.Vote, error) {
	var vote entities.Vote
	err := r.db.GetDB().WithContext(ctx).Where("proposal_id = ? AND voter_id = ?", proposalID, voterID).First(&vote).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

func (r *votePgRepository) GetByProposalID(ctx context.Context, proposalID string) ([]entities.Vote, error) {
	var votes []entities.Vote
	err := r.db.GetDB().WithContext(ctx).Where("proposal_id = ?", proposalID).Order("created_at ASC").Find(&votes).Error
	return votes, translate(err)
}

func (r *votePgRepository) GetByVoterID(ctx context.Context, voterID string) ([]entities.Vote, error) {
	var votes []entities.Vote
	err := r.db.GetDB().WithContext(ctx).Where("voter_id = ?", voterID).Order("created_at DESC").Find(&votes).Error
	return votes, translate(err)
}

func (r *votePgRepository) CountByProposalID(ctx context.Context, proposalID string) (int64, error) {
	var count int64
	err := r.db.GetDB().WithContext(ctx).Model(&entities.Vote{}).Where("proposal_id = ?", proposalID).Count(&count).Error
	return count, translate(err)
}
