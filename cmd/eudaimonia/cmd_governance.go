package main

import (
	"fmt"

	"eudaimonia/client/api"

	"github.com/spf13/cobra"
)

var (
	proposalTitle       string
	proposalDescription string
)

var proposalsCmd = &cobra.Command{
	Use:   "proposals <world-id>",
	Short: "List a world's governance proposals",
	Args:  cobra.ExactArgs(1),
	RunE:  runProposals,
}

var proposeCmd = &cobra.Command{
	Use:   "propose <world-id>",
	Short: "Open a governance proposal in a world",
	Args:  cobra.ExactArgs(1),
	RunE:  runPropose,
}

var voteCmd = &cobra.Command{
	Use:       "vote <proposal-id> <agree|disagree|abstain>",
	Short:     "Vote on a proposal",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"agree", "disagree", "abstain"},
	RunE:      runVote,
}

func init() {
	proposeCmd.Flags().StringVar(&proposalTitle, "title", "", "Proposal title")
	proposeCmd.Flags().StringVar(&proposalDescription, "description", "", "Proposal description")
	_ = proposeCmd.MarkFlagRequired("title")

	rootCmd.AddCommand(proposalsCmd, proposeCmd, voteCmd)
}

func runProposals(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}
	proposals, err := s.api.Proposals(cmd.Context(), args[0])
	section(cmd.OutOrStdout(), "Proposals", err, len(proposals), "No proposals in this world yet.", func(i int) string {
		p := proposals[i]
		return fmt.Sprintf("%s  %s (%d votes)", p.ID, p.Title, p.VoteCount)
	})
	return nil
}

func runPropose(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}
	proposal, err := s.api.CreateProposal().Run(cmd.Context(), api.ProposalRequest{
		Title:       proposalTitle,
		Description: proposalDescription,
		WorldID:     args[0],
	})
	if err != nil {
		return fmt.Errorf("proposal failed: %s", describe(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Opened proposal %s\n", proposal.ID)
	return nil
}

func runVote(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}
	vote, err := s.api.CastVote().Run(cmd.Context(), api.VoteRequest{ProposalID: args[0], Choice: args[1]})
	if err != nil {
		return fmt.Errorf("vote failed: %s", describe(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Voted %s\n", vote.Choice)
	return nil
}
