package tui

import (
	"context"
	"fmt"
	"strings"

	"eudaimonia/client/api"
	"eudaimonia/client/mutation"

	tea "github.com/charmbracelet/bubbletea"
)

type votedMsg struct {
	gen    int
	choice string
	err    error
}

type proposalsView struct {
	worldID   string
	worldName string
	proposals region[api.Proposal]
	cursor    int

	vote   *mutation.Mutation[api.VoteRequest, api.Vote]
	voting bool
	flash  string
}

func newProposalsView(a *api.API, worldID, worldName string) proposalsView {
	return proposalsView{worldID: worldID, worldName: worldName, vote: a.CastVote()}
}

func (p proposalsView) load(ctx context.Context, gen int, a *api.API) tea.Cmd {
	id := p.worldID
	return load(ctx, gen, slotProposals, func(ctx context.Context) ([]api.Proposal, error) {
		return a.Proposals(ctx, id)
	})
}

func (p proposalsView) stale(ctx context.Context, gen int, a *api.API) tea.Cmd {
	if needsReload(a.Cache, api.KeyProposals(p.worldID)) {
		return p.load(ctx, gen, a)
	}
	return nil
}

func (p proposalsView) moveCursor(delta int) proposalsView {
	n := len(p.proposals.items)
	if p.proposals.state() != regionPopulated || n == 0 {
		return p
	}
	p.cursor = (p.cursor + delta + n) % n
	return p
}

// cast votes on the proposal under the cursor.
func (p proposalsView) cast(ctx context.Context, gen int, choice string) (proposalsView, tea.Cmd) {
	if p.voting || p.proposals.state() != regionPopulated || p.cursor >= len(p.proposals.items) {
		return p, nil
	}
	p.voting = true
	p.flash = ""
	in := api.VoteRequest{ProposalID: p.proposals.items[p.cursor].ID, Choice: choice, WorldID: p.worldID}
	vote := p.vote
	return p, func() tea.Msg {
		_, err := vote.Run(ctx, in)
		return votedMsg{gen: gen, choice: choice, err: err}
	}
}

func (p proposalsView) voted(msg votedMsg) proposalsView {
	p.voting = false
	if msg.err != nil {
		p.flash = errorStyle.Render("✗ " + describe(msg.err))
		return p
	}
	p.flash = successStyle.Render("✓ Voted " + msg.choice)
	return p
}

func (p proposalsView) View() string {
	var s strings.Builder
	title := "Proposals"
	if p.worldName != "" {
		title += " in " + p.worldName
	}
	s.WriteString(p.proposals.render(title, "No proposals in this world yet.", p.cursor, func(pr api.Proposal) string {
		return fmt.Sprintf("%s (%d votes)", pr.Title, pr.VoteCount)
	}))
	switch {
	case p.voting:
		s.WriteString("\nVoting...\n")
	case p.flash != "":
		s.WriteString("\n" + p.flash + "\n")
	}
	return s.String()
}
