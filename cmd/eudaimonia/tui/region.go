package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eudaimonia/client/apiclient"

	tea "github.com/charmbracelet/bubbletea"
)

// describe prefers the server's own message over the full request error.
func describe(err error) string {
	var he *apiclient.HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	return err.Error()
}

type regionState int

const (
	regionLoading regionState = iota
	regionEmpty
	regionError
	regionPopulated
)

// region is one independently loaded list on screen.
type region[T any] struct {
	items  []T
	err    error
	loaded bool
}

func (r region[T]) state() regionState {
	switch {
	case !r.loaded:
		return regionLoading
	case r.err != nil:
		return regionError
	case len(r.items) == 0:
		return regionEmpty
	}
	return regionPopulated
}

func (r *region[T]) set(items []T, err error) {
	r.loaded = true
	r.err = err
	if err == nil {
		r.items = items
	}
}

// render draws the region under title. row renders item i; selected is -1
// when the region has no cursor.
func (r region[T]) render(title, empty string, selected int, row func(T) string) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(title) + "\n")
	switch r.state() {
	case regionLoading:
		s.WriteString(mutedStyle.Render("Loading...") + "\n")
	case regionError:
		s.WriteString(normalStyle.Render(errorStyle.Render("✗ "+describe(r.err))) + "\n")
	case regionEmpty:
		s.WriteString(mutedStyle.Render(empty) + "\n")
	default:
		for i, item := range r.items {
			if i == selected {
				s.WriteString(fmt.Sprintf("> %s\n", selectedStyle.Render(row(item))))
				continue
			}
			s.WriteString(normalStyle.Render(row(item)) + "\n")
		}
	}
	return s.String()
}

type slot int

const (
	slotMemberships slot = iota
	slotFeed
	slotProfiles
	slotPosts
	slotProposals
)

// loadedMsg delivers one region's fetch result. Results from a view the user
// already left carry an old gen and are dropped.
type loadedMsg[T any] struct {
	gen   int
	slot  slot
	items []T
	err   error
}

func load[T any](ctx context.Context, gen int, s slot, fn func(context.Context) ([]T, error)) tea.Cmd {
	return func() tea.Msg {
		items, err := fn(ctx)
		return loadedMsg[T]{gen: gen, slot: s, items: items, err: err}
	}
}
