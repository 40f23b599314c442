package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"eudaimonia/cache"
	"eudaimonia/client/api"
	"eudaimonia/client/apiclient"
	"eudaimonia/client/mutation"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// WorldNotFound replaces the world view when the world does not exist.
const WorldNotFound = "Living World not found."

type worldMsg struct {
	gen   int
	world api.World
	err   error
}

type postedMsg struct {
	gen int
	err error
}

type worldView struct {
	id       string
	world    *api.World
	worldErr error
	posts    region[api.Post]

	compose    textinput.Model
	post       *mutation.Mutation[api.PostRequest, api.Post]
	submitting bool
	flash      string
}

func newWorldView(a *api.API, id string) worldView {
	compose := newInput("Share something with this world")
	compose.CharLimit = 2000
	return worldView{id: id, compose: compose, post: a.CreatePost()}
}

func (w worldView) load(ctx context.Context, gen int, a *api.API) tea.Cmd {
	return tea.Batch(w.loadWorld(ctx, gen, a), w.loadPosts(ctx, gen, a))
}

func (w worldView) loadWorld(ctx context.Context, gen int, a *api.API) tea.Cmd {
	id := w.id
	return func() tea.Msg {
		world, err := a.World(ctx, id)
		return worldMsg{gen: gen, world: world, err: err}
	}
}

func (w worldView) loadPosts(ctx context.Context, gen int, a *api.API) tea.Cmd {
	id := w.id
	return load(ctx, gen, slotPosts, func(ctx context.Context) ([]api.Post, error) {
		return a.WorldPosts(ctx, id)
	})
}

func (w worldView) stale(ctx context.Context, gen int, a *api.API) tea.Cmd {
	var cmds []tea.Cmd
	if needsReload(a.Cache, api.KeyWorld(w.id)) {
		cmds = append(cmds, w.loadWorld(ctx, gen, a))
	}
	if needsReload(a.Cache, api.KeyPosts(w.id)) {
		cmds = append(cmds, w.loadPosts(ctx, gen, a))
	}
	return tea.Batch(cmds...)
}

func (w worldView) keys() []cache.Key {
	return []cache.Key{api.KeyWorld(w.id), api.KeyPosts(w.id)}
}

func (w worldView) notFound() bool {
	return apiclient.IsStatus(w.worldErr, http.StatusNotFound)
}

// canSubmit reports whether the compose box holds something worth posting.
func (w worldView) canSubmit() bool {
	return !w.submitting && strings.TrimSpace(w.compose.Value()) != ""
}

func (w worldView) submit(ctx context.Context, gen int) (worldView, tea.Cmd) {
	if !w.canSubmit() {
		return w, nil
	}
	w.submitting = true
	w.flash = ""
	in := api.PostRequest{Content: strings.TrimSpace(w.compose.Value()), WorldID: w.id}
	post := w.post
	return w, func() tea.Msg {
		_, err := post.Run(ctx, in)
		return postedMsg{gen: gen, err: err}
	}
}

func (w worldView) posted(msg postedMsg) worldView {
	w.submitting = false
	if msg.err != nil {
		w.flash = errorStyle.Render("✗ " + describe(msg.err))
		return w
	}
	w.compose.Reset()
	w.flash = successStyle.Render("✓ Posted")
	return w
}

func (w worldView) View() string {
	if w.notFound() {
		return errorStyle.Render(WorldNotFound) + "\n"
	}

	var s strings.Builder
	switch {
	case w.world == nil && w.worldErr == nil:
		s.WriteString(mutedStyle.Render("Loading...") + "\n")
	case w.worldErr != nil:
		s.WriteString(errorStyle.Render("✗ "+describe(w.worldErr)) + "\n")
	default:
		s.WriteString(promptStyle.Render(w.world.Name) + "\n")
		if w.world.Description != "" {
			s.WriteString(w.world.Description + "\n")
		}
		owner := w.world.OwnerID
		if w.world.Owner != nil {
			owner = w.world.Owner.Username
		}
		s.WriteString(mutedStyle.UnsetPaddingLeft().Render(
			fmt.Sprintf("%s · %d members · owned by %s", w.world.Theme, w.world.MemberCount, owner)) + "\n")
	}
	s.WriteString("\n")

	s.WriteString(w.posts.render("Posts", "No posts in this world yet.", -1, postLine))
	s.WriteString("\n")

	s.WriteString(headerStyle.Render("New post") + "\n")
	s.WriteString(w.compose.View() + "\n")
	switch {
	case w.submitting:
		s.WriteString("Posting...\n")
	case w.flash != "":
		s.WriteString(w.flash + "\n")
	}
	return s.String()
}
