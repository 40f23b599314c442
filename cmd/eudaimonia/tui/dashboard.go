package tui

import (
	"context"
	"fmt"
	"strings"

	"eudaimonia/cache"
	"eudaimonia/client/api"

	tea "github.com/charmbracelet/bubbletea"
)

// NoMembershipsPrompt is shown instead of an empty world list.
const NoMembershipsPrompt = "You have not joined any Living Worlds yet."

// feedLimit caps how many recent posts the dashboard shows.
const feedLimit = 10

type dashboardView struct {
	memberships region[api.Membership]
	feed        region[api.Post]
	profiles    region[api.SmartProfile]
	cursor      int
}

// load fetches the three regions concurrently; each one fills in as its
// response arrives.
func (d dashboardView) load(ctx context.Context, gen int, a *api.API) tea.Cmd {
	return tea.Batch(
		load(ctx, gen, slotMemberships, a.Memberships),
		load(ctx, gen, slotFeed, a.Feed),
		load(ctx, gen, slotProfiles, a.SmartProfiles),
	)
}

// stale returns loads for every region whose cache entry was invalidated.
func (d dashboardView) stale(ctx context.Context, gen int, a *api.API) tea.Cmd {
	var cmds []tea.Cmd
	if needsReload(a.Cache, api.KeyMemberships()) {
		cmds = append(cmds, load(ctx, gen, slotMemberships, a.Memberships))
	}
	if needsReload(a.Cache, api.KeyFeed()) {
		cmds = append(cmds, load(ctx, gen, slotFeed, a.Feed))
	}
	if needsReload(a.Cache, api.KeySmartProfiles()) {
		cmds = append(cmds, load(ctx, gen, slotProfiles, a.SmartProfiles))
	}
	return tea.Batch(cmds...)
}

func (d dashboardView) keys() []cache.Key {
	return []cache.Key{api.KeyMemberships(), api.KeyFeed(), api.KeySmartProfiles()}
}

func (d dashboardView) moveCursor(delta int) dashboardView {
	n := len(d.memberships.items)
	if d.memberships.state() != regionPopulated || n == 0 {
		return d
	}
	d.cursor = (d.cursor + delta + n) % n
	return d
}

// selected returns the membership under the cursor.
func (d dashboardView) selected() (api.Membership, bool) {
	if d.memberships.state() != regionPopulated || d.cursor >= len(d.memberships.items) {
		return api.Membership{}, false
	}
	return d.memberships.items[d.cursor], true
}

func (d dashboardView) View() string {
	var s strings.Builder
	s.WriteString(d.memberships.render("My Living Worlds", NoMembershipsPrompt, d.cursor, func(m api.Membership) string {
		name := m.WorldID
		if m.World != nil {
			name = m.World.Name
		}
		return fmt.Sprintf("%s (%s, reputation %d)", name, m.Role, m.Reputation)
	}))
	s.WriteString("\n")

	feed := d.feed
	if len(feed.items) > feedLimit {
		feed.items = feed.items[:feedLimit]
	}
	s.WriteString(feed.render("Recent posts", "No posts yet.", -1, postLine))
	s.WriteString("\n")

	s.WriteString(d.profiles.render("My profiles", "No smart profiles yet.", -1, func(p api.SmartProfile) string {
		if p.DID == "" {
			return p.Name
		}
		return fmt.Sprintf("%s (%s)", p.Name, p.DID)
	}))
	return s.String()
}

func postLine(p api.Post) string {
	author := p.AuthorID
	if p.Author != nil {
		author = p.Author.Username
	}
	line := fmt.Sprintf("%s: %s", author, p.Content)
	if p.World != nil {
		line += mutedStyle.UnsetPaddingLeft().Render(" in " + p.World.Name)
	}
	return line
}

func needsReload(c *cache.Cache, key cache.Key) bool {
	st := c.Observe(key)
	return st.Stale && !st.Loading
}
