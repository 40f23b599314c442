// Package tui is the interactive terminal client. The Model is the routing
// shell: it owns the session status and decides which view is on screen.
package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"eudaimonia/cache"
	"eudaimonia/client/api"
	"eudaimonia/client/apiclient"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var (
	errNoSession      = errors.New("no saved session")
	errSessionExpired = errors.New("your session has expired, please sign in again")
)

// TokenStore persists the access token between runs.
type TokenStore interface {
	Token() string
	Save(token string) error
	Clear() error
}

type sessionStatus int

const (
	statusLoading sessionStatus = iota
	statusAuthenticated
	statusUnauthenticated
)

func (s sessionStatus) String() string {
	switch s {
	case statusAuthenticated:
		return "authenticated"
	case statusUnauthenticated:
		return "unauthenticated"
	}
	return "loading"
}

type screen int

const (
	screenLogin screen = iota
	screenDashboard
	screenWorld
	screenProposals
)

type sessionMsg struct {
	user api.User
	err  error
}

type loginMsg struct{ err error }

type cacheChangedMsg struct{ key cache.Key }

type Options struct {
	API    *api.API
	Tokens TokenStore
	Log    *zap.Logger
	// Watch reloads on-screen regions whose cache entries are invalidated
	// from elsewhere, e.g. by a live listener.
	Watch bool
}

type Model struct {
	api    *api.API
	tokens TokenStore
	log    *zap.Logger

	root   context.Context
	ctx    context.Context
	cancel context.CancelFunc
	gen    int

	status sessionStatus
	me     *api.User
	screen screen

	login     loginView
	dashboard dashboardView
	world     worldView
	proposals proposalsView

	changes     <-chan cache.Key
	unsubscribe func()
	quitting    bool
}

func New(ctx context.Context, opts Options) Model {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		api:    opts.API,
		tokens: opts.Tokens,
		log:    log,
		root:   ctx,
		status: statusLoading,
		screen: screenLogin,
		login:  newLoginView(),
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	if opts.Watch {
		m.changes, m.unsubscribe = opts.API.Cache.Subscribe(cache.Key{})
	}
	return m
}

// Run starts the interactive program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkSession(), waitForChange(m.changes))
}

func (m Model) checkSession() tea.Cmd {
	ctx, a, tokens := m.root, m.api, m.tokens
	return func() tea.Msg {
		if tokens.Token() == "" {
			return sessionMsg{err: errNoSession}
		}
		me, err := a.Me(ctx)
		return sessionMsg{user: me, err: err}
	}
}

func (m Model) signIn() tea.Cmd {
	ctx, a, tokens := m.root, m.api, m.tokens
	username := strings.TrimSpace(m.login.username.Value())
	password := m.login.password.Value()
	return func() tea.Msg {
		pair, err := a.Login(ctx, username, password)
		if err != nil {
			return loginMsg{err: err}
		}
		return loginMsg{err: tokens.Save(pair.Access)}
	}
}

func waitForChange(ch <-chan cache.Key) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		key, ok := <-ch
		if !ok {
			return nil
		}
		return cacheChangedMsg{key: key}
	}
}

func isUnauthorized(err error) bool {
	return apiclient.IsStatus(err, http.StatusUnauthorized)
}

// leave cancels everything the current view started.
func (m Model) leave() Model {
	m.cancel()
	m.ctx, m.cancel = context.WithCancel(m.root)
	m.gen++
	return m
}

func (m Model) unauthenticated(reason error) Model {
	m = m.leave()
	m.status = statusUnauthenticated
	m.me = nil
	m.screen = screenLogin
	m.login = newLoginView()
	m.login.err = reason
	return m
}

// signOut forgets the token and everything cached under it.
func (m Model) signOut(reason error) Model {
	if err := m.tokens.Clear(); err != nil {
		m.log.Warn("failed to clear saved token", zap.Error(err))
	}
	m.api.Logout()
	return m.unauthenticated(reason)
}

func (m Model) navigate(to screen, worldID, worldName string) (Model, tea.Cmd) {
	m = m.leave()
	m.screen = to
	switch to {
	case screenDashboard:
		m.dashboard = dashboardView{cursor: m.dashboard.cursor}
		return m, m.dashboard.load(m.ctx, m.gen, m.api)
	case screenWorld:
		m.world = newWorldView(m.api, worldID)
		return m, m.world.load(m.ctx, m.gen, m.api)
	case screenProposals:
		m.proposals = newProposalsView(m.api, worldID, worldName)
		return m, m.proposals.load(m.ctx, m.gen, m.api)
	}
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.cancel()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.quitting = true
	return m, tea.Quit
}

// current reports whether a result belongs to the view on screen.
func (m Model) current(gen int) bool {
	return gen == m.gen && m.status == statusAuthenticated
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		switch m.status {
		case statusUnauthenticated:
			return m.updateLogin(msg)
		case statusAuthenticated:
			return m.updateScreen(msg)
		}
		if msg.String() == "q" {
			return m.quit()
		}
		return m, nil

	case sessionMsg:
		switch {
		case errors.Is(msg.err, errNoSession):
			return m.unauthenticated(nil), nil
		case isUnauthorized(msg.err):
			return m.signOut(errSessionExpired), nil
		case msg.err != nil:
			m.log.Warn("session check failed", zap.Error(msg.err))
			return m.unauthenticated(msg.err), nil
		}
		user := msg.user
		m.status = statusAuthenticated
		m.me = &user
		return m.navigate(screenDashboard, "", "")

	case loginMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.err = msg.err
			return m, nil
		}
		m.api.Logout()
		m.status = statusLoading
		return m, m.checkSession()

	case worldMsg:
		if !m.current(msg.gen) {
			return m, nil
		}
		if isUnauthorized(msg.err) {
			return m.signOut(errSessionExpired), nil
		}
		m.world.worldErr = msg.err
		if msg.err == nil {
			world := msg.world
			m.world.world = &world
		}
		return m, nil

	case loadedMsg[api.Membership]:
		if !m.current(msg.gen) {
			return m, nil
		}
		if isUnauthorized(msg.err) {
			return m.signOut(errSessionExpired), nil
		}
		m.dashboard.memberships.set(msg.items, msg.err)
		if m.dashboard.cursor >= len(m.dashboard.memberships.items) {
			m.dashboard.cursor = 0
		}
		return m, nil

	case loadedMsg[api.Post]:
		if !m.current(msg.gen) {
			return m, nil
		}
		if isUnauthorized(msg.err) {
			return m.signOut(errSessionExpired), nil
		}
		switch msg.slot {
		case slotFeed:
			m.dashboard.feed.set(msg.items, msg.err)
		case slotPosts:
			m.world.posts.set(msg.items, msg.err)
		}
		return m, nil

	case loadedMsg[api.SmartProfile]:
		if !m.current(msg.gen) {
			return m, nil
		}
		if isUnauthorized(msg.err) {
			return m.signOut(errSessionExpired), nil
		}
		m.dashboard.profiles.set(msg.items, msg.err)
		return m, nil

	case loadedMsg[api.Proposal]:
		if !m.current(msg.gen) {
			return m, nil
		}
		if isUnauthorized(msg.err) {
			return m.signOut(errSessionExpired), nil
		}
		m.proposals.proposals.set(msg.items, msg.err)
		if m.proposals.cursor >= len(m.proposals.proposals.items) {
			m.proposals.cursor = 0
		}
		return m, nil

	case postedMsg:
		if !m.current(msg.gen) {
			return m, nil
		}
		if isUnauthorized(msg.err) {
			return m.signOut(errSessionExpired), nil
		}
		m.world = m.world.posted(msg)
		if msg.err != nil {
			return m, nil
		}
		return m, m.world.loadPosts(m.ctx, m.gen, m.api)

	case votedMsg:
		if !m.current(msg.gen) {
			return m, nil
		}
		if isUnauthorized(msg.err) {
			return m.signOut(errSessionExpired), nil
		}
		m.proposals = m.proposals.voted(msg)
		if msg.err != nil {
			return m, nil
		}
		return m, m.proposals.load(m.ctx, m.gen, m.api)

	case cacheChangedMsg:
		return m, tea.Batch(m.reloadStale(), waitForChange(m.changes))
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return m.quit()
	}
	login, cmd, submit := m.login.update(msg)
	m.login = login
	if !submit {
		return m, cmd
	}
	m.login.busy = true
	m.login.err = nil
	return m, m.signIn()
}

func (m Model) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == screenWorld && m.world.compose.Focused() {
		switch msg.Type {
		case tea.KeyEsc:
			m.world.compose.Blur()
			return m, nil
		case tea.KeyEnter:
			var cmd tea.Cmd
			m.world, cmd = m.world.submit(m.ctx, m.gen)
			return m, cmd
		}
		var cmd tea.Cmd
		m.world.compose, cmd = m.world.compose.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "L":
		return m.signOut(nil), nil
	case "r":
		return m, m.refresh()
	}

	switch m.screen {
	case screenDashboard:
		switch msg.String() {
		case "up", "k":
			m.dashboard = m.dashboard.moveCursor(-1)
		case "down", "j":
			m.dashboard = m.dashboard.moveCursor(1)
		case "enter":
			if ms, ok := m.dashboard.selected(); ok {
				return m.navigate(screenWorld, ms.WorldID, "")
			}
		}

	case screenWorld:
		switch msg.String() {
		case "c", "tab":
			if !m.world.notFound() {
				m.world.compose.Focus()
			}
		case "p":
			if !m.world.notFound() {
				name := ""
				if m.world.world != nil {
					name = m.world.world.Name
				}
				return m.navigate(screenProposals, m.world.id, name)
			}
		case "esc", "b":
			return m.navigate(screenDashboard, "", "")
		}

	case screenProposals:
		switch msg.String() {
		case "up", "k":
			m.proposals = m.proposals.moveCursor(-1)
		case "down", "j":
			m.proposals = m.proposals.moveCursor(1)
		case "a":
			var cmd tea.Cmd
			m.proposals, cmd = m.proposals.cast(m.ctx, m.gen, "agree")
			return m, cmd
		case "d":
			var cmd tea.Cmd
			m.proposals, cmd = m.proposals.cast(m.ctx, m.gen, "disagree")
			return m, cmd
		case "esc", "b":
			return m.navigate(screenWorld, m.proposals.worldID, "")
		}
	}
	return m, nil
}

// refresh invalidates what the current view shows and loads it again.
func (m Model) refresh() tea.Cmd {
	var keys []cache.Key
	switch m.screen {
	case screenDashboard:
		keys = m.dashboard.keys()
	case screenWorld:
		keys = m.world.keys()
	case screenProposals:
		keys = []cache.Key{api.KeyProposals(m.proposals.worldID)}
	}
	for _, k := range keys {
		m.api.Cache.Invalidate(k)
	}
	return m.reloadStale()
}

func (m Model) reloadStale() tea.Cmd {
	if m.status != statusAuthenticated {
		return nil
	}
	switch m.screen {
	case screenDashboard:
		return m.dashboard.stale(m.ctx, m.gen, m.api)
	case screenWorld:
		return m.world.stale(m.ctx, m.gen, m.api)
	case screenProposals:
		return m.proposals.stale(m.ctx, m.gen, m.api)
	}
	return nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	title := "Eudaimonia"
	if m.me != nil {
		title += " · " + m.me.Username
	}
	s.WriteString(titleStyle.Render(title) + "\n")

	switch m.status {
	case statusLoading:
		s.WriteString("Checking session...\n")
		return s.String()
	case statusUnauthenticated:
		s.WriteString(m.login.View())
		s.WriteString(helpStyle.Render("Tab to switch fields, Enter to sign in, Esc to quit") + "\n")
		return s.String()
	}

	switch m.screen {
	case screenDashboard:
		s.WriteString(m.dashboard.View())
		s.WriteString(helpStyle.Render("↑/↓ select, Enter open world, r refresh, L sign out, q quit") + "\n")
	case screenWorld:
		s.WriteString(m.world.View())
		if m.world.compose.Focused() {
			s.WriteString(helpStyle.Render("Enter to post, Esc to stop typing") + "\n")
		} else {
			s.WriteString(helpStyle.Render("c compose, p proposals, r refresh, Esc back, q quit") + "\n")
		}
	case screenProposals:
		s.WriteString(m.proposals.View())
		s.WriteString(helpStyle.Render("↑/↓ select, a agree, d disagree, Esc back, q quit") + "\n")
	}
	return s.String()
}
