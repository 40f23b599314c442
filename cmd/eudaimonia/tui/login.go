package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "> "
	in.PromptStyle = promptStyle
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

type loginView struct {
	username textinput.Model
	password textinput.Model
	busy     bool
	err      error
}

func newLoginView() loginView {
	v := loginView{
		username: newInput("username"),
		password: newInput("password"),
	}
	v.password.EchoMode = textinput.EchoPassword
	v.password.EchoCharacter = '•'
	v.username.Focus()
	return v
}

// ready reports whether both fields are filled in.
func (v loginView) ready() bool {
	return strings.TrimSpace(v.username.Value()) != "" && v.password.Value() != ""
}

// update handles a key; submit is true when the form should be sent.
func (v loginView) update(msg tea.KeyMsg) (loginView, tea.Cmd, bool) {
	if v.busy {
		return v, nil, false
	}
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		v.toggle()
		return v, nil, false
	case tea.KeyEnter:
		if v.username.Focused() {
			v.toggle()
			return v, nil, false
		}
		return v, nil, v.ready()
	}

	var cmd tea.Cmd
	if v.username.Focused() {
		v.username, cmd = v.username.Update(msg)
	} else {
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd, false
}

func (v *loginView) toggle() {
	if v.username.Focused() {
		v.username.Blur()
		v.password.Focus()
		return
	}
	v.password.Blur()
	v.username.Focus()
}

func (v loginView) View() string {
	var s strings.Builder
	s.WriteString(promptStyle.Render("Sign in to continue") + "\n\n")
	s.WriteString("Username\n" + v.username.View() + "\n\n")
	s.WriteString("Password\n" + v.password.View() + "\n\n")
	switch {
	case v.busy:
		s.WriteString("Signing in...\n")
	case v.err != nil:
		s.WriteString(errorStyle.Render("✗ "+describe(v.err)) + "\n")
	}
	return s.String()
}
