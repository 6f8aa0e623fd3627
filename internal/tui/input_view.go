package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/class-divider/internal/roster"
)

type inputFocus int

const (
	focusNames inputFocus = iota
	focusFile
)

type rosterLoadedMsg struct {
	path string
	text string
	err  error
}

func newNamesArea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Ann Lee\nBob Stone\nCara Diaz\n..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetHeight(10)
	return ta
}

func newFileInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/class.txt or class.csv"
	ti.Prompt = "File: "
	ti.CharLimit = 512
	return ti
}

func (a *App) focusInput(target inputFocus) {
	a.inputFocus = target
	if target == focusFile {
		a.names.Blur()
		a.fileInput.Focus()
		return
	}
	a.fileInput.Blur()
	a.names.Focus()
}

func (a *App) updateInput(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+s":
			return a.submitRoster()
		case "tab", "shift+tab":
			if a.inputFocus == focusNames {
				a.focusInput(focusFile)
			} else {
				a.focusInput(focusNames)
			}
			return nil
		case "ctrl+o":
			return a.loadRosterFile()
		case "enter":
			if a.inputFocus == focusFile {
				return a.loadRosterFile()
			}
		case "esc":
			if a.inputFocus == focusFile {
				a.focusInput(focusNames)
				return nil
			}
		}
	}

	var cmd tea.Cmd
	if a.inputFocus == focusFile {
		a.fileInput, cmd = a.fileInput.Update(msg)
	} else {
		a.names, cmd = a.names.Update(msg)
	}
	return cmd
}

func (a *App) submitRoster() tea.Cmd {
	next, err := a.wiz.SubmitText(a.names.Value())
	if err != nil {
		a.fail("Roster rejected", err)
		return nil
	}
	a.clearMessages()
	a.setState(next)
	a.statusMsg = fmt.Sprintf("%d %s ready to divide", len(next.Names), pluralize(len(next.Names), "name", "names"))
	a.logInfo("Roster · %d name(s) submitted", len(next.Names))
	a.logger.Info("roster submitted", zap.Int("names", len(next.Names)))
	return nil
}

// loadRosterFile reads the file named in the path field off the update loop.
func (a *App) loadRosterFile() tea.Cmd {
	path := strings.TrimSpace(a.fileInput.Value())
	if path == "" {
		a.focusInput(focusFile)
		a.statusMsg = "Enter a .txt or .csv path, then press Enter"
		return nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.config.ProjectDir, path)
	}
	fallback := a.config.Project.Input.FallbackEncoding
	a.statusMsg = fmt.Sprintf("Loading %s...", filepath.Base(path))
	return func() tea.Msg {
		text, err := roster.ReadFile(path, fallback)
		return rosterLoadedMsg{path: path, text: text, err: err}
	}
}

func (a *App) handleRosterLoaded(msg rosterLoadedMsg) {
	if msg.err != nil {
		a.fail("Roster file", msg.err)
		return
	}
	a.clearMessages()
	a.names.SetValue(strings.TrimSpace(msg.text))
	a.focusInput(focusNames)
	count := len(roster.Parse(msg.text))
	a.statusMsg = fmt.Sprintf("Loaded %d %s from %s", count, pluralize(count, "name", "names"), filepath.Base(msg.path))
	a.logInfo("Roster · loaded %d name(s) from %s", count, msg.path)
	a.logger.Info("roster file loaded", zap.String("path", msg.path), zap.Int("names", count))
}

func (a *App) viewInput() string {
	title := accentStyle.Render("Enter the roster")
	intro := mutedStyle.Render("One name per line or separated by commas.")
	count := len(roster.Parse(a.names.Value()))
	counter := mutedStyle.Render(fmt.Sprintf("%d %s", count, pluralize(count, "name", "names")))
	hint := hintStyle.Render("Ctrl+S → next    Tab → file path    Ctrl+O / Enter → load file    Ctrl+C → quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		intro,
		"",
		a.names.View(),
		counter,
		"",
		a.fileInput.View(),
		hint,
	)
}
