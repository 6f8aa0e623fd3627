package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/class-divider/internal/export"
	"github.com/kingrea/class-divider/internal/partition"
)

const groupCardWidth = 30

var (
	groupTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
	roleBadgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	groupCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1).
			Width(groupCardWidth).
			MarginRight(1)
)

type exportFinishedMsg struct {
	format string
	path   string
	err    error
}

func (a *App) updateResults(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "s", "r":
			a.shuffle()
			return nil
		case "e":
			return a.exportCSV()
		case "c":
			return a.copyCSV()
		case "n":
			a.startOver()
			return nil
		case "esc":
			a.clearMessages()
			a.setState(a.wiz.Back())
			return nil
		case "q":
			a.logInfo("Session closed")
			return tea.Quit
		}
	}
	var cmd tea.Cmd
	a.results, cmd = a.results.Update(msg)
	return cmd
}

func (a *App) shuffle() {
	next, err := a.wiz.Shuffle(a.divider)
	if err != nil {
		a.fail("Shuffle failed", err)
		return
	}
	a.clearMessages()
	a.setState(next)
	if s, ok := next.LastSettings(); ok {
		a.recordPartition("Shuffled", s)
	}
}

func (a *App) startOver() {
	a.clearMessages()
	a.setState(a.wiz.StartOver())
	a.names.Reset()
	a.fileInput.Reset()
	a.statusMsg = "Started over"
	a.logInfo("Started over")
	a.logger.Info("start over")
}

// exportCSV writes the table to the configured export directory.
func (a *App) exportCSV() tea.Cmd {
	groups := a.wiz.Groups
	dir := a.config.ExportDir()
	filename := a.config.Project.Export.Filename
	a.statusMsg = "Exporting..."
	return func() tea.Msg {
		path, err := export.SaveCSV(dir, filename, groups)
		return exportFinishedMsg{format: "csv", path: path, err: err}
	}
}

func (a *App) copyCSV() tea.Cmd {
	groups := a.wiz.Groups
	return func() tea.Msg {
		return exportFinishedMsg{format: "clipboard", err: export.CopyCSV(groups)}
	}
}

func (a *App) handleExportFinished(msg exportFinishedMsg) {
	if msg.err != nil {
		a.errMsg = msg.err.Error()
		a.statusMsg = ""
		a.logError("Export (%s) failed: %v", msg.format, msg.err)
		a.logger.Error("export", zap.String("format", msg.format), zap.Error(msg.err))
		return
	}
	a.errMsg = ""
	a.metrics.ObserveExport(msg.format)
	switch msg.format {
	case "clipboard":
		a.statusMsg = "CSV copied to clipboard"
	default:
		a.statusMsg = fmt.Sprintf("Saved %s", msg.path)
	}
	a.logInfo("Export · %s %s", msg.format, filepath.Base(msg.path))
	a.logger.Info("export", zap.String("format", msg.format), zap.String("path", msg.path))
}

func (a *App) refreshResults() {
	a.results.SetContent(renderGroups(a.wiz.Groups, a.results.Width))
	a.results.GotoTop()
}

// renderGroups lays group cards out in as many columns as the width allows.
func renderGroups(groups []partition.Group, width int) string {
	if len(groups) == 0 {
		return mutedStyle.Render("No groups yet.")
	}
	perRow := max(1, width/(groupCardWidth+3))
	var rows []string
	for start := 0; start < len(groups); start += perRow {
		end := min(start+perRow, len(groups))
		cards := make([]string, 0, end-start)
		for _, g := range groups[start:end] {
			cards = append(cards, renderGroupCard(g))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

func renderGroupCard(g partition.Group) string {
	lines := []string{groupTitleStyle.Render(fmt.Sprintf("%s · %d", g.Name, g.Size()))}
	for _, m := range g.Members {
		line := m.Name
		if role := m.RoleName(); role != "" {
			line += " " + roleBadgeStyle.Render("["+role+"]")
		}
		lines = append(lines, line)
	}
	return groupCardStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) viewResults() string {
	title := accentStyle.Render("Groups")
	summary := ""
	if s, ok := a.wiz.LastSettings(); ok {
		summary = mutedStyle.Render(fmt.Sprintf("%s · %s", s.Mode.FriendlyName(), s.Plan(len(a.wiz.Names))))
	}
	hint := hintStyle.Render("s → shuffle again    e → export CSV    c → copy CSV    n → start over    Esc → settings    q → quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		"",
		a.results.View(),
		hint,
	)
}
