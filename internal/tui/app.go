// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for the divider.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The wizard flow itself (input -> settings -> results) lives in
// internal/wizard; this package owns the widgets around it.

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/class-divider/internal/config"
	"github.com/kingrea/class-divider/internal/logbook"
	"github.com/kingrea/class-divider/internal/logging"
	"github.com/kingrea/class-divider/internal/metrics"
	"github.com/kingrea/class-divider/internal/partition"
	"github.com/kingrea/class-divider/internal/roles"
	"github.com/kingrea/class-divider/internal/settings"
	"github.com/kingrea/class-divider/internal/wizard"
)

const logPanelLines = 6

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithDivider overrides the partitioner, typically with a seeded one.
func WithDivider(d wizard.Divider) AppOption {
	return func(a *App) {
		if d != nil {
			a.divider = d
		}
	}
}

// WithMetrics shares a metrics registry with the caller.
func WithMetrics(m *metrics.Metrics) AppOption {
	return func(a *App) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithLogger overrides the structured logger.
func WithLogger(l *logging.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config  *config.Config
	logger  *logging.Logger
	logbook *logbook.Logbook
	metrics *metrics.Metrics
	roles   *roles.Store
	divider wizard.Divider

	// wiz is the source of truth for the screen, roster, roles and groups.
	wiz wizard.State

	// Input screen
	names      textarea.Model
	fileInput  textinput.Model
	inputFocus inputFocus

	// Settings screen
	division      settings.Settings
	valueInput    textinput.Model
	roleList      list.Model
	roleInput     textinput.Model
	settingsFocus settingsFocus

	// Results screen
	results viewport.Model

	statusMsg string
	errMsg    string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App for the project rooted at projectDir.
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	store, err := roles.Open(cfg.RolesPath())
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), logbook.FileName))
	if err != nil {
		return nil, err
	}

	app := &App{
		config:   cfg,
		logbook:  lb,
		roles:    store,
		division: cfg.Settings(),
		metrics:  metrics.New(),
		divider:  partition.New(partition.WithNameFormat(cfg.Project.Groups.NameFormat)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.logger == nil {
		logger, err := logging.New(cfg)
		if err != nil {
			logger = logging.Nop()
			lb.Warn("Structured log unavailable: %v", err)
		}
		app.logger = logger
	}

	app.wiz = wizard.New(store.List())
	app.names = newNamesArea()
	app.fileInput = newFileInput()
	app.valueInput = newValueInput(app.division.Value)
	app.roleInput = newRoleInput()
	app.roleList = newRoleList()
	app.results = viewport.New(0, 0)
	app.refreshRoleList()
	app.focusInput(focusNames)

	lb.Info("Session opened · %d role(s) loaded from %s", len(app.wiz.Roles), filepath.Base(store.Path()))
	app.logger.Info("session opened", zap.Int("roles", len(app.wiz.Roles)))
	return app, nil
}

// Close flushes the structured log and writes the metrics textfile when one
// is configured.
func (a *App) Close() error {
	var firstErr error
	if err := a.metrics.WriteTextfile(a.config.MetricsTextfile()); err != nil {
		firstErr = err
		a.logger.Error("metrics textfile", zap.Error(err))
	}
	if err := a.logger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Screen reports which wizard step is showing.
func (a *App) Screen() wizard.Screen {
	return a.wiz.Screen
}

// Groups returns the current division result.
func (a *App) Groups() []partition.Group {
	return a.wiz.Groups
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// fail shows err on the current screen and records it.
func (a *App) fail(context string, err error) {
	a.errMsg = err.Error()
	a.statusMsg = ""
	a.logWarn("%s: %v", context, err)
	a.logger.Warn(context, zap.Error(err), zap.Stringer("screen", a.wiz.Screen))
}

func (a *App) clearMessages() {
	a.errMsg = ""
	a.statusMsg = ""
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textarea.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case rosterLoadedMsg:
		a.handleRosterLoaded(msg)
		return a, nil

	case exportFinishedMsg:
		a.handleExportFinished(msg)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.logInfo("Session closed")
			return a, tea.Quit
		}
	}

	switch a.wiz.Screen {
	case wizard.ScreenSettings:
		return a, a.updateSettings(msg)
	case wizard.ScreenResults:
		return a, a.updateResults(msg)
	default:
		return a, a.updateInput(msg)
	}
}

// setState moves the wizard and keeps the widgets in step with it.
func (a *App) setState(next wizard.State) {
	prev := a.wiz.Screen
	a.wiz = next
	if prev == next.Screen {
		if next.Screen == wizard.ScreenResults {
			a.refreshResults()
		}
		return
	}
	switch next.Screen {
	case wizard.ScreenInput:
		a.focusInput(focusNames)
	case wizard.ScreenSettings:
		a.focusSettings(focusValue)
	case wizard.ScreenResults:
		a.names.Blur()
		a.valueInput.Blur()
		a.roleInput.Blur()
		a.refreshResults()
	}
}

func (a *App) resize() {
	width := max(40, a.width-6)
	a.names.SetWidth(width)
	a.names.SetHeight(max(5, a.height-16))
	a.fileInput.Width = max(20, width-20)
	a.roleList.SetSize(width, max(6, a.height-22))
	a.results.Width = width
	a.results.Height = max(5, a.height-12)
	if a.wiz.Screen == wizard.ScreenResults {
		a.refreshResults()
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	var content string
	switch a.wiz.Screen {
	case wizard.ScreenSettings:
		content = a.viewSettings()
	case wizard.ScreenResults:
		content = a.viewResults()
	default:
		content = a.viewInput()
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ DIVIDER")
	sections := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", a.renderSteps()),
		boxStyle.Width(max(40, a.width-2)).Render(content),
	}
	if a.errMsg != "" {
		sections = append(sections, errorStyle.Render("⚠ "+a.errMsg))
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := mutedStyle.MarginTop(1).Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderSteps() string {
	steps := []struct {
		screen wizard.Screen
		label  string
	}{
		{wizard.ScreenInput, "1 Roster"},
		{wizard.ScreenSettings, "2 Settings"},
		{wizard.ScreenResults, "3 Results"},
	}
	parts := make([]string, len(steps))
	for i, step := range steps {
		if step.screen == a.wiz.Screen {
			parts[i] = accentStyle.Render(step.label)
		} else {
			parts[i] = mutedStyle.Render(step.label)
		}
	}
	return strings.Join(parts, mutedStyle.Render(" → "))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	head := accentStyle.Render(fmt.Sprintf("LOG · %s (%d)", filepath.Base(a.logbook.Path()), total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
