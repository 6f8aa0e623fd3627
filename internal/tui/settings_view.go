package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/class-divider/internal/partition"
	"github.com/kingrea/class-divider/internal/settings"
)

type settingsFocus int

const (
	focusValue settingsFocus = iota
	focusRoles
	focusNewRole
)

// roleItem implements list.Item for the role manager.
type roleItem struct {
	role partition.Role
}

func (i roleItem) Title() string       { return i.role.Name }
func (i roleItem) Description() string { return "" }
func (i roleItem) FilterValue() string { return i.role.Name }

func newValueInput(value int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Value: "
	ti.CharLimit = 4
	ti.Width = 6
	ti.SetValue(strconv.Itoa(value))
	return ti
}

func newRoleInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "New role name"
	ti.Prompt = "+ "
	ti.CharLimit = 64
	return ti
}

func newRoleList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	l := list.New(nil, delegate, 40, 8)
	l.Title = "Roles"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

func (a *App) refreshRoleList() {
	current := a.roles.List()
	items := make([]list.Item, len(current))
	for i, r := range current {
		items[i] = roleItem{role: r}
	}
	idx := a.roleList.Index()
	a.roleList.SetItems(items)
	if len(items) > 0 {
		a.roleList.Select(min(idx, len(items)-1))
	}
	a.wiz = a.wiz.SetRoles(current)
}

func (a *App) focusSettings(target settingsFocus) {
	a.settingsFocus = target
	a.valueInput.Blur()
	a.roleInput.Blur()
	switch target {
	case focusValue:
		a.valueInput.Focus()
	case focusNewRole:
		a.roleInput.Focus()
	}
}

func (a *App) updateSettings(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			a.clearMessages()
			a.setState(a.wiz.Back())
			a.logInfo("Settings · back to roster")
			return nil
		case "tab":
			a.focusSettings((a.settingsFocus + 1) % 3)
			return nil
		case "shift+tab":
			a.focusSettings((a.settingsFocus + 2) % 3)
			return nil
		case "ctrl+t":
			a.toggleMode()
			return nil
		case "left", "right":
			if a.settingsFocus == focusValue {
				a.toggleMode()
				return nil
			}
		case "enter":
			if a.settingsFocus == focusNewRole {
				a.addRole()
				return nil
			}
			return a.divide()
		case "x", "delete", "backspace":
			if a.settingsFocus == focusRoles {
				a.removeSelectedRole()
				return nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.settingsFocus {
	case focusValue:
		a.valueInput, cmd = a.valueInput.Update(msg)
	case focusRoles:
		a.roleList, cmd = a.roleList.Update(msg)
	case focusNewRole:
		a.roleInput, cmd = a.roleInput.Update(msg)
	}
	return cmd
}

func (a *App) toggleMode() {
	a.division = a.division.Toggle()
	a.statusMsg = fmt.Sprintf("Mode: %s", a.division.Mode.FriendlyName())
}

// currentSettings combines the selected mode with the typed value.
func (a *App) currentSettings() (settings.Settings, error) {
	value, err := settings.ParseValue(a.valueInput.Value())
	if err != nil {
		return settings.Settings{}, err
	}
	s := a.division
	s.Value = value
	return s, nil
}

func (a *App) divide() tea.Cmd {
	s, err := a.currentSettings()
	if err != nil {
		a.fail("Settings rejected", err)
		return nil
	}
	next, err := a.wiz.Generate(a.divider, s)
	if err != nil {
		a.fail("Settings rejected", err)
		return nil
	}
	a.division = s
	if err := a.config.SetSettings(s); err != nil {
		a.logWarn("Could not save settings: %v", err)
		a.logger.Warn("save settings", zap.Error(err))
	}
	a.clearMessages()
	a.setState(next)
	a.recordPartition("Divided", s)
	return nil
}

func (a *App) recordPartition(verb string, s settings.Settings) {
	groups := a.wiz.Groups
	a.metrics.ObservePartition(s.Mode, groups)
	a.statusMsg = fmt.Sprintf("%s %d %s into %d %s",
		verb, len(a.wiz.Names), pluralize(len(a.wiz.Names), "name", "names"),
		len(groups), pluralize(len(groups), "group", "groups"))
	a.logInfo("%s · %s · %d group(s), %d role(s)", verb, s, len(groups), len(a.wiz.Roles))
	a.logger.Info("partition",
		zap.String("action", verb),
		zap.Stringer("mode", s.Mode),
		zap.Int("value", s.Value),
		zap.Int("names", len(a.wiz.Names)),
		zap.Int("groups", len(groups)),
		zap.Int("roles", len(a.wiz.Roles)),
	)
}

func (a *App) addRole() {
	role, err := a.roles.Add(a.roleInput.Value())
	if err != nil {
		a.fail("Role not added", err)
		return
	}
	a.clearMessages()
	a.roleInput.Reset()
	a.refreshRoleList()
	a.roleList.Select(len(a.roleList.Items()) - 1)
	a.statusMsg = fmt.Sprintf("Added role %q", role.Name)
	a.logInfo("Roles · added %s", role.Name)
}

func (a *App) removeSelectedRole() {
	item, ok := a.roleList.SelectedItem().(roleItem)
	if !ok {
		a.fail("Role not removed", errors.New("no role selected"))
		return
	}
	removed, err := a.roles.Remove(item.role.ID)
	if err != nil {
		a.fail("Role not removed", err)
		return
	}
	a.clearMessages()
	a.refreshRoleList()
	a.statusMsg = fmt.Sprintf("Removed role %q", removed.Name)
	a.logInfo("Roles · removed %s", removed.Name)
}

func (a *App) viewSettings() string {
	title := accentStyle.Render("Division settings")
	count := len(a.wiz.Names)
	total := mutedStyle.Render(fmt.Sprintf("Roster: %d %s", count, pluralize(count, "name", "names")))

	modes := make([]string, 0, 2)
	for _, m := range []partition.Mode{partition.ByGroupCount, partition.ByMemberCount} {
		label := "( ) " + m.FriendlyName()
		style := mutedStyle
		if m == a.division.Mode {
			label = "(•) " + m.FriendlyName()
			style = accentStyle
		}
		modes = append(modes, style.Render(label))
	}

	var preview string
	s, err := a.currentSettings()
	if err == nil {
		err = s.Validate(count)
	}
	if err != nil {
		preview = errorStyle.Render(err.Error())
	} else {
		preview = mutedStyle.Render("Will create " + s.Plan(count).String())
	}

	roleHeader := mutedStyle.Render("Roles rotate inside each group. Leave the list empty to skip roles.")
	if len(a.roleList.Items()) == 0 {
		roleHeader = mutedStyle.Render("No roles: members will not get a role.")
	}

	hint := hintStyle.Render("Enter → divide    Tab → next field    ←/→ or Ctrl+T → mode    x → delete role    Esc → back")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		total,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, modes[0], "    ", modes[1]),
		a.valueInput.View(),
		preview,
		"",
		roleHeader,
		a.roleList.View(),
		a.roleInput.View(),
		hint,
	)
}
