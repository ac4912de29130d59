package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuEntry is one selectable action in the interactive menu.
type MenuEntry struct {
	Label   string
	Command string // suggested adapter-studio invocation, empty for Exit
}

// DefaultEntries is the studio menu shown when the CLI runs with no
// subcommand on a terminal.
func DefaultEntries() []MenuEntry {
	return []MenuEntry{
		{Label: "Generate Training Data", Command: "adapter-studio generate --help"},
		{Label: "Train Adapter", Command: "adapter-studio train-adapter --help"},
		{Label: "Train Draft Model", Command: "adapter-studio train-draft --help"},
		{Label: "Export Adapter", Command: "adapter-studio export --help"},
		{Label: "Run Full Pipeline", Command: "adapter-studio train-adapter --demo"},
		{Label: "Exit"},
	}
}

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true)
	menuCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	menuSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	menuHelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Menu is the bubbletea model for the studio menu.
type Menu struct {
	entries []MenuEntry
	cursor  int
	choice  *MenuEntry
}

// NewMenu creates a menu over the given entries.
func NewMenu(entries []MenuEntry) Menu {
	return Menu{entries: entries}
}

// Choice returns the selected entry, or nil when the menu was dismissed.
func (m Menu) Choice() *MenuEntry {
	return m.choice
}

// Init implements tea.Model.
func (m Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case "enter":
		m.choice = &m.entries[m.cursor]
		return m, tea.Quit

	default:
		// Digit shortcuts select and confirm in one keystroke.
		if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= len(m.entries) {
			m.cursor = n - 1
			m.choice = &m.entries[m.cursor]
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Menu) View() string {
	var b strings.Builder

	b.WriteString(menuTitleStyle.Render("What would you like to do?"))
	b.WriteString("\n\n")

	for i, entry := range m.entries {
		label := fmt.Sprintf("[%d] %s", i+1, entry.Label)
		if i == m.cursor {
			b.WriteString(menuCursorStyle.Render("> "))
			b.WriteString(menuSelectedStyle.Render(label))
		} else {
			b.WriteString("  ")
			b.WriteString(label)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(menuHelpStyle.Render("↑/↓ move · enter select · q quit"))
	b.WriteString("\n")

	return b.String()
}

// RunMenu runs the interactive menu and returns the selection, or nil
// when the user quit without choosing.
func RunMenu(entries []MenuEntry) (*MenuEntry, error) {
	program := tea.NewProgram(NewMenu(entries))
	model, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running menu: %w", err)
	}
	menu, ok := model.(Menu)
	if !ok {
		return nil, nil
	}
	return menu.Choice(), nil
}
