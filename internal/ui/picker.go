package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrPickerCancelled is returned by RunPicker when the user quits without
// confirming.
var ErrPickerCancelled = errors.New("selection cancelled")

// PickerItem is one selectable driver.
type PickerItem struct {
	Name   string // e.g., "DevicePathDxe.efi"
	Detail string // e.g., the base address
}

// pickerKeyMap defines key bindings for the module picker
type pickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Confirm, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Toggle, k.All, k.Confirm, k.Quit},
	}
}

func newPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all/none"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}

// PickerModel is a Bubble Tea model for choosing which drivers to load.
type PickerModel struct {
	title    string
	items    []PickerItem
	checked  []bool
	cursor   int
	offset   int
	height   int
	keys     pickerKeyMap
	help     help.Model
	done     bool
	canceled bool
}

// NewPickerModel creates a picker with nothing checked.
func NewPickerModel(title string, items []PickerItem) PickerModel {
	_, height := GetTerminalSize()
	return PickerModel{
		title:   title,
		items:   items,
		checked: make([]bool, len(items)),
		height:  height,
		keys:    newPickerKeyMap(),
		help:    help.New(),
	}
}

// Init implements tea.Model
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.canceled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Confirm):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if len(m.items) > 0 {
				m.checked[m.cursor] = !m.checked[m.cursor]
			}
		case key.Matches(msg, m.keys.All):
			all := !m.allChecked()
			for i := range m.checked {
				m.checked[i] = all
			}
		}
	}

	m.scroll()
	return m, nil
}

func (m PickerModel) allChecked() bool {
	for _, c := range m.checked {
		if !c {
			return false
		}
	}
	return len(m.checked) > 0
}

// visibleRows is the number of list rows that fit under the title and help.
func (m PickerModel) visibleRows() int {
	return max(m.height-5, 3)
}

func (m *PickerModel) scroll() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// View implements tea.Model
func (m PickerModel) View() string {
	if m.done || m.canceled {
		return ""
	}

	var b strings.Builder
	b.WriteString(PickerTitleStyle.Render(m.title))
	b.WriteString(PickerMutedStyle.Render(fmt.Sprintf("  %d of %d selected", m.count(), len(m.items))))
	b.WriteString("\n\n")

	end := min(m.offset+m.visibleRows(), len(m.items))
	for i := m.offset; i < end; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = PickerCursorStyle.Render("→ ")
		}
		box := "[ ]"
		if m.checked[i] {
			box = PickerCheckedStyle.Render("[" + SuccessMarker + "]")
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %s\n", cursor, box, m.items[i].Name, PickerMutedStyle.Render(m.items[i].Detail)))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m PickerModel) count() int {
	n := 0
	for _, c := range m.checked {
		if c {
			n++
		}
	}
	return n
}

// Selected returns the names of the checked items, in list order.
func (m PickerModel) Selected() []string {
	var out []string
	for i, c := range m.checked {
		if c {
			out = append(out, m.items[i].Name)
		}
	}
	return out
}

// Canceled reports whether the user quit without confirming.
func (m PickerModel) Canceled() bool {
	return m.canceled
}

// RunPicker shows the picker on the given terminal streams and returns the
// chosen names.
func RunPicker(title string, items []PickerItem, in io.Reader, out io.Writer) ([]string, error) {
	p := tea.NewProgram(NewPickerModel(title, items), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}

	m, ok := final.(PickerModel)
	if !ok || m.Canceled() {
		return nil, ErrPickerCancelled
	}
	return m.Selected(), nil
}
