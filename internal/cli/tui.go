package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gemindex/pkg/index"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listFilterStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// GemListModel - Interactive index browser
// =============================================================================

// GemListModel is the bubbletea model for browsing an index. It shows a
// scrolling table of gems; enter opens the entries of the selected gem and
// "/" starts an incremental name filter.
type GemListModel struct {
	Gems      []index.Gem
	Visible   []int // indexes into Gems passing the filter
	Cursor    int   // position in Visible
	Offset    int
	Height    int
	Filter    string
	Filtering bool
	Detail    *index.Gem
}

// NewGemListModel creates a browser over the gems of idx.
func NewGemListModel(idx *index.Index) GemListModel {
	m := GemListModel{Gems: idx.Gems(), Height: 15}
	m.applyFilter()
	return m
}

func (m *GemListModel) applyFilter() {
	q := strings.ToLower(m.Filter)
	visible := make([]int, 0, len(m.Gems))
	for i, g := range m.Gems {
		if q == "" || strings.Contains(strings.ToLower(g.Name), q) {
			visible = append(visible, i)
		}
	}
	m.Visible = visible
	m.Cursor, m.Offset = 0, 0
}

// Selected returns the gem under the cursor.
func (m GemListModel) Selected() (index.Gem, bool) {
	if m.Cursor >= len(m.Visible) {
		return index.Gem{}, false
	}
	return m.Gems[m.Visible[m.Cursor]], true
}

func (m GemListModel) Init() tea.Cmd {
	return nil
}

func (m GemListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Detail != nil {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc", "backspace", "enter":
				m.Detail = nil
			}
			return m, nil
		}
		if m.Filtering {
			return m.updateFilter(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.Filtering = true
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if g, ok := m.Selected(); ok {
				m.Detail = &g
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m GemListModel) updateFilter(msg tea.KeyMsg) GemListModel {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.Filtering = false
	case tea.KeyBackspace:
		if m.Filter != "" {
			m.Filter = m.Filter[:len(m.Filter)-1]
			m.applyFilter()
		}
	case tea.KeyRunes:
		m.Filter += string(msg.Runes)
		m.applyFilter()
	}
	return m
}

func (m GemListModel) View() string {
	if m.Detail != nil {
		return renderGem(*m.Detail) + "\n\n" + listDimStyle.Render("esc back  q quit")
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Gem Index"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  / filter  q quit"))
	b.WriteString("\n")
	if m.Filtering || m.Filter != "" {
		b.WriteString(listFilterStyle.Render("/" + m.Filter))
	}
	b.WriteString("\n")

	end := min(m.Offset+m.Height, len(m.Visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		g := m.Gems[m.Visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		latest, _ := g.Latest()
		rows = append(rows, []string{cursor, strings.TrimRight(g.Name, "\x00"), latest.Version, fmt.Sprint(len(g.Entries))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Gem", "Latest", "Versions").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	pos := 0
	if len(m.Visible) > 0 {
		pos = m.Cursor + 1
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", pos, len(m.Visible))))

	return b.String()
}
