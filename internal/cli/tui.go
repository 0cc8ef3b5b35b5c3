package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/equipneeds/pkg/needs"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	toggleOnStyle     = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// NeedsModel - Interactive needs browser
// =============================================================================

// NeedsModel is the bubbletea model for browsing a needs report. Filters are
// toggled live over the unfiltered records.
type NeedsModel struct {
	All     []*needs.Record
	Visible []*needs.Record
	Opts    needs.Options
	Cursor  int
	Offset  int
	Height  int

	// Editing is set while the free-text query is being typed.
	Editing bool
}

// newNeedsModel creates a browser over records with opts as the initial
// filter state.
func newNeedsModel(records []*needs.Record, opts needs.Options) NeedsModel {
	m := NeedsModel{All: records, Opts: opts, Height: 15}
	m.refilter()
	return m
}

// refilter recomputes the visible records and clamps the cursor.
func (m *NeedsModel) refilter() {
	m.Visible = needs.Apply(m.All, needs.Predicates(m.Opts)...)
	if m.Cursor >= len(m.Visible) {
		m.Cursor = max(len(m.Visible)-1, 0)
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

func (m NeedsModel) Init() tea.Cmd {
	return nil
}

func (m NeedsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Editing {
			return m.updateQuery(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
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
		case "n":
			m.Opts.OnlyNeeded = !m.Opts.OnlyNeeded
			m.refilter()
		case "f":
			m.Opts.OnlyFaction = !m.Opts.OnlyFaction
			m.refilter()
		case "c":
			m.Opts.Cadetable = !m.Opts.Cadetable
			m.refilter()
		case "/":
			m.Editing = true
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

// updateQuery edits the free-text filter. Every keystroke refilters.
func (m NeedsModel) updateQuery(msg tea.KeyMsg) NeedsModel {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.Editing = false
		return m
	case tea.KeyBackspace:
		if r := []rune(m.Opts.Text); len(r) > 0 {
			m.Opts.Text = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.Opts.Text += " "
	case tea.KeyRunes:
		m.Opts.Text += string(msg.Runes)
	default:
		return m
	}
	m.refilter()
	return m
}

func (m NeedsModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Crew Needs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  n needed  f faction  c cadet  / search  q quit"))
	b.WriteString("\n")
	b.WriteString(m.filterLine())
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(listDimStyle.Render("  no materials match"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Visible))
	page := m.Visible[m.Offset:end]
	rows := needsRows(page)
	for i := range rows {
		cursor := "  "
		if m.Offset+i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = append([]string{cursor}, rows[i]...)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Material", "Rarity", "Need", "Have", "Best source", "Crew").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			base := lipgloss.NewStyle()
			if m.Offset+row == m.Cursor {
				return base.Inherit(listSelectedStyle)
			}
			if row >= 0 && row < len(page) && !needs.StillNeeded(page[row]) {
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))
	return b.String()
}

// filterLine shows the active toggles and the query.
func (m NeedsModel) filterLine() string {
	toggle := func(name string, on bool) string {
		if on {
			return toggleOnStyle.Render("● " + name)
		}
		return listDimStyle.Render("○ " + name)
	}
	query := m.Opts.Text
	if m.Editing {
		query += "▏"
	}
	parts := []string{
		toggle("needed", m.Opts.OnlyNeeded),
		toggle("faction", m.Opts.OnlyFaction),
		toggle("cadet", m.Opts.Cadetable),
		listDimStyle.Render("search: ") + StyleValue.Render(query),
	}
	return strings.Join(parts, "  ")
}
