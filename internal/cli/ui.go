package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/equipneeds/pkg/catalog"
	"github.com/matzehuels/equipneeds/pkg/needs"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Catalog Display
// =============================================================================

// printCatalogStats prints a catalog build summary on a single line.
func printCatalogStats(archetypes int, r catalog.Report) {
	parts := []string{fmt.Sprintf("%d archetypes", archetypes)}
	if r.Fetches > 0 {
		parts = append(parts, fmt.Sprintf("%d fetches", r.Fetches))
	}
	if len(r.Dropped) > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", len(r.Dropped)))
	}

	status := iconFresh
	statusStyle := styleComputed
	if r.Fetches == 0 && r.FromSnapshot > 0 {
		status = iconCached
		statusStyle = styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	fmt.Println(line)
}

// =============================================================================
// Needs Table
// =============================================================================

var styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// needsRows turns records into table rows:
// material, rarity, needed, have, best source, crew.
func needsRows(records []*needs.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Archetype.Name,
			strings.Repeat("★", r.Archetype.Rarity),
			strconv.Itoa(r.Needed),
			strconv.Itoa(r.Have),
			bestSource(r),
			crewSummary(r),
		})
	}
	return rows
}

// renderNeedsTable renders records as a bordered table. Rows still short
// of stock are highlighted.
func renderNeedsTable(records []*needs.Record) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Material", "Rarity", "Need", "Have", "Best source", "Crew").
		Rows(needsRows(records)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(records) {
				return base
			}
			switch {
			case col == 2 && needs.StillNeeded(records[row]):
				return base.Foreground(colorYellow)
			case col >= 4:
				return base.Foreground(colorGray)
			}
			return base
		})
	return t.Render()
}

// bestSource names the most desirable way to obtain r.
func bestSource(r *needs.Record) string {
	if len(r.Archetype.ItemSources) > 0 {
		s := r.Archetype.ItemSources[0]
		return fmt.Sprintf("%s (%s)", s.Name, s.Type)
	}
	if len(r.FactionSources) > 0 {
		f := r.FactionSources[0]
		return fmt.Sprintf("%s shop (%d %s)", f.FactionName, f.Amount, f.Currency)
	}
	if len(r.CadetSources) > 0 {
		return fmt.Sprintf("%s (cadet)", r.CadetSources[0].QuestName)
	}
	return "-"
}

// crewSummary lists the requesters with the largest shares first.
func crewSummary(r *needs.Record) string {
	counts := r.SortedCounts()
	parts := make([]string, 0, min(len(counts), 3))
	for _, c := range counts[:min(len(counts), 3)] {
		parts = append(parts, fmt.Sprintf("%s ×%d", c.Requester.Name, c.Count))
	}
	if extra := len(counts) - len(parts); extra > 0 {
		parts = append(parts, fmt.Sprintf("+%d", extra))
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Utilities
// =============================================================================

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
