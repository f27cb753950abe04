package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nateberkopec/failbell/internal/watch"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("247"))

	rowStyle = lipgloss.NewStyle()

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("57")).
				Foreground(lipgloss.Color("230"))

	statusNeutralStyle = lipgloss.NewStyle()
	statusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	inputStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputFocusedStyle = inputStyle.Copy().BorderForeground(lipgloss.Color("105"))

	tableGap = " │ "
)

var tableColumns = []struct {
	Title  string
	Weight float64
	Min    int
}{
	{"", 0.05, 2},
	{"Exit", 0.08, 4},
	{"Command", 0.37, 20},
	{"Dir", 0.22, 12},
	{"Took", 0.12, 6},
	{"When", 0.16, 8},
}

func renderView(m *Model) string {
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}

	var out []string
	out = append(out, renderHelpText(m))
	out = append(out, renderLogTable(m))
	out = append(out, renderStatusLine(m))
	out = append(out, renderInputField(m))

	return strings.Join(out, "\n")
}

func renderLogTable(m *Model) string {
	entries := m.log.Visible(m.failuresOnly)
	widths := calculateColumnWidths(m.width)

	builder := strings.Builder{}
	header := renderRow(tableHeaders(), widths, headerStyle)
	builder.WriteString(header)

	dataRows := m.dataRows()

	if len(entries) == 0 {
		linesUsed := 1
		for linesUsed < m.listArea.height {
			builder.WriteString("\n")
			builder.WriteString(strings.Repeat(" ", max(0, m.width)))
			linesUsed++
		}
		return builder.String()
	}

	start := m.scrollOffset
	end := min(start+dataRows, len(entries))
	linesUsed := 1

	now := m.now()
	for idx := start; idx < end; idx++ {
		builder.WriteString("\n")
		row := tableRowData(entries[idx], now)
		rowStr := renderRow(row, widths, rowStyle)
		if idx == m.selectedIndex && m.focus == focusLog {
			rowStr = selectedRowStyle.Width(m.width).Render(rowStr)
		}
		builder.WriteString(rowStr)
		linesUsed++
	}

	for linesUsed < m.listArea.height {
		builder.WriteString("\n")
		builder.WriteString(strings.Repeat(" ", max(0, m.width)))
		linesUsed++
	}

	return builder.String()
}

func renderHelpText(m *Model) string {
	filter := "all"
	if m.failuresOnly {
		filter = "failures"
	}
	help := fmt.Sprintf(
		"sound: %s %d%% • filter: %s • [s] sound • [t] test • [f] filter • [d] dismiss • [C] clear • [-/+] volume • [q] quit",
		bellEmoji(m.settings.Enabled), int(m.settings.Volume*100+0.5), filter,
	)
	return helpStyle.Width(m.width).Render(pad(help, m.width))
}

func renderStatusLine(m *Model) string {
	msg := m.status.text

	style := statusNeutralStyle
	switch m.status.kind {
	case statusError:
		style = statusErrorStyle
	case statusSuccess:
		style = statusSuccessStyle
	}

	if m.listening {
		listenLabel := fmt.Sprintf("listening %s", m.spin.View())
		if msg == "" {
			msg = listenLabel
		} else {
			msg = fmt.Sprintf("%s   %s", msg, listenLabel)
		}
	}

	return style.Width(m.width).Render(pad(msg, m.width))
}

func renderInputField(m *Model) string {
	view := m.input.View()
	if m.focus == focusInput {
		return inputFocusedStyle.Render(view)
	}
	return inputStyle.Render(view)
}

func tableHeaders() []string {
	titles := make([]string, len(tableColumns))
	for i, c := range tableColumns {
		titles[i] = c.Title
	}
	return titles
}

func tableRowData(entry *watch.Entry, now time.Time) []string {
	c := entry.Completion
	when := ""
	if !c.FinishedAt.IsZero() {
		when = humanizeAgo(now.Sub(c.FinishedAt))
	}
	return []string{
		formatOutcome(entry),
		fmt.Sprintf("%d", c.ExitCode),
		c.Command,
		c.Dir,
		formatDuration(c.Duration),
		when,
	}
}

func formatOutcome(entry *watch.Entry) string {
	if !entry.Completion.Failed() {
		return "✅"
	}
	if entry.Chimed {
		return "🔔"
	}
	return "❌"
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

func humanizeAgo(d time.Duration) string {
	if d < time.Second {
		return "just now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	// Only include columns with non-zero widths
	var parts []string
	visibleCols := 0
	for i, cell := range cells {
		if widths[i] > 0 {
			cell = truncate(cell, widths[i])
			parts = append(parts, lipgloss.NewStyle().Width(widths[i]).Render(cell))
			visibleCols++
		}
	}
	row := strings.Join(parts, tableGap)
	rowWidth := lipgloss.Width(row)
	target := 0
	for _, w := range widths {
		if w > 0 {
			target += w
		}
	}
	if visibleCols > 0 {
		target += (visibleCols - 1) * lipgloss.Width(tableGap)
	}
	if rowWidth < target {
		row += strings.Repeat(" ", target-rowWidth)
	}
	return style.Render(row)
}

func calculateColumnWidths(total int) []int {
	if total <= 0 {
		total = 80
	}

	widths := make([]int, len(tableColumns))

	// Try to fit as many columns as possible, starting from the left
	// Drop columns from the right when space is insufficient
	for numCols := len(tableColumns); numCols >= 1; numCols-- {
		gaps := numCols - 1
		gapWidth := lipgloss.Width(tableGap)
		available := total - gaps*gapWidth
		if available < numCols {
			continue // Not even enough for 1 char per column
		}

		// Calculate minimum required and total weight for visible columns
		minRequired := 0
		totalWeight := 0.0
		for i := 0; i < numCols; i++ {
			minRequired += tableColumns[i].Min
			totalWeight += tableColumns[i].Weight
		}

		// If we can fit these columns with their minimums, calculate their widths
		if available >= minRequired {
			// Calculate widths using weighted distribution
			sum := 0
			for i := 0; i < numCols; i++ {
				col := tableColumns[i]
				// Normalize weight based on visible columns only
				normalizedWeight := col.Weight / totalWeight
				width := int(float64(available) * normalizedWeight)
				if width < col.Min {
					width = col.Min
				}
				widths[i] = width
				sum += width
			}

			// Adjust to match available width
			diff := available - sum
			if diff > 0 {
				widths[numCols-1] += diff
			}

			// Ensure no column is less than 1
			for i := 0; i < numCols; i++ {
				if widths[i] < 1 {
					widths[i] = 1
				}
			}

			// Set remaining columns to 0 (hidden)
			for i := numCols; i < len(tableColumns); i++ {
				widths[i] = 0
			}

			return widths
		}
	}

	// If we can't even fit one column with its minimum, just show first column
	widths[0] = max(1, total)
	for i := 1; i < len(widths); i++ {
		widths[i] = 0
	}
	return widths
}

func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(text) <= width {
		return text
	}
	if width <= 1 {
		return lipgloss.NewStyle().MaxWidth(1).Render(text)
	}
	trimmed := lipgloss.NewStyle().MaxWidth(width - 1).Render(text)
	return trimmed + "…"
}

func pad(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func bellEmoji(enabled bool) string {
	if enabled {
		return "🔔"
	}
	return "🔕"
}
