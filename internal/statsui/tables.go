package statsui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/quizstat/internal/model"
)

const barWidth = 10

func testColumns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "Attempts", Width: 8},
		{Title: "Average", Width: 7},
		{Title: "Score", Width: barWidth},
	}
	return append([]table.Column{{Title: "Test", Width: flexWidth(width, fixed)}}, fixed...)
}

func topicColumns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "Attempts", Width: 8},
		{Title: "Average", Width: 7},
		{Title: "Questions", Width: 9},
		{Title: "Score", Width: barWidth},
	}
	return append([]table.Column{{Title: "Test", Width: flexWidth(width, fixed)}}, fixed...)
}

// flexWidth is what remains for the first column after the fixed ones and
// one cell of padding per column.
func flexWidth(width int, fixed []table.Column) int {
	used := len(fixed) + 1
	for _, c := range fixed {
		used += c.Width
	}
	return maxInt(10, width-used)
}

func testRows(reports []model.UserTestReport) []table.Row {
	rows := make([]table.Row, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, table.Row{
			r.TestName,
			fmt.Sprintf("%d", r.Attempts),
			fmt.Sprintf("%d%%", r.Average),
			scoreBar(r.Average, barWidth),
		})
	}
	return rows
}

func topicRows(tests []model.TestStat) []table.Row {
	rows := make([]table.Row, 0, len(tests))
	for _, t := range tests {
		rows = append(rows, table.Row{
			t.Name,
			fmt.Sprintf("%d", t.Attempts),
			fmt.Sprintf("%d%%", t.Average),
			fmt.Sprintf("%d", len(t.Questions)),
			scoreBar(t.Average, barWidth),
		})
	}
	return rows
}

// scoreBar draws a percentage as a bar of width cells.
func scoreBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func newTable(columns []table.Column, rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetStyles(tableStyles())
	return t
}

func (m *Model) applyTables(bodyHeight int) {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.testTable.SetRows(nil)
	m.testTable.SetColumns(testColumns(width))
	m.testTable.SetRows(testRows(m.report.User.Tests))
	m.topicTable.SetRows(nil)
	m.topicTable.SetColumns(topicColumns(width))
	m.topicTable.SetRows(topicRows(m.report.Tests))
	for _, t := range []*table.Model{&m.testTable, &m.topicTable} {
		t.SetWidth(width)
		t.SetHeight(maxInt(1, bodyHeight-1))
		t.SetHeight(fitTableHeight(t, bodyHeight))
		t.GotoTop()
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// fitTableHeight returns the table height whose rendered view fills
// bodyHeight lines, header included.
func fitTableHeight(t *table.Model, bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := t.Height()
	for i := 0; i < 2; i++ {
		viewHeight := lipgloss.Height(t.View())
		if viewHeight == target {
			return height
		}
		height = maxInt(1, height+target-viewHeight)
		t.SetHeight(height)
	}
	return height
}
