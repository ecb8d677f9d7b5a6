package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/quizstat/internal/model"
	"github.com/verte-zerg/quizstat/internal/stats"
)

func renderHistory(history []model.NamedTestSample, window, width int) string {
	if len(history) == 0 {
		return "No attempts found."
	}
	cards := renderSummaryCards(history, width)
	var buf bytes.Buffer
	if err := stats.RenderHistory(&buf, history, window, width); err != nil {
		return fmt.Sprintf("Failed to render history: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(history []model.NamedTestSample, width int) string {
	best := 0
	total := 0
	tests := map[string]bool{}
	for _, s := range history {
		total += s.Average
		if s.Average > best {
			best = s.Average
		}
		tests[s.TestName] = true
	}
	cards := []string{
		metricCard("Attempts", fmt.Sprintf("%d", len(history))),
		metricCard("Tests", fmt.Sprintf("%d", len(tests))),
		metricCard("Avg Score", fmt.Sprintf("%d%%", total/len(history))),
		metricCard("Best", fmt.Sprintf("%d%%", best)),
		metricCard("Last", fmt.Sprintf("%d%%", history[len(history)-1].Average)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderQuestions(topicName string, tests []model.TestStat, topicID int64) string {
	if topicID <= 0 {
		return "No topic selected. Press / to set a topic id."
	}
	var buf bytes.Buffer
	if err := stats.RenderTopicStatistics(&buf, topicName, tests); err != nil {
		return fmt.Sprintf("Failed to render topic: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
