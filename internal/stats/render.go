package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/quizstat/internal/model"
)

const (
	dateLayout       = "2006-01-02 15:04:05"
	maxQuestionWidth = 60
)

// RenderUserStatistics prints the per-test report of a user, weakest first.
func RenderUserStatistics(w io.Writer, us model.UserStatistics) error {
	name := strings.TrimSpace(us.FirstName + " " + us.LastName)
	if name == "" {
		name = us.Login
	}
	if _, err := fmt.Fprintf(w, "%s (%s)\n", name, us.Login); err != nil {
		return err
	}
	if len(us.Tests) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	rows := make([][]string, 0, len(us.Tests))
	for _, t := range us.Tests {
		rows = append(rows, []string{t.TestName, fmt.Sprintf("%d", t.Attempts), fmt.Sprintf("%d%%", t.Average)})
	}
	return writeLines(w, formatTable([]column{leftCol("Test"), rightCol("Attempts"), rightCol("Average")}, rows))
}

// RenderHistory prints every attempt in order followed by a trend line
// smoothed over window attempts and squeezed into width columns.
func RenderHistory(w io.Writer, history []model.NamedTestSample, window, width int) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	rows := make([][]string, 0, len(history))
	for _, s := range history {
		rows = append(rows, []string{s.Date.Local().Format(dateLayout), s.TestName, fmt.Sprintf("%d%%", s.Average)})
	}
	if err := writeLines(w, formatTable([]column{leftCol("Date"), leftCol("Test"), rightCol("Score")}, rows)); err != nil {
		return err
	}
	trend := Resample(HistoryTrend(history, window), width-len("Trend: "))
	_, err := fmt.Fprintf(w, "\nTrend: %s\n", Sparkline(trend))
	return err
}

// RenderTopicStatistics prints ranked tests of a topic and, for each test,
// its questions weakest first.
func RenderTopicStatistics(w io.Writer, topicName string, tests []model.TestStat) error {
	if _, err := fmt.Fprintf(w, "Topic: %s\n", topicName); err != nil {
		return err
	}
	if len(tests) == 0 {
		_, err := fmt.Fprintln(w, "No tests found.")
		return err
	}
	rows := make([][]string, 0, len(tests))
	for _, t := range tests {
		rows = append(rows, []string{t.Name, fmt.Sprintf("%d", t.Attempts), fmt.Sprintf("%d%%", t.Average), fmt.Sprintf("%d", len(t.Questions))})
	}
	if err := writeLines(w, formatTable([]column{leftCol("Test"), rightCol("Attempts"), rightCol("Average"), rightCol("Questions")}, rows)); err != nil {
		return err
	}
	for _, t := range tests {
		if len(t.Questions) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", t.Name); err != nil {
			return err
		}
		qrows := make([][]string, 0, len(t.Questions))
		for _, q := range t.Questions {
			qrows = append(qrows, []string{q.Description, fmt.Sprintf("%d", q.Attempts), fmt.Sprintf("%d%%", q.Average)})
		}
		if err := writeLines(w, formatTable([]column{{title: "Question", max: maxQuestionWidth}, rightCol("Attempts"), rightCol("Average")}, qrows)); err != nil {
			return err
		}
	}
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
