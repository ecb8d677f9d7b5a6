// Package tui provides the Bubble Tea quiz runner.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/quizstat/internal/model"
	statsPkg "github.com/verte-zerg/quizstat/internal/stats"
)

// Saver persists a finished attempt.
type Saver interface {
	SaveStatistics(ctx context.Context, records []model.AnswerRecord) error
}

type phase int

const (
	phaseAsking phase = iota
	phaseFeedback
	phaseDone
)

// Model implements the Bubble Tea quiz UI.
type Model struct {
	ctx   context.Context
	saver Saver
	user  model.User
	test  model.Test

	width  int
	height int

	index   int
	cursor  int
	chosen  int
	phase   phase
	records []model.AnswerRecord
	saveErr error

	hasLast     bool
	lastScore   int
	testAverage int
	testRuns    int
}

var (
	questionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	optionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a quiz model for one run of test. history is the
// user's earlier attempts and feeds the footer.
func NewModel(ctx context.Context, saver Saver, user model.User, test model.Test, history []model.NamedTestSample) *Model {
	m := &Model{
		ctx:    ctx,
		saver:  saver,
		user:   user,
		test:   test,
		chosen: -1,
	}
	m.loadFooterStats(history)
	if len(test.Questions) == 0 {
		m.phase = phaseDone
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
		return m, tea.Quit
	}
	switch m.phase {
	case phaseDone:
		if msg.String() == "q" || msg.Type == tea.KeyEnter {
			return m, tea.Quit
		}
	case phaseFeedback:
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
			m.next()
		}
	case phaseAsking:
		answers := m.test.Questions[m.index].Answers
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(answers)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.answer(m.cursor)
		default:
			if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
				r := msg.Runes[0]
				if r >= '1' && r <= '9' && int(r-'1') < len(answers) {
					m.cursor = int(r - '1')
					m.answer(m.cursor)
				}
			}
		}
	}
	return m, nil
}

func (m *Model) answer(option int) {
	q := m.test.Questions[m.index]
	if option < 0 || option >= len(q.Answers) {
		return
	}
	m.chosen = option
	m.records = append(m.records, model.AnswerRecord{
		UserID:     m.user.ID,
		QuestionID: q.ID,
		TestID:     m.test.ID,
		TestName:   m.test.Name,
		Correct:    q.Answers[option].Correct,
	})
	m.phase = phaseFeedback
}

func (m *Model) next() {
	m.index++
	m.cursor = 0
	m.chosen = -1
	if m.index < len(m.test.Questions) {
		m.phase = phaseAsking
		return
	}
	m.finishAttempt()
}

func (m *Model) finishAttempt() {
	m.phase = phaseDone
	if err := m.saver.SaveStatistics(m.ctx, m.records); err != nil {
		m.saveErr = err
		logErrf("failed to save attempt: %v\n", err)
		return
	}
	score := m.Score()
	m.testAverage = statsPkg.MergeSample(
		model.UserTestReport{TestName: m.test.Name, Attempts: m.testRuns, Average: m.testAverage},
		model.NamedTestSample{TestName: m.test.Name, Average: score},
	).Average
	m.testRuns++
	m.lastScore = score
	m.hasLast = true
}

// Records returns the answers given so far.
func (m *Model) Records() []model.AnswerRecord {
	return m.records
}

// Score returns the percentage of correct answers given so far.
func (m *Model) Score() int {
	return statsPkg.Percentage(statsPkg.CalculateRightAnswers(m.records), len(m.records))
}

// Done reports whether every question was answered.
func (m *Model) Done() bool {
	return m.phase == phaseDone
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderContent()
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderContent() string {
	width := m.contentWidth()
	if m.phase == phaseDone {
		return m.renderSummary()
	}
	q := m.test.Questions[m.index]
	var b strings.Builder
	b.WriteString(questionStyle.Render(wrapText(q.Description, width)))
	b.WriteString("\n\n")
	for i, a := range q.Answers {
		prefix := "  "
		style := optionStyle
		switch {
		case m.phase == phaseFeedback && a.Correct:
			style = correctStyle
		case m.phase == phaseFeedback && i == m.chosen:
			style = incorrectStyle
		case m.phase == phaseAsking && i == m.cursor:
			prefix = "> "
			style = cursorStyle
		}
		b.WriteString(style.Render(indentWrapped(fmt.Sprintf("%s%d. ", prefix, i+1), a.Description, width)))
		b.WriteString("\n")
	}
	if m.phase == phaseFeedback {
		b.WriteString("\n")
		if q.Answers[m.chosen].Correct {
			b.WriteString(correctStyle.Render("Correct."))
		} else {
			b.WriteString(incorrectStyle.Render("Wrong."))
		}
		b.WriteString(optionStyle.Render("  Press enter to continue."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderSummary() string {
	if len(m.test.Questions) == 0 {
		return fmt.Sprintf("Test %q has no questions. Press q to quit.", m.test.Name)
	}
	right := statsPkg.CalculateRightAnswers(m.records)
	summary := fmt.Sprintf("%s: %d/%d correct (%d%%)", m.test.Name, right, len(m.records), m.Score())
	if m.saveErr != nil {
		return summary + "\n" + incorrectStyle.Render("Attempt was not saved.") + "\nPress q to quit."
	}
	return summary + "\nPress q to quit."
}

func (m *Model) loadFooterStats(history []model.NamedTestSample) {
	var report model.UserTestReport
	for _, s := range history {
		if s.TestName != m.test.Name {
			continue
		}
		report = statsPkg.MergeSample(report, s)
		m.lastScore = s.Average
		m.hasLast = true
	}
	m.testRuns = report.Attempts
	m.testAverage = report.Average
}

func (m *Model) renderFooter() string {
	total := len(m.test.Questions)
	if total == 0 {
		return ""
	}
	current := m.index + 1
	if current > total {
		current = total
	}
	segments := []string{fmt.Sprintf("Question %d/%d", current, total)}
	if len(m.records) > 0 {
		segments = append(segments, fmt.Sprintf("Score %d%%", m.Score()))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d%%", m.lastScore))
	}
	if m.testRuns > 0 {
		segments = append(segments, fmt.Sprintf("Average %d%% over %d", m.testAverage, m.testRuns))
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
