package statsui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/quizstat/internal/model"
	"github.com/verte-zerg/quizstat/internal/stats"
)

// Indexes into filterFields and Model.filterInputs.
const (
	filterLogin = iota
	filterTopic
	filterAttempts
	filterWindow
)

// filterField binds one settings input to a StatsConfig field.
type filterField struct {
	prompt string
	show   func(model.StatsConfig) string
	parse  func(*model.StatsConfig, string) error
}

var filterFields = []filterField{
	filterLogin: {
		prompt: "Login: ",
		show:   func(c model.StatsConfig) string { return c.Login },
		parse: func(c *model.StatsConfig, v string) error {
			c.Login = v
			return nil
		},
	},
	filterTopic: {
		prompt: "Topic id: ",
		show: func(c model.StatsConfig) string {
			if c.TopicID <= 0 {
				return ""
			}
			return strconv.FormatInt(c.TopicID, 10)
		},
		parse: func(c *model.StatsConfig, v string) error {
			c.TopicID = 0
			if v == "" {
				return nil
			}
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id < 0 {
				return fmt.Errorf("invalid topic id %q (use 0 or a positive integer)", v)
			}
			c.TopicID = id
			return nil
		},
	},
	filterAttempts: {
		prompt: "Attempts (sum/max/last): ",
		show:   func(c model.StatsConfig) string { return string(c.Attempts) },
		parse: func(c *model.StatsConfig, v string) error {
			policy, err := stats.ParseAttemptPolicy(v)
			if err != nil {
				return err
			}
			c.Attempts = policy
			return nil
		},
	},
	filterWindow: {
		prompt: "Curve window: ",
		show:   func(c model.StatsConfig) string { return strconv.Itoa(c.CurveWindow) },
		parse: func(c *model.StatsConfig, v string) error {
			c.CurveWindow = 1
			if v == "" {
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid curve window %q (use an integer >= 1)", v)
			}
			c.CurveWindow = n
			return nil
		},
	},
}

func (m *Model) initInputs() {
	m.filterInputs = make([]textinput.Model, len(filterFields))
	for i, field := range filterFields {
		input := textinput.New()
		input.Prompt = field.prompt
		input.Cursor.SetMode(cursor.CursorBlink)
		m.filterInputs[i] = input
	}
	m.setInputsFromConfig()
}

func (m *Model) setInputsFromConfig() {
	for i, field := range filterFields {
		m.filterInputs[i].SetValue(field.show(m.cfg))
	}
}

// applyFilter parses every input into a fresh config. m.cfg is left alone
// when any field is invalid.
func (m *Model) applyFilter() error {
	var cfg model.StatsConfig
	for i, field := range filterFields {
		if err := field.parse(&cfg, strings.TrimSpace(m.filterInputs[i].Value())); err != nil {
			return err
		}
	}
	m.cfg = cfg
	return nil
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.focusFilter(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeFilter()
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.closeFilter()
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.focusFilter(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.focusFilter(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) closeFilter() {
	m.filterMode = false
	m.filterError = ""
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
}

// focusFilter focuses input idx, wrapping around at both ends.
func (m *Model) focusFilter(idx int) tea.Cmd {
	n := len(m.filterInputs)
	if n == 0 {
		return nil
	}
	m.filterIndex = ((idx % n) + n) % n
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i != m.filterIndex {
			m.filterInputs[i].Blur()
			continue
		}
		cmd = m.filterInputs[i].Focus()
	}
	return cmd
}

func (m *Model) renderFilterForm() string {
	lines := make([]string, 0, len(m.filterInputs)+2)
	lines = append(lines, "Settings (enter to apply, esc to cancel)")
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}
