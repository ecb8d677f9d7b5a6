// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/quizstat/internal/model"
	"github.com/verte-zerg/quizstat/internal/stats"
)

const (
	tabTests = iota
	tabHistory
	tabTopic
	tabQuestions
)

var tabNames = []string{"Tests", "History", "Topic", "Questions"}

// curveWindows are the moving average windows reachable with -/=.
var curveWindows = []int{1, 3, 5, 10, 20, 50}

var (
	accent = lipgloss.Color("#5FAFD7")
	muted  = lipgloss.Color("#767676")

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	headerStyle      = lipgloss.NewStyle().Foreground(muted)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F5F"))
	cardStyle        = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder(), true).BorderForeground(muted)
	cardTitleStyle   = lipgloss.NewStyle().Foreground(muted)
	cardValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	tableMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#BCBCBC"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	ctx   context.Context
	svc   *stats.Service
	users stats.UserFinder
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	activeTab  int
	viewports  []viewport.Model
	testTable  table.Model
	topicTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model and loads the first report. ctx bounds
// every report load. An empty cfg.Attempts falls back to the service policy.
func NewModel(ctx context.Context, svc *stats.Service, users stats.UserFinder, cfg model.StatsConfig) *Model {
	if cfg.Attempts == "" {
		cfg.Attempts = svc.Policy()
	}
	m := &Model{
		ctx:   ctx,
		svc:   svc,
		users: users,
		cfg:   cfg,
	}
	m.initInputs()
	m.viewports = make([]viewport.Model, len(tabNames))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.testTable = newTable(testColumns(80), nil, 1)
	m.topicTable = newTable(topicColumns(80), nil, 1)
	m.refreshReport()
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
		m.width, m.height = msg.Width, msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.focusActiveTable()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l", "tab":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "=", "+":
		m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
		m.renderTabContents()
		return m, nil
	case "-":
		m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
		m.renderTabContents()
		return m, nil
	case "/":
		return m.startFilter()
	case "r":
		m.refreshReport()
		return m, nil
	}

	if t := m.activeTable(); t != nil {
		switch msg.String() {
		case "g", "home":
			t.GotoTop()
			return m, nil
		case "G", "end":
			t.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		*t, cmd = t.Update(msg)
		return m, cmd
	}

	vp := &m.viewports[m.activeTab]
	switch msg.String() {
	case "g", "home":
		vp.GotoTop()
		return m, nil
	case "G", "end":
		vp.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	*vp, cmd = vp.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	return strings.Join([]string{
		fitLines(m.renderHeader(), m.width, headerHeight),
		fitLines(m.renderBody(bodyHeight), m.width, bodyHeight),
		fitLines(m.renderFooter(), m.width, footerHeight),
	}, "\n")
}

// layoutHeights splits the screen into a tab row plus settings line, the
// body, and a help line with an optional error line.
func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = 2
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight = 2
	}
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) bodyHeight() int {
	_, h, _ := m.layoutHeights()
	return h
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyHeight := m.bodyHeight()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.applyTables(bodyHeight)
	for i := range m.filterInputs {
		m.filterInputs[i].Width = maxInt(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
}

func (m *Model) activeTable() *table.Model {
	switch m.activeTab {
	case tabTests:
		return &m.testTable
	case tabTopic:
		return &m.topicTable
	}
	return nil
}

func (m *Model) focusActiveTable() {
	m.testTable.Blur()
	m.topicTable.Blur()
	if t := m.activeTable(); t != nil {
		t.Focus()
	}
}

// moveTab cycles through the tabs in either direction.
func (m *Model) moveTab(delta int) {
	n := len(tabNames)
	m.activeTab = ((m.activeTab+delta)%n + n) % n
	m.focusActiveTable()
}

func (m *Model) renderHeader() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		style := inactiveTabStyle
		if i == m.activeTab {
			style = activeTabStyle
		}
		tabs[i] = style.Render(name)
	}
	return strings.Join(tabs, headerStyle.Render("│")) + "\n" + m.renderSettings()
}

func (m *Model) renderSettings() string {
	login := m.cfg.Login
	if login == "" {
		login = "none"
	}
	topic := "none"
	if m.cfg.TopicID > 0 {
		topic = strconv.FormatInt(m.cfg.TopicID, 10)
		if m.report.TopicName != "" {
			topic += " (" + m.report.TopicName + ")"
		}
	}
	summary := fmt.Sprintf("Settings: login=%s  topic=%s  attempts=%s  window=%d",
		login, topic, m.cfg.Attempts, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/up/down: field  enter: apply  esc: cancel  ctrl+c: quit")
	}
	help := headerStyle.Render("Tabs: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	var notice string
	switch m.activeTab {
	case tabTests:
		switch {
		case m.cfg.Login == "":
			notice = "No user selected. Press / to set a login."
		case len(m.report.User.Tests) == 0:
			notice = "No attempts found."
		default:
			return fitLines(tableMutedStyle.Render(m.testTable.View()), m.width, height)
		}
	case tabTopic:
		switch {
		case m.cfg.TopicID <= 0:
			notice = "No topic selected. Press / to set a topic id."
		case len(m.report.Tests) == 0:
			notice = "No tests found."
		default:
			return fitLines(tableMutedStyle.Render(m.topicTable.View()), m.width, height)
		}
	default:
		return fitLines(m.viewports[m.activeTab].View(), m.width, height)
	}
	return fitLines(notice, m.width, height)
}

// refreshReport reloads the report for the current settings. On failure the
// previous report is dropped and the error is shown in the footer.
func (m *Model) refreshReport() {
	report, err := stats.BuildReport(m.ctx, m.svc, m.users, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		m.applyTables(m.bodyHeight())
		return
	}
	m.errMsg = ""
	m.report = report
	m.applyTables(m.bodyHeight())
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabHistory].SetContent(renderHistory(m.report.History, m.cfg.CurveWindow, width))
	m.viewports[tabQuestions].SetContent(renderQuestions(m.report.TopicName, m.report.Tests, m.cfg.TopicID))
}

func nextCurveWindow(n int) int {
	for _, w := range curveWindows {
		if w > n {
			return w
		}
	}
	return curveWindows[len(curveWindows)-1]
}

func prevCurveWindow(n int) int {
	for i := len(curveWindows) - 1; i >= 0; i-- {
		if curveWindows[i] < n {
			return curveWindows[i]
		}
	}
	return curveWindows[0]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
