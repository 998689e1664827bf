// Package tui is the interactive view over the socket index: a
// port-centric and a process-centric table, both feeding the same
// termination pipeline with an explicit confirmation step.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pranshuparmar/portreap/internal/index"
	"github.com/pranshuparmar/portreap/internal/reaper"
	"github.com/pranshuparmar/portreap/internal/session"
	"github.com/pranshuparmar/portreap/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#005f87")).
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5fafd7")).
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")).
				Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5fafd7")).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#22aa22")).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Background(lipgloss.Color("#767676")).
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")).
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf5f")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5fdf5f")).
		Bold(true)
)

type tab int

const (
	tabPorts tab = iota
	tabProcesses
)

type modelState int

const (
	stateList modelState = iota
	stateDetail
)

// pendingKill is a kill awaiting its y/N confirmation.
type pendingKill struct {
	req  model.TerminationRequest
	pids []int
}

type MainModel struct {
	state     modelState
	activeTab tab

	portTable     table.Model
	attachedTable table.Model
	procTable     table.Model
	input         textinput.Model
	viewport      viewport.Model

	sess   *session.Session
	engine *reaper.Engine
	ix     *index.SocketIndex

	showAll   bool
	statusMsg string
	pending   *pendingKill
	killing   bool
	detailPID int

	width    int
	height   int
	quitting bool
	version  string
}

func InitialModel(version string) MainModel {
	portColumns := []table.Column{
		{Title: "Port", Width: 6},
		{Title: "Proto", Width: 6},
		{Title: "Address", Width: 24},
		{Title: "State", Width: 14},
		{Title: "Process", Width: 24},
	}
	pt := table.New(
		table.WithColumns(portColumns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = tableHeaderStyle.BorderForeground(lipgloss.Color("#585858"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")).
		Background(lipgloss.Color("#005faf")).
		Bold(false)
	pt.SetStyles(s)

	attachedColumns := []table.Column{
		{Title: "PID", Width: 8},
		{Title: "Process", Width: 20},
		{Title: "User", Width: 14},
	}
	at := table.New(
		table.WithColumns(attachedColumns),
		table.WithFocused(false),
		table.WithHeight(20),
	)
	at.SetStyles(s)

	procColumns := []table.Column{
		{Title: "PID", Width: 8},
		{Title: "Process", Width: 22},
		{Title: "User", Width: 14},
		{Title: "Sockets", Width: 8},
		{Title: "Ports", Width: 30},
	}
	prt := table.New(
		table.WithColumns(procColumns),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	prt.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Filter port, process, state..."
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Blur()

	vp := viewport.New(0, 0)

	sess := session.New()
	return MainModel{
		state:         stateList,
		activeTab:     tabPorts,
		portTable:     pt,
		attachedTable: at,
		procTable:     prt,
		input:         ti,
		viewport:      vp,
		sess:          sess,
		engine:        reaper.New(reaper.OSSignaller{}),
		version:       version,
	}
}

func Start(version string) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	p := tea.NewProgram(InitialModel(version), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.rebuild())
}
