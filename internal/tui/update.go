package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pranshuparmar/portreap/pkg/model"
)

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case indexMsg:
		m.ix = m.sess.Current()
		// A post-kill rebuild keeps the outcome summary on screen.
		if !strings.HasPrefix(m.statusMsg, "Terminated") {
			m.statusMsg = fmt.Sprintf("Snapshot %d: %d sockets", msg.generation, m.ix.Len())
		}
		m.updatePortTable()
		m.updateProcTable()
		if m.state == stateDetail && m.detailPID > 0 {
			m.detailForPID(m.detailPID)
		}
		return m, nil

	case outcomesMsg:
		m.killing = false
		m.statusMsg = summarize(msg)
		// The targets changed the world; take a fresh snapshot.
		return m, m.rebuild()

	case error:
		m.killing = false
		m.statusMsg = fmt.Sprintf("Error: %v", msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Confirmation prompt swallows everything except its answers.
	if m.pending != nil {
		switch msg.String() {
		case "y", "Y":
			req := m.pending.req
			req.Confirmed = true
			m.pending = nil
			m.killing = true
			m.statusMsg = ""
			return m, m.runKill(req)
		case "n", "N", "esc", "q":
			m.pending = nil
			m.statusMsg = "Cancelled — no signal sent"
		}
		return m, nil
	}

	if m.killing {
		return m, nil
	}

	if m.state == stateDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

func (m MainModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "backspace":
		m.state = stateList
		m.detailPID = 0
		return m, nil
	case "k":
		m.stageKillPID(m.detailPID, model.GracefulThenForceful)
		return m, nil
	case "K":
		m.stageKillPID(m.detailPID, model.ForcefulOnly)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m MainModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		if msg.String() == "enter" || msg.String() == "esc" {
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.updatePortTable()
		m.updateProcTable()
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "/":
		m.input.Focus()
		return m, textinput.Blink

	case "1":
		m.activeTab = tabPorts
		return m, nil

	case "2":
		m.activeTab = tabProcesses
		return m, nil

	case "tab":
		if m.activeTab == tabPorts {
			m.activeTab = tabProcesses
		} else {
			m.activeTab = tabPorts
		}
		return m, nil

	case "a":
		m.showAll = !m.showAll
		m.updatePortTable()
		m.updateProcTable()
		return m, nil

	case "r":
		m.statusMsg = "Rebuilding snapshot..."
		return m, m.rebuild()

	case "enter":
		pid, ok := m.currentPID()
		if !ok {
			m.statusMsg = "No process resolved for this selection"
			return m, nil
		}
		m.state = stateDetail
		m.detailPID = pid
		m.viewport.GotoTop()
		m.detailForPID(pid)
		return m, nil

	case "k":
		m.stageKillSelection(model.GracefulThenForceful)
		return m, nil

	case "K":
		m.stageKillSelection(model.ForcefulOnly)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabPorts:
		prev := m.portTable.Cursor()
		m.portTable, cmd = m.portTable.Update(msg)
		if m.portTable.Cursor() != prev {
			m.updateAttachedTable()
		}
	case tabProcesses:
		m.procTable, cmd = m.procTable.Update(msg)
	}
	return m, cmd
}

// currentPID resolves the selection of the active tab to one PID.
func (m *MainModel) currentPID() (int, bool) {
	switch m.activeTab {
	case tabPorts:
		port, ok := m.selectedPort()
		if !ok || m.ix == nil {
			return 0, false
		}
		for _, r := range m.ix.ByPort(port) {
			if r.PID > 0 {
				return r.PID, true
			}
		}
		return 0, false
	case tabProcesses:
		return m.selectedPID()
	}
	return 0, false
}

// stageKillSelection builds a termination request for the active tab's
// selection and parks it behind the confirmation prompt.
func (m *MainModel) stageKillSelection(policy model.SignalPolicy) {
	if m.ix == nil {
		return
	}

	req := model.TerminationRequest{Policy: policy}
	switch m.activeTab {
	case tabPorts:
		port, ok := m.selectedPort()
		if !ok {
			return
		}
		req.Kind = model.TargetPort
		req.Port = port
	case tabProcesses:
		pid, ok := m.selectedPID()
		if !ok {
			m.statusMsg = "No killable process selected"
			return
		}
		req.Kind = model.TargetPID
		req.PID = pid
	}
	m.stageKill(req)
}

func (m *MainModel) stageKillPID(pid int, policy model.SignalPolicy) {
	if pid <= 0 || m.ix == nil {
		return
	}
	m.stageKill(model.TerminationRequest{
		Kind:   model.TargetPID,
		PID:    pid,
		Policy: policy,
	})
}

func (m *MainModel) stageKill(req model.TerminationRequest) {
	pids, err := m.engine.ResolveTargets(req, m.ix)
	if err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
		return
	}
	m.pending = &pendingKill{req: req, pids: pids}
	m.statusMsg = ""
}

func (m *MainModel) resize(width, height int) {
	m.width = width
	m.height = height

	availableWidth := width - 6
	if availableWidth < 20 {
		availableWidth = 20
	}
	tableHeight := height - 10
	if tableHeight < 5 {
		tableHeight = 5
	}

	portPaneWidth := availableWidth * 6 / 10
	if portPaneWidth < 30 {
		portPaneWidth = 30
	}
	m.portTable.SetWidth(portPaneWidth)
	m.portTable.SetHeight(tableHeight)

	attachedWidth := availableWidth - portPaneWidth - 4
	if attachedWidth < 20 {
		attachedWidth = 20
	}
	m.attachedTable.SetWidth(attachedWidth)
	m.attachedTable.SetHeight(tableHeight)

	m.procTable.SetWidth(availableWidth)
	m.procTable.SetHeight(tableHeight)

	m.viewport.Width = availableWidth
	m.viewport.Height = height - 8
	if m.viewport.Height < 0 {
		m.viewport.Height = 0
	}
	if m.state == stateDetail && m.detailPID > 0 {
		m.detailForPID(m.detailPID)
	}
}
