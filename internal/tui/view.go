package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pranshuparmar/portreap/pkg/model"
)

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := titleStyle.Render("portreap")
	if m.version != "" && m.version != "dev" {
		title += " " + footerStyle.Border(lipgloss.Border{}).Render(m.version)
	}

	portsTab := inactiveTabStyle.Render("1. Ports")
	procsTab := inactiveTabStyle.Render("2. Processes")
	if m.activeTab == tabPorts {
		portsTab = activeTabStyle.Render("1. Ports")
	} else {
		procsTab = activeTabStyle.Render("2. Processes")
	}

	fmt.Fprintf(&b, " %s %s %s\n\n", title, portsTab, procsTab)

	if m.state == stateDetail {
		b.WriteString(baseStyle.Render(m.viewport.View()))
		b.WriteString("\n")
		b.WriteString(m.statusLine())
		b.WriteString("\n")
		b.WriteString(footerStyle.Width(m.contentWidth()).Render(
			"↑/↓ scroll · k kill · K force kill · esc back · ctrl+c quit"))
		return b.String()
	}

	fmt.Fprintf(&b, " %s\n\n", m.input.View())

	switch m.activeTab {
	case tabPorts:
		left := baseStyle.Render(m.portTable.View())
		right := baseStyle.Render(m.attachedTable.View())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	case tabProcesses:
		b.WriteString(baseStyle.Render(m.procTable.View()))
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(footerStyle.Width(m.contentWidth()).Render(
		"enter details · k kill · K force kill · r rebuild · a all states · / filter · tab switch · q quit"))

	return b.String()
}

// statusLine renders, in priority order: the pending confirmation, the
// in-flight kill notice, or the last status message.
func (m MainModel) statusLine() string {
	switch {
	case m.pending != nil:
		target := fmt.Sprintf("pid %d", m.pending.req.PID)
		if m.pending.req.Kind == model.TargetPort {
			target = fmt.Sprintf("port %d (%d process(es))", m.pending.req.Port, len(m.pending.pids))
		}
		signal := "TERM, then KILL if ignored,"
		if m.pending.req.Policy == model.ForcefulOnly {
			signal = "KILL"
		}
		return " " + confirmStyle.Render(fmt.Sprintf("Send %s to %s? [y/N]", signal, target))
	case m.killing:
		return " " + confirmStyle.Render("Sending signals...")
	case strings.HasPrefix(m.statusMsg, "Error:"):
		return " " + errorStyle.Render(m.statusMsg)
	case strings.HasPrefix(m.statusMsg, "Terminated"):
		return " " + okStyle.Render(m.statusMsg)
	case m.statusMsg != "":
		return " " + m.statusMsg
	}
	return ""
}

func (m MainModel) contentWidth() int {
	w := m.width - 2
	if w < 40 {
		w = 40
	}
	return w
}
