package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"

	"github.com/pranshuparmar/portreap/pkg/model"
)

type indexMsg struct{ generation uint64 }

type outcomesMsg []model.TerminationOutcome

// rebuild takes a fresh collection pass and replaces the index. Manual
// and one-shot: it only runs on start, on 'r', and after a kill.
func (m MainModel) rebuild() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ix, err := sess.Rebuild()
		if err != nil {
			return err
		}
		return indexMsg{generation: ix.Generation()}
	}
}

// runKill executes a confirmed termination request against the index
// generation the operator reviewed.
func (m MainModel) runKill(req model.TerminationRequest) tea.Cmd {
	engine, ix := m.engine, m.ix
	return func() tea.Msg {
		outcomes, err := engine.Terminate(req, ix)
		if err != nil {
			return err
		}
		return outcomesMsg(outcomes)
	}
}

// visible returns the records the current tab settings admit.
func (m *MainModel) visible() []model.SocketRecord {
	if m.ix == nil {
		return nil
	}
	var out []model.SocketRecord
	for _, r := range m.ix.Records() {
		if !m.showAll && r.Protocol == model.ProtoTCP && r.State != model.StateListen {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *MainModel) matchesFilter(fields ...string) bool {
	filter := strings.ToLower(m.input.Value())
	if filter == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), filter) {
			return true
		}
	}
	return false
}

func (m *MainModel) updatePortTable() {
	var rows []table.Row
	seen := make(map[string]bool)

	for _, r := range m.visible() {
		state := string(r.State)
		if r.Protocol == model.ProtoUDP {
			state = "-"
		}
		key := fmt.Sprintf("%d|%s|%s|%s", r.LocalPort, r.Protocol, r.LocalAddr, state)
		if seen[key] {
			continue
		}
		seen[key] = true

		names := m.portOwnerNames(r.LocalPort)
		if !m.matchesFilter(strconv.Itoa(r.LocalPort), string(r.Protocol), r.LocalAddr, state, names) {
			continue
		}
		rows = append(rows, table.Row{
			strconv.Itoa(r.LocalPort),
			string(r.Protocol),
			r.LocalAddr,
			state,
			names,
		})
	}

	m.portTable.SetRows(rows)
	if m.portTable.Cursor() >= len(rows) {
		m.portTable.SetCursor(0)
	}
	m.updateAttachedTable()
}

// portOwnerNames joins the distinct owner names of a port for display.
func (m *MainModel) portOwnerNames(port int) string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range m.ix.ByPort(port) {
		if !seen[r.ProcessName] {
			seen[r.ProcessName] = true
			names = append(names, r.ProcessName)
		}
	}
	return strings.Join(names, ", ")
}

func (m *MainModel) updateAttachedTable() {
	port, ok := m.selectedPort()
	if !ok {
		m.attachedTable.SetRows(nil)
		return
	}

	var rows []table.Row
	seen := make(map[int]bool)
	for _, r := range m.ix.ByPort(port) {
		if seen[r.PID] {
			continue
		}
		seen[r.PID] = true

		pid := "-"
		if r.PID > 0 {
			pid = strconv.Itoa(r.PID)
		}
		user := ""
		if p, ok := m.sess.Process(r.PID); ok {
			user = p.User
		}
		rows = append(rows, table.Row{pid, r.ProcessName, user})
	}
	m.attachedTable.SetRows(rows)
}

func (m *MainModel) updateProcTable() {
	if m.ix == nil {
		m.procTable.SetRows(nil)
		return
	}

	var rows []table.Row
	for _, pid := range m.ix.PIDs() {
		recs := m.ix.ByPID(pid)
		if len(recs) == 0 {
			continue
		}

		ports := distinctPorts(recs)
		name := recs[0].ProcessName
		user := ""
		if p, ok := m.sess.Process(pid); ok {
			user = p.User
		}
		pidStr := "-"
		if pid > 0 {
			pidStr = strconv.Itoa(pid)
		}
		if !m.matchesFilter(pidStr, name, user, ports) {
			continue
		}
		rows = append(rows, table.Row{
			pidStr,
			name,
			user,
			strconv.Itoa(len(recs)),
			ports,
		})
	}

	m.procTable.SetRows(rows)
	if m.procTable.Cursor() >= len(rows) {
		m.procTable.SetCursor(0)
	}
}

func distinctPorts(recs []model.SocketRecord) string {
	seen := make(map[int]bool)
	var ports []int
	for _, r := range recs {
		if !seen[r.LocalPort] {
			seen[r.LocalPort] = true
			ports = append(ports, r.LocalPort)
		}
	}
	sort.Ints(ports)

	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		parts = append(parts, strconv.Itoa(p))
	}
	s := strings.Join(parts, " ")
	if len(s) > 30 {
		s = s[:27] + "..."
	}
	return s
}

func (m *MainModel) selectedPort() (int, bool) {
	row := m.portTable.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}
	port, err := strconv.Atoi(row[0])
	if err != nil {
		return 0, false
	}
	return port, true
}

func (m *MainModel) selectedPID() (int, bool) {
	row := m.procTable.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}
	pid, err := strconv.Atoi(row[0])
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// detailForPID renders the detail pane: every socket the process holds
// plus the process-table fields the index does not carry.
func (m *MainModel) detailForPID(pid int) {
	var b strings.Builder

	recs := m.ix.ByPID(pid)
	name := model.UnknownProcessName
	if len(recs) > 0 {
		name = recs[0].ProcessName
	}
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(fmt.Sprintf("%s (pid %d)", name, pid)))

	if p, ok := m.sess.Process(pid); ok {
		if p.User != "" {
			fmt.Fprintf(&b, "User:     %s (uid %d)\n", p.User, p.UID)
		}
		if !p.StartedAt.IsZero() {
			fmt.Fprintf(&b, "Started:  %s (up %s)\n",
				p.StartedAt.Format("Jan 02 15:04:05"), humanDuration(time.Since(p.StartedAt)))
		}
		if p.Cmdline != "" {
			fmt.Fprintf(&b, "Command:  %s\n", p.Cmdline)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintf(&b, "Sockets (snapshot generation %d):\n", m.ix.Generation())
	for _, r := range recs {
		state := string(r.State)
		if r.Protocol == model.ProtoUDP {
			state = "-"
		}
		remote := ""
		if r.RemoteAddr != "" {
			remote = fmt.Sprintf(" -> %s:%d", r.RemoteAddr, r.RemotePort)
		}
		fmt.Fprintf(&b, "  %s %s:%d%s  %s\n", r.Protocol, r.LocalAddr, r.LocalPort, remote, state)
	}

	content := b.String()
	if m.viewport.Width > 0 {
		content = wrap.String(content, m.viewport.Width)
	}
	m.viewport.SetContent(content)
}

func humanDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	days := secs / 86400
	hours := (secs % 86400) / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// summarize compresses an outcome batch into one status line.
func summarize(outcomes []model.TerminationOutcome) string {
	var ok, failed int
	var firstErr error
	for _, o := range outcomes {
		if o.VerifiedAbsent {
			ok++
			continue
		}
		failed++
		if firstErr == nil && o.Err != nil {
			firstErr = o.Err
		}
	}
	switch {
	case failed == 0:
		return fmt.Sprintf("Terminated %d process(es)", ok)
	case firstErr != nil:
		return fmt.Sprintf("Terminated %d, failed %d: %v", ok, failed, firstErr)
	default:
		return fmt.Sprintf("Terminated %d, %d still alive", ok, failed)
	}
}
