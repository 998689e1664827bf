package output

import (
	"fmt"
	"io"

	"github.com/pranshuparmar/portreap/internal/errs"
	"github.com/pranshuparmar/portreap/pkg/model"
)

var (
	colorReset = "\033[0m"
	colorBold  = "\033[2m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorAmber = "\033[33m"
)

// RenderRecords prints socket records as an aligned text table in the
// index's stable order.
func RenderRecords(w io.Writer, records []model.SocketRecord, colorEnabled bool) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no sockets")
		return
	}

	fmt.Fprintf(w, "%-5s %-6s %-24s %-22s %-8s %s\n",
		"PROTO", "PORT", "LOCAL", "STATE", "PID", "PROCESS")
	for _, r := range records {
		state := string(r.State)
		if r.Protocol == model.ProtoUDP {
			state = "-"
		}
		local := fmt.Sprintf("%s:%d", r.LocalAddr, r.LocalPort)
		pid := "-"
		if r.PID > 0 {
			pid = fmt.Sprintf("%d", r.PID)
		}
		name := r.ProcessName
		if colorEnabled && name == model.UnknownProcessName {
			name = colorBold + name + colorReset
		}
		fmt.Fprintf(w, "%-5s %-6d %-24s %-22s %-8s %s\n",
			r.Protocol, r.LocalPort, local, state, pid, name)
	}
}

// RenderOutcomes prints one line per termination outcome, with the
// specific reason for every failure or denial.
func RenderOutcomes(w io.Writer, outcomes []model.TerminationOutcome, colorEnabled bool) {
	for _, o := range outcomes {
		label := fmt.Sprintf("pid %d", o.PID)
		if o.ProcessName != "" {
			label = fmt.Sprintf("%s (%s)", label, o.ProcessName)
		}

		switch {
		case o.VerifiedAbsent:
			mark := "terminated"
			if errs.IsKind(o.Err, errs.KindProcessVanished) {
				mark = "already gone"
			}
			if len(o.Attempts) > 0 {
				mark += " after " + o.Attempts[len(o.Attempts)-1].Signal
			}
			fmt.Fprintf(w, "%s %s: %s\n", paint("✓", colorGreen, colorEnabled), label, mark)
		case o.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", paint("✗", colorRed, colorEnabled), label, o.Err)
		default:
			fmt.Fprintf(w, "%s %s: still alive after %s\n",
				paint("!", colorAmber, colorEnabled), label, lastSignal(o))
		}
	}
}

func lastSignal(o model.TerminationOutcome) string {
	if len(o.Attempts) == 0 {
		return "no signal"
	}
	return o.Attempts[len(o.Attempts)-1].Signal
}

func paint(s, color string, enabled bool) string {
	if !enabled {
		return s
	}
	return color + s + colorReset
}

func kindString(err error) string {
	return errs.GetKind(err).String()
}
