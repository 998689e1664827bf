package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pranshuparmar/portreap/internal/output"
	"github.com/pranshuparmar/portreap/internal/reaper"
	"github.com/pranshuparmar/portreap/internal/session"
	"github.com/pranshuparmar/portreap/pkg/model"
)

var (
	killPort      int
	killPID       int
	killForceOnly bool
	killYes       bool
	killGrace     time.Duration
	killCritical  []int
)

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Terminate the processes behind a port or a PID",
	Long: `Resolves the target set against a fresh socket snapshot, shows what
would be killed, and asks for confirmation before sending signals.

The default policy sends SIGTERM, waits out a short grace interval, and
escalates to SIGKILL if the process is still alive. PID 1, this process
and its parent are always refused.

Examples:
  portreap kill --port 8080             # everything holding port 8080
  portreap kill --pid 4242              # one specific process
  portreap kill --port 8080 --force-only  # SIGKILL immediately
  portreap kill --port 8080 -y          # skip the confirmation prompt
`,
	RunE: killCommand,
}

func init() {
	killCmd.Flags().IntVar(&killPort, "port", 0, "Target every process holding this local port")
	killCmd.Flags().IntVar(&killPID, "pid", 0, "Target one PID (must hold a socket)")
	killCmd.Flags().BoolVar(&killForceOnly, "force-only", false, "Send SIGKILL immediately, no graceful stage")
	killCmd.Flags().BoolVarP(&killYes, "yes", "y", false, "Skip the confirmation prompt")
	killCmd.Flags().DurationVar(&killGrace, "grace", reaper.DefaultGrace, "Wait between SIGTERM and the escalation check")
	killCmd.Flags().IntSliceVar(&killCritical, "protect", nil, "Additional PIDs the safety policy must refuse")
}

func killCommand(cmd *cobra.Command, args []string) error {
	if (killPort == 0) == (killPID == 0) {
		return fmt.Errorf("exactly one of --port or --pid is required")
	}
	if killPort < 0 || killPort > 65535 {
		return fmt.Errorf("port %d is out of range 0-65535", killPort)
	}

	ix, err := session.New().Rebuild()
	if err != nil {
		return err
	}

	req := model.TerminationRequest{
		Kind:   model.TargetPort,
		Port:   killPort,
		Policy: model.GracefulThenForceful,
		Grace:  killGrace,
	}
	if killPID != 0 {
		req.Kind = model.TargetPID
		req.PID = killPID
	}
	if killForceOnly {
		req.Policy = model.ForcefulOnly
	}

	engine := reaper.New(reaper.OSSignaller{}, killCritical...)

	pids, err := engine.ResolveTargets(req, ix)
	if err != nil {
		return err
	}

	signal := "SIGTERM (then SIGKILL if ignored)"
	if req.Policy == model.ForcefulOnly {
		signal = "SIGKILL"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Will send %s to %d process(es):\n", signal, len(pids))
	for _, pid := range pids {
		for _, r := range ix.ByPID(pid) {
			state := string(r.State)
			if r.Protocol == model.ProtoUDP {
				state = "-"
			}
			fmt.Fprintf(out, "  pid %d  %s  %s %s:%d %s\n",
				pid, r.ProcessName, r.Protocol, r.LocalAddr, r.LocalPort, state)
		}
	}

	if !killYes {
		fmt.Fprintf(out, "\nProceed? [y/N]: ")
		var response string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}
	req.Confirmed = true

	outcomes, err := engine.Terminate(req, ix)
	if err != nil {
		return err
	}
	output.RenderOutcomes(out, outcomes, colorEnabled())
	return nil
}
