// Package app wires the CLI surface: the root command launches the
// interactive view, and the list/kill subcommands expose the index and
// the termination engine for scripted use.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pranshuparmar/portreap/internal/tui"
)

var versionString = "dev"

// SetVersionBuildCommitString composes the version string injected via
// ldflags at build time.
func SetVersionBuildCommitString(version, commit, buildDate string) {
	if version == "" {
		return
	}
	versionString = version
	if commit != "" {
		versionString += " (" + commit
		if buildDate != "" {
			versionString += ", " + buildDate
		}
		versionString += ")"
	}
	rootCmd.Version = versionString
}

var rootCmd = &cobra.Command{
	Use:   "portreap",
	Short: "Inspect and reap the processes behind your ports",
	Long: `portreap enumerates the host's active TCP/UDP sockets, correlates each
socket with its owning process, and can terminate the processes holding
a port — graceful first, forceful if they ignore it.

Run without arguments for the interactive view. Use 'list' and 'kill'
for scripting.

Examples:
  portreap                     # interactive view
  portreap list                # listening sockets as a table
  portreap list --json --all   # every socket, machine-readable
  portreap kill --port 8080    # terminate whatever holds port 8080
  portreap kill --pid 4242 -y  # no confirmation prompt
`,
	Version:       "dev",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Start(versionString)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(killCmd)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "portreap:", err)
		os.Exit(1)
	}
}

// colorEnabled reports whether stdout is a terminal that should get
// ANSI colors.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
