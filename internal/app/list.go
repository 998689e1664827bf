package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranshuparmar/portreap/internal/output"
	"github.com/pranshuparmar/portreap/internal/session"
	"github.com/pranshuparmar/portreap/pkg/model"
)

var (
	listJSON bool
	listPort int
	listPID  int
	listTCP  bool
	listUDP  bool
	listAll  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sockets and their owning processes",
	Long: `Takes one collection pass, builds the socket index, and prints it.

By default only listening TCP sockets and UDP sockets are shown; --all
includes established and closing connections too.`,
	RunE: listCommand,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Emit JSON instead of a table")
	listCmd.Flags().IntVar(&listPort, "port", 0, "Only sockets on this local port")
	listCmd.Flags().IntVar(&listPID, "pid", 0, "Only sockets owned by this PID")
	listCmd.Flags().BoolVar(&listTCP, "tcp", false, "TCP sockets only")
	listCmd.Flags().BoolVar(&listUDP, "udp", false, "UDP sockets only")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include non-listening TCP sockets")
}

func listCommand(cmd *cobra.Command, args []string) error {
	if listPort < 0 || listPort > 65535 {
		return fmt.Errorf("port %d is out of range 0-65535", listPort)
	}

	ix, err := session.New().Rebuild()
	if err != nil {
		return err
	}

	view := ix.Filter(func(r model.SocketRecord) bool {
		if listTCP && r.Protocol != model.ProtoTCP {
			return false
		}
		if listUDP && r.Protocol != model.ProtoUDP {
			return false
		}
		if !listAll && r.Protocol == model.ProtoTCP && r.State != model.StateListen {
			return false
		}
		return true
	})

	var records []model.SocketRecord
	switch {
	case listPort > 0:
		records = view.ByPort(listPort)
	case listPID > 0:
		records = view.ByPID(listPID)
	default:
		records = view.Records()
	}

	if listJSON {
		s, err := output.RecordsJSON(records)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	}

	output.RenderRecords(cmd.OutOrStdout(), records, colorEnabled())
	return nil
}
