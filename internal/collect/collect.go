// Package collect reads the host's raw socket and process tables. It is
// the supplier side of the index: it produces flat observations and a
// PID lookup, and makes no correlation decisions itself. Enumeration may
// be partial without elevated privilege; missing data becomes zero
// values, never errors.
package collect

import (
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/pranshuparmar/portreap/pkg/model"
)

// ProcessTable snapshots the process table as PID → process info.
// Fields the current privilege level cannot see are left at their
// unknown values (UID -1, empty user).
func ProcessTable() (map[int]model.Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	table := make(map[int]model.Process, len(procs))
	for _, p := range procs {
		info := model.Process{PID: int(p.Pid), UID: -1}

		if name, err := p.Name(); err == nil {
			info.Name = name
		}
		if user, err := p.Username(); err == nil {
			info.User = user
		}
		if uids, err := p.Uids(); err == nil && len(uids) > 0 {
			info.UID = int(uids[0])
		}
		if cmdline, err := p.Cmdline(); err == nil {
			info.Cmdline = cmdline
		}
		if created, err := p.CreateTime(); err == nil && created > 0 {
			info.StartedAt = time.UnixMilli(created)
		}

		table[int(p.Pid)] = info
	}
	return table, nil
}
