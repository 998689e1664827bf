//go:build !windows

package reaper

import (
	"os"
	"syscall"

	"github.com/shirou/gopsutil/v4/process"
)

// OSSignaller delivers real signals and checks process existence
// through the process table.
type OSSignaller struct{}

func (OSSignaller) Signal(pid int, sig syscall.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(sig)
}

func (OSSignaller) Exists(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	if err != nil {
		// If existence cannot be determined, do not claim the target
		// is verifiably absent.
		return true
	}
	return ok
}
