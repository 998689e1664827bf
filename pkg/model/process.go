package model

import "time"

// Process holds the subset of process-table information the index joins
// onto socket records. UID is -1 when the owner is not visible at the
// current privilege level.
type Process struct {
	PID       int       `json:"pid"`
	Name      string    `json:"name"`
	User      string    `json:"user,omitempty"`
	UID       int       `json:"uid"`
	Cmdline   string    `json:"cmdline,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}
