package model

import "time"

// TargetKind says whether a termination request names a port or a PID.
type TargetKind int

const (
	TargetPort TargetKind = iota
	TargetPID
)

// SignalPolicy controls signal escalation during termination.
type SignalPolicy int

const (
	// GracefulThenForceful sends SIGTERM, waits out the grace interval,
	// and escalates to SIGKILL if the target is still alive.
	GracefulThenForceful SignalPolicy = iota
	// ForcefulOnly sends SIGKILL immediately.
	ForcefulOnly
)

func (p SignalPolicy) String() string {
	if p == ForcefulOnly {
		return "forceful"
	}
	return "graceful-then-forceful"
}

// TerminationRequest is the input to the termination engine. Confirmed
// must be set by the caller after it has shown the operator what will be
// killed; the engine refuses unconfirmed requests.
type TerminationRequest struct {
	Kind      TargetKind
	Port      int
	PID       int
	Policy    SignalPolicy
	Grace     time.Duration // zero means the engine default
	Confirmed bool
}

// SignalAttempt records one signal stage of a termination.
type SignalAttempt struct {
	Signal    string `json:"signal"` // "TERM" or "KILL"
	Delivered bool   `json:"delivered"`
	// VerifiedAbsent reports whether the process was gone at the
	// post-signal check for this stage. Delivery alone never implies
	// termination.
	VerifiedAbsent bool   `json:"verified_absent"`
	Error          string `json:"error,omitempty"`
}

// TerminationOutcome is the per-PID result of a termination. A batch
// kill-by-port yields one outcome per distinct PID; one PID failing
// never aborts the others.
type TerminationOutcome struct {
	PID            int             `json:"pid"`
	ProcessName    string          `json:"process_name,omitempty"`
	Attempts       []SignalAttempt `json:"attempts,omitempty"`
	VerifiedAbsent bool            `json:"verified_absent"`
	Err            error           `json:"-"`
}

// Succeeded reports whether the target is verifiably gone, regardless of
// which stage got it there or whether it was already gone.
func (o TerminationOutcome) Succeeded() bool {
	return o.VerifiedAbsent
}
