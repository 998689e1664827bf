// Package reaper implements the process-termination pipeline: target
// resolution against the current socket index, safety policy, signal
// delivery with graceful-to-forceful escalation, and post-condition
// verification. Signal delivery is never conflated with termination —
// every outcome records whether the final existence check found the
// process gone.
package reaper

import (
	"errors"
	"os"
	"sort"
	"syscall"
	"time"

	"github.com/pranshuparmar/portreap/internal/errs"
	"github.com/pranshuparmar/portreap/internal/index"
	"github.com/pranshuparmar/portreap/pkg/model"
)

// DefaultGrace is the bounded wait between the graceful signal and the
// existence re-check. Long enough for an ordinary SIGTERM handler, short
// enough that a wedged target cannot stall the operator.
const DefaultGrace = 400 * time.Millisecond

// Signaller abstracts signal delivery and process-existence checks so
// the engine can be exercised without touching the OS.
type Signaller interface {
	Signal(pid int, sig syscall.Signal) error
	Exists(pid int) bool
}

// Engine executes termination requests. Operations are synchronous and
// sequential; the only blocking it does is the bounded grace wait.
type Engine struct {
	sig       Signaller
	ownPID    int
	parentPID int
	critical  map[int]struct{}
	sleep     func(time.Duration)
}

// New returns an engine using sig for delivery. Any PIDs passed as
// critical are refused by the safety check in addition to the fixed
// protections (PID 1, the engine's own process, and its parent).
func New(sig Signaller, critical ...int) *Engine {
	e := &Engine{
		sig:       sig,
		ownPID:    os.Getpid(),
		parentPID: os.Getppid(),
		critical:  make(map[int]struct{}, len(critical)),
		sleep:     time.Sleep,
	}
	for _, pid := range critical {
		e.critical[pid] = struct{}{}
	}
	return e
}

// ResolveTargets maps a request to the set of PIDs it affects, per the
// supplied index generation. Port requests resolve to the distinct
// resolvable owners of that port; PID requests to the singleton set.
func (e *Engine) ResolveTargets(req model.TerminationRequest, ix *index.SocketIndex) ([]int, error) {
	switch req.Kind {
	case model.TargetPID:
		if len(ix.ByPID(req.PID)) == 0 {
			return nil, errs.Errorf(errs.KindNotFound,
				"pid %d holds no sockets in the current snapshot (generation %d)", req.PID, ix.Generation())
		}
		return []int{req.PID}, nil

	case model.TargetPort:
		recs := ix.ByPort(req.Port)
		if len(recs) == 0 {
			return nil, errs.Errorf(errs.KindNotFound,
				"port %d is not in use in the current snapshot (generation %d)", req.Port, ix.Generation())
		}
		seen := make(map[int]struct{})
		var pids []int
		for _, r := range recs {
			// PID 0 marks an unresolvable owner; kill(0) would signal
			// the whole process group, so it is never a target.
			if r.PID <= 0 {
				continue
			}
			if _, ok := seen[r.PID]; ok {
				continue
			}
			seen[r.PID] = struct{}{}
			pids = append(pids, r.PID)
		}
		if len(pids) == 0 {
			return nil, errs.Errorf(errs.KindNotFound,
				"port %d has sockets but no resolvable owning process (try with elevated privilege)", req.Port)
		}
		sort.Ints(pids)
		return pids, nil
	}
	return nil, errs.Errorf(errs.KindNotFound, "unrecognized target kind %d", req.Kind)
}

// SafetyCheck returns nil when pid may be terminated, or a
// ProtectedTarget error naming the rule that refused it.
func (e *Engine) SafetyCheck(pid int) error {
	switch {
	case pid <= 0:
		return errs.Errorf(errs.KindProtectedTarget, "pid %d is not a signalable process", pid)
	case pid == 1:
		return errs.New(errs.KindProtectedTarget, "pid 1 is the init process and cannot be terminated")
	case pid == e.ownPID:
		return errs.Errorf(errs.KindProtectedTarget, "pid %d is this process itself", pid)
	case pid == e.parentPID:
		return errs.Errorf(errs.KindProtectedTarget, "pid %d is this process's parent; killing it would orphan the session", pid)
	}
	if _, ok := e.critical[pid]; ok {
		return errs.Errorf(errs.KindProtectedTarget, "pid %d is marked critical by policy", pid)
	}
	return nil
}

// Execute runs the signal state machine for one PID: send the first
// signal, wait out the grace interval, re-check existence, and escalate
// to SIGKILL if the policy allows and the target survived. A target that
// is already gone counts as success (ProcessVanished, for idempotence).
func (e *Engine) Execute(pid int, policy model.SignalPolicy, grace time.Duration) model.TerminationOutcome {
	if grace <= 0 {
		grace = DefaultGrace
	}
	out := model.TerminationOutcome{PID: pid}

	if !e.sig.Exists(pid) {
		out.VerifiedAbsent = true
		out.Err = errs.Errorf(errs.KindProcessVanished, "pid %d was already gone before signaling", pid)
		return out
	}

	first := syscall.SIGTERM
	if policy == model.ForcefulOnly {
		first = syscall.SIGKILL
	}

	e.stage(&out, pid, first, grace)
	if out.VerifiedAbsent || out.Err != nil {
		return out
	}
	if policy == model.GracefulThenForceful {
		e.stage(&out, pid, syscall.SIGKILL, grace)
	}
	return out
}

// stage sends one signal and records the attempt, including the
// post-grace existence check when delivery succeeded.
func (e *Engine) stage(out *model.TerminationOutcome, pid int, sig syscall.Signal, grace time.Duration) {
	attempt := model.SignalAttempt{Signal: signalName(sig)}

	if err := e.sig.Signal(pid, sig); err != nil {
		out.Err = classifySignalError(err, pid, sig)
		if errs.IsKind(out.Err, errs.KindProcessVanished) {
			// Gone before the signal landed: success.
			attempt.VerifiedAbsent = true
			out.VerifiedAbsent = true
		}
		attempt.Error = out.Err.Error()
		out.Attempts = append(out.Attempts, attempt)
		return
	}

	attempt.Delivered = true
	e.sleep(grace)
	attempt.VerifiedAbsent = !e.sig.Exists(pid)
	out.VerifiedAbsent = attempt.VerifiedAbsent
	out.Attempts = append(out.Attempts, attempt)
}

// Terminate is the full pipeline for one request: confirmation gate,
// target resolution, then per-PID safety check and execution. Each PID
// is processed independently — a denial or delivery failure for one
// never aborts the rest of the batch.
func (e *Engine) Terminate(req model.TerminationRequest, ix *index.SocketIndex) ([]model.TerminationOutcome, error) {
	if !req.Confirmed {
		return nil, errs.New(errs.KindConfirmationRequired,
			"termination request was not confirmed; the caller must confirm after reviewing the targets")
	}

	pids, err := e.ResolveTargets(req, ix)
	if err != nil {
		return nil, err
	}

	outcomes := make([]model.TerminationOutcome, 0, len(pids))
	for _, pid := range pids {
		name := ownerName(ix, pid)
		if err := e.SafetyCheck(pid); err != nil {
			outcomes = append(outcomes, model.TerminationOutcome{PID: pid, ProcessName: name, Err: err})
			continue
		}
		out := e.Execute(pid, req.Policy, req.Grace)
		out.ProcessName = name
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func ownerName(ix *index.SocketIndex, pid int) string {
	recs := ix.ByPID(pid)
	if len(recs) == 0 {
		return ""
	}
	return recs[0].ProcessName
}

func classifySignalError(err error, pid int, sig syscall.Signal) error {
	switch {
	case errors.Is(err, syscall.ESRCH), errors.Is(err, os.ErrProcessDone):
		return errs.Wrapf(err, errs.KindProcessVanished, "pid %d vanished before %s was delivered", pid, signalName(sig))
	case errors.Is(err, syscall.EPERM):
		return errs.Wrapf(err, errs.KindPermissionDenied, "the OS rejected %s to pid %d (retry with elevated privilege)", signalName(sig), pid)
	default:
		return errs.Wrapf(err, errs.KindSignalDeliveryFailed, "delivering %s to pid %d failed", signalName(sig), pid)
	}
}

func signalName(sig syscall.Signal) string {
	switch sig {
	case syscall.SIGKILL:
		return "KILL"
	case syscall.SIGTERM:
		return "TERM"
	default:
		return sig.String()
	}
}
