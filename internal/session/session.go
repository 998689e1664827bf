// Package session owns the current socket index. A session holds exactly
// one index at a time and replaces it wholesale on rebuild; readers that
// grabbed the previous generation keep a fully consistent snapshot.
package session

import (
	"github.com/pranshuparmar/portreap/internal/collect"
	"github.com/pranshuparmar/portreap/internal/errs"
	"github.com/pranshuparmar/portreap/internal/index"
	"github.com/pranshuparmar/portreap/pkg/model"
)

// Session ties the raw collector to the index. Rebuilds are explicit
// one-shot operations; there is no background refresh.
type Session struct {
	sockets   func() ([]model.RawSocket, error)
	processes func() (map[int]model.Process, error)
	current   *index.SocketIndex
	procs     map[int]model.Process
}

// New returns a session backed by the host collector.
func New() *Session {
	return &Session{
		sockets:   collect.Sockets,
		processes: collect.ProcessTable,
	}
}

// NewWithCollectors returns a session with injected collector functions.
func NewWithCollectors(sockets func() ([]model.RawSocket, error), processes func() (map[int]model.Process, error)) *Session {
	return &Session{sockets: sockets, processes: processes}
}

// Rebuild takes a fresh collection pass and replaces the current index
// with a new generation. On failure the previous index (if any) remains
// current and usable.
func (s *Session) Rebuild() (*index.SocketIndex, error) {
	raw, err := s.sockets()
	if err != nil {
		return nil, errs.Wrap(err, errs.KindCollectionFailed, "socket enumeration failed")
	}

	// A failed process-table read degrades the join (every socket gets
	// the placeholder name) but never hides sockets.
	table, err := s.processes()
	if err != nil {
		table = nil
	}

	ix := index.Build(raw, func(pid int) (model.Process, bool) {
		p, ok := table[pid]
		return p, ok
	})
	s.current = ix
	s.procs = table
	return ix, nil
}

// Process returns the process-table entry captured by the rebuild that
// produced the current index. Detail views use it for fields the index
// does not carry (user, cmdline, start time).
func (s *Session) Process(pid int) (model.Process, bool) {
	p, ok := s.procs[pid]
	return p, ok
}

// Current returns the index from the most recent successful rebuild, or
// nil before the first one.
func (s *Session) Current() *index.SocketIndex {
	return s.current
}
