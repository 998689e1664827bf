// Package index builds and queries the in-memory socket/process index.
// An index is a generation-tagged immutable snapshot: a rebuild produces
// an entirely new index, so readers holding an older generation are never
// disrupted and never observe a half-updated mapping.
package index

import (
	"sort"
	"sync/atomic"

	"github.com/pranshuparmar/portreap/pkg/model"
)

// ProcessLookup resolves a PID to process information at build time.
// The second return is false when the PID is not in the process table.
type ProcessLookup func(pid int) (model.Process, bool)

var generationCounter atomic.Uint64

// SocketIndex holds one generation of socket records plus the two
// derived groupings (by local port, by owning PID). It is immutable
// after Build and safe for concurrent readers.
type SocketIndex struct {
	generation uint64
	records    []model.SocketRecord
	byPort     map[int][]int
	byPID      map[int][]int
}

// Build normalizes raw socket observations, joins them with the process
// table, and constructs both groupings in one O(n) pass. A socket whose
// PID cannot be resolved is kept with the "unknown" placeholder name
// rather than dropped. Records are ordered by (protocol, local port,
// local address) so queries and display are stable across runs.
func Build(raw []model.RawSocket, lookup ProcessLookup) *SocketIndex {
	records := make([]model.SocketRecord, 0, len(raw))
	for _, rs := range raw {
		rec := model.SocketRecord{
			Protocol:    rs.Protocol,
			LocalAddr:   rs.LocalAddr,
			LocalPort:   rs.LocalPort,
			RemoteAddr:  rs.RemoteAddr,
			RemotePort:  rs.RemotePort,
			PID:         rs.PID,
			ProcessName: model.UnknownProcessName,
			UID:         -1,
			Inode:       rs.Inode,
		}
		// Connection state is a TCP-only concept.
		if rs.Protocol == model.ProtoTCP {
			rec.State = rs.State
			if rec.State == "" {
				rec.State = model.StateUnknown
			}
		}
		if lookup != nil && rs.PID > 0 {
			if p, ok := lookup(rs.PID); ok {
				if p.Name != "" {
					rec.ProcessName = p.Name
				}
				rec.UID = p.UID
			}
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Protocol != b.Protocol {
			return a.Protocol < b.Protocol
		}
		if a.LocalPort != b.LocalPort {
			return a.LocalPort < b.LocalPort
		}
		if a.LocalAddr != b.LocalAddr {
			return a.LocalAddr < b.LocalAddr
		}
		return a.PID < b.PID
	})

	return newIndex(generationCounter.Add(1), records)
}

func newIndex(gen uint64, records []model.SocketRecord) *SocketIndex {
	ix := &SocketIndex{
		generation: gen,
		records:    records,
		byPort:     make(map[int][]int),
		byPID:      make(map[int][]int),
	}
	for i, r := range records {
		ix.byPort[r.LocalPort] = append(ix.byPort[r.LocalPort], i)
		ix.byPID[r.PID] = append(ix.byPID[r.PID], i)
	}
	return ix
}

// Generation identifies this build. Each Build gets a fresh, strictly
// increasing generation for the lifetime of the process.
func (ix *SocketIndex) Generation() uint64 { return ix.generation }

// Len returns the number of records in this generation.
func (ix *SocketIndex) Len() int { return len(ix.records) }

// Records returns all records in stable order. The slice is a copy;
// mutating it cannot affect the index.
func (ix *SocketIndex) Records() []model.SocketRecord {
	out := make([]model.SocketRecord, len(ix.records))
	copy(out, ix.records)
	return out
}

// ByPort returns the records whose local port matches, in index order.
// An unoccupied port yields an empty slice, not an error.
func (ix *SocketIndex) ByPort(port int) []model.SocketRecord {
	return ix.gather(ix.byPort[port])
}

// ByPID returns the records owned by pid, in index order.
func (ix *SocketIndex) ByPID(pid int) []model.SocketRecord {
	return ix.gather(ix.byPID[pid])
}

func (ix *SocketIndex) gather(positions []int) []model.SocketRecord {
	out := make([]model.SocketRecord, 0, len(positions))
	for _, pos := range positions {
		out = append(out, ix.records[pos])
	}
	return out
}

// Ports returns the distinct local ports present, ascending.
func (ix *SocketIndex) Ports() []int {
	return sortedKeys(ix.byPort)
}

// PIDs returns the distinct owning PIDs present, ascending. PID 0 is
// included when sockets with unresolvable owners exist.
func (ix *SocketIndex) PIDs() []int {
	return sortedKeys(ix.byPID)
}

func sortedKeys(m map[int][]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Filter returns a frozen view containing only the records the predicate
// accepts. The view keeps the parent's generation: it answers with the
// data of the build it came from even after a newer index exists, which
// is what makes snapshot-and-compare workflows possible. Callers can
// detect staleness by comparing Generation against the current index.
func (ix *SocketIndex) Filter(pred func(model.SocketRecord) bool) *SocketIndex {
	var kept []model.SocketRecord
	for _, r := range ix.records {
		if pred(r) {
			kept = append(kept, r)
		}
	}
	return newIndex(ix.generation, kept)
}
