package session

import (
	"errors"
	"testing"

	"github.com/pranshuparmar/portreap/internal/errs"
	"github.com/pranshuparmar/portreap/pkg/model"
)

func TestRebuildReplacesWholesale(t *testing.T) {
	raw := []model.RawSocket{
		{Protocol: model.ProtoTCP, LocalAddr: "0.0.0.0", LocalPort: 8080, State: model.StateListen, PID: 42},
	}
	s := NewWithCollectors(
		func() ([]model.RawSocket, error) { return raw, nil },
		func() (map[int]model.Process, error) {
			return map[int]model.Process{42: {PID: 42, Name: "api", UID: 1000}}, nil
		},
	)

	if s.Current() != nil {
		t.Fatal("session must start without an index")
	}

	first, err := s.Rebuild()
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if s.Current() != first {
		t.Error("Current should return the index just built")
	}

	second, err := s.Rebuild()
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if second.Generation() <= first.Generation() {
		t.Error("rebuild must produce a newer generation")
	}
	if s.Current() != second {
		t.Error("rebuild must replace the current index wholesale")
	}
	// The first generation is still fully usable for held readers.
	if len(first.ByPort(8080)) != 1 {
		t.Error("old generation must remain queryable")
	}
}

func TestRebuildCollectionFailure(t *testing.T) {
	s := NewWithCollectors(
		func() ([]model.RawSocket, error) { return nil, errors.New("permission denied") },
		func() (map[int]model.Process, error) { return nil, nil },
	)

	_, err := s.Rebuild()
	if err == nil {
		t.Fatal("expected collection error")
	}
	if errs.GetKind(err) != errs.KindCollectionFailed {
		t.Errorf("expected KindCollectionFailed, got %v", errs.GetKind(err))
	}
	if s.Current() != nil {
		t.Error("failed rebuild must not install an index")
	}
}

func TestRebuildDegradedProcessTable(t *testing.T) {
	s := NewWithCollectors(
		func() ([]model.RawSocket, error) {
			return []model.RawSocket{
				{Protocol: model.ProtoTCP, LocalAddr: "0.0.0.0", LocalPort: 443, State: model.StateListen, PID: 7},
			}, nil
		},
		func() (map[int]model.Process, error) { return nil, errors.New("ps unavailable") },
	)

	ix, err := s.Rebuild()
	if err != nil {
		t.Fatalf("rebuild should tolerate a missing process table: %v", err)
	}
	recs := ix.ByPort(443)
	if len(recs) != 1 {
		t.Fatalf("socket dropped on degraded join")
	}
	if recs[0].ProcessName != model.UnknownProcessName {
		t.Errorf("expected placeholder name, got %q", recs[0].ProcessName)
	}
}
