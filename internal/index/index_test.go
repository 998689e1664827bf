package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/portreap/pkg/model"
)

func testLookup(table map[int]model.Process) ProcessLookup {
	return func(pid int) (model.Process, bool) {
		p, ok := table[pid]
		return p, ok
	}
}

func sampleRaw() []model.RawSocket {
	return []model.RawSocket{
		{Protocol: model.ProtoTCP, LocalAddr: "0.0.0.0", LocalPort: 8080, State: model.StateListen, PID: 1234, Inode: 101},
		{Protocol: model.ProtoTCP, LocalAddr: "127.0.0.1", LocalPort: 8080, RemoteAddr: "127.0.0.1", RemotePort: 51000, State: model.StateEstablished, PID: 1234, Inode: 102},
		{Protocol: model.ProtoUDP, LocalAddr: "127.0.0.53", LocalPort: 53, PID: 890, Inode: 103},
	}
}

func sampleTable() map[int]model.Process {
	return map[int]model.Process{
		1234: {PID: 1234, Name: "nginx", User: "www-data", UID: 33},
		890:  {PID: 890, Name: "systemd-resolved", User: "systemd-resolve", UID: 193},
	}
}

func TestBuildScenario(t *testing.T) {
	ix := Build(sampleRaw(), testLookup(sampleTable()))

	got := ix.ByPort(8080)
	require.Len(t, got, 2)
	for _, r := range got {
		require.Equal(t, model.ProtoTCP, r.Protocol)
		require.Equal(t, 8080, r.LocalPort)
		require.Equal(t, "nginx", r.ProcessName)
	}
	// Stable order: addresses ascending within the port.
	require.Equal(t, "0.0.0.0", got[0].LocalAddr)
	require.Equal(t, "127.0.0.1", got[1].LocalAddr)

	dns := ix.ByPort(53)
	require.Len(t, dns, 1)
	require.Equal(t, model.ProtoUDP, dns[0].Protocol)
	require.Equal(t, "systemd-resolved", dns[0].ProcessName)

	require.Empty(t, ix.ByPort(9999))
}

func TestPortPartition(t *testing.T) {
	ix := Build(sampleRaw(), testLookup(sampleTable()))

	total := 0
	seen := make(map[uint64]bool)
	for _, port := range ix.Ports() {
		for _, r := range ix.ByPort(port) {
			require.Equal(t, port, r.LocalPort)
			require.False(t, seen[r.Inode], "record appears in more than one port bucket")
			seen[r.Inode] = true
			total++
		}
	}
	require.Equal(t, ix.Len(), total, "port buckets must partition the record sequence")
}

func TestPIDPartition(t *testing.T) {
	ix := Build(sampleRaw(), testLookup(sampleTable()))

	total := 0
	for _, pid := range ix.PIDs() {
		for _, r := range ix.ByPID(pid) {
			require.Equal(t, pid, r.PID)
			total++
		}
	}
	require.Equal(t, ix.Len(), total, "pid buckets must partition the record sequence")
}

func TestUnresolvablePIDKept(t *testing.T) {
	raw := []model.RawSocket{
		{Protocol: model.ProtoTCP, LocalAddr: "0.0.0.0", LocalPort: 3000, State: model.StateListen, PID: 4242},
		{Protocol: model.ProtoTCP, LocalAddr: "0.0.0.0", LocalPort: 3001, State: model.StateListen, PID: 0},
	}
	ix := Build(raw, testLookup(nil)) // empty process table: every join misses

	require.Equal(t, 2, ix.Len(), "join misses must never drop sockets")
	for _, r := range ix.Records() {
		require.Equal(t, model.UnknownProcessName, r.ProcessName)
		require.Equal(t, -1, r.UID)
	}
	require.Len(t, ix.ByPort(3000), 1)
	require.Len(t, ix.ByPID(0), 1)
}

func TestUDPNeverCarriesState(t *testing.T) {
	raw := []model.RawSocket{
		// State set by a buggy collector; the build must clear it.
		{Protocol: model.ProtoUDP, LocalAddr: "0.0.0.0", LocalPort: 123, State: model.StateListen, PID: 7},
	}
	ix := Build(raw, nil)
	require.Equal(t, model.TCPState(""), ix.Records()[0].State)
}

func TestGenerationIsolation(t *testing.T) {
	table := sampleTable()
	ix1 := Build(sampleRaw(), testLookup(table))
	before := ix1.ByPort(8080)

	// Simulate the post-kill world: nginx is gone.
	delete(table, 1234)
	ix2 := Build([]model.RawSocket{
		{Protocol: model.ProtoUDP, LocalAddr: "127.0.0.53", LocalPort: 53, PID: 890, Inode: 103},
	}, testLookup(table))

	require.Greater(t, ix2.Generation(), ix1.Generation())

	// Results returned from the old generation are untouched.
	require.Len(t, before, 2)
	require.Equal(t, "nginx", before[0].ProcessName)
	require.Len(t, ix1.ByPort(8080), 2)
	require.Empty(t, ix2.ByPort(8080))
}

func TestRecordsReturnsCopy(t *testing.T) {
	ix := Build(sampleRaw(), testLookup(sampleTable()))
	recs := ix.Records()
	recs[0].ProcessName = "mutated"
	require.NotEqual(t, "mutated", ix.Records()[0].ProcessName)
}

func TestFilterView(t *testing.T) {
	ix := Build(sampleRaw(), testLookup(sampleTable()))

	listeners := ix.Filter(func(r model.SocketRecord) bool {
		return r.State == model.StateListen
	})
	require.Equal(t, ix.Generation(), listeners.Generation(), "a view belongs to the generation it was built from")
	require.Equal(t, 1, listeners.Len())
	require.Len(t, listeners.ByPort(8080), 1)

	// A view built on generation G keeps answering with G data after a
	// newer build exists.
	newer := Build(nil, nil)
	require.Greater(t, newer.Generation(), listeners.Generation())
	require.Equal(t, 1, listeners.Len())
}

func TestDeterministicOrdering(t *testing.T) {
	raw := sampleRaw()
	// Same input, shuffled.
	shuffled := []model.RawSocket{raw[2], raw[0], raw[1]}

	a := Build(raw, testLookup(sampleTable()))
	b := Build(shuffled, testLookup(sampleTable()))
	require.Equal(t, a.Records(), b.Records())

	// TCP sorts before UDP, ports ascending within protocol.
	recs := a.Records()
	require.Equal(t, model.ProtoTCP, recs[0].Protocol)
	require.Equal(t, model.ProtoUDP, recs[len(recs)-1].Protocol)
}
