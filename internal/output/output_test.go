package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pranshuparmar/portreap/internal/errs"
	"github.com/pranshuparmar/portreap/pkg/model"
)

func TestRenderRecords(t *testing.T) {
	records := []model.SocketRecord{
		{Protocol: model.ProtoTCP, LocalAddr: "0.0.0.0", LocalPort: 8080, State: model.StateListen, PID: 1234, ProcessName: "nginx", UID: 33},
		{Protocol: model.ProtoUDP, LocalAddr: "127.0.0.53", LocalPort: 53, PID: 890, ProcessName: "systemd-resolved", UID: 193},
	}

	var b strings.Builder
	RenderRecords(&b, records, false)
	out := b.String()

	if !strings.Contains(out, "nginx") || !strings.Contains(out, "8080") {
		t.Errorf("missing tcp row: %q", out)
	}
	if !strings.Contains(out, "systemd-resolved") {
		t.Errorf("missing udp row: %q", out)
	}
	// UDP rows show no connection state.
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "UDP") && !strings.Contains(line, "-") {
			t.Errorf("udp row should show a dash for state: %q", line)
		}
	}
}

func TestRenderRecordsEmpty(t *testing.T) {
	var b strings.Builder
	RenderRecords(&b, nil, false)
	if !strings.Contains(b.String(), "no sockets") {
		t.Errorf("unexpected empty output: %q", b.String())
	}
}

func TestRenderOutcomes(t *testing.T) {
	outcomes := []model.TerminationOutcome{
		{
			PID: 100, ProcessName: "api", VerifiedAbsent: true,
			Attempts: []model.SignalAttempt{{Signal: "TERM", Delivered: true, VerifiedAbsent: true}},
		},
		{
			PID: 200, ProcessName: "worker",
			Err: errs.Errorf(errs.KindPermissionDenied, "the OS rejected TERM to pid 200"),
		},
		{
			PID: 300, ProcessName: "cache",
			Attempts: []model.SignalAttempt{
				{Signal: "TERM", Delivered: true},
				{Signal: "KILL", Delivered: true},
			},
		},
	}

	var b strings.Builder
	RenderOutcomes(&b, outcomes, false)
	out := b.String()

	if !strings.Contains(out, "pid 100 (api): terminated after TERM") {
		t.Errorf("missing success line: %q", out)
	}
	if !strings.Contains(out, "rejected TERM to pid 200") {
		t.Errorf("failure line must carry the specific reason: %q", out)
	}
	if !strings.Contains(out, "still alive after KILL") {
		t.Errorf("missing survivor line: %q", out)
	}
}

func TestOutcomesJSON(t *testing.T) {
	outcomes := []model.TerminationOutcome{
		{PID: 1, ProcessName: "init", Err: errs.New(errs.KindProtectedTarget, "pid 1 is the init process and cannot be terminated")},
		{PID: 42, VerifiedAbsent: true},
	}

	s, err := OutcomesJSON(outcomes)
	if err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded[0]["error_kind"] != "protected_target" {
		t.Errorf("expected protected_target, got %v", decoded[0]["error_kind"])
	}
	if decoded[1]["verified_absent"] != true {
		t.Errorf("expected verified_absent true")
	}
}

func TestRecordsJSON(t *testing.T) {
	records := []model.SocketRecord{
		{Protocol: model.ProtoUDP, LocalAddr: "0.0.0.0", LocalPort: 123, PID: 9, ProcessName: "ntpd", UID: 0},
	}
	s, err := RecordsJSON(records)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, present := decoded[0]["state"]; present {
		t.Error("udp record must not serialize a connection state")
	}
}
