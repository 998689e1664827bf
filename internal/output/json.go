package output

import (
	"encoding/json"

	"github.com/pranshuparmar/portreap/pkg/model"
)

func RecordsJSON(records []model.SocketRecord) (string, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// outcomeJSON flattens an outcome for machine consumption; the error is
// rendered as its message plus kind string.
type outcomeJSON struct {
	PID            int                   `json:"pid"`
	ProcessName    string                `json:"process_name,omitempty"`
	Attempts       []model.SignalAttempt `json:"attempts,omitempty"`
	VerifiedAbsent bool                  `json:"verified_absent"`
	Error          string                `json:"error,omitempty"`
	ErrorKind      string                `json:"error_kind,omitempty"`
}

func OutcomesJSON(outcomes []model.TerminationOutcome) (string, error) {
	out := make([]outcomeJSON, 0, len(outcomes))
	for _, o := range outcomes {
		j := outcomeJSON{
			PID:            o.PID,
			ProcessName:    o.ProcessName,
			Attempts:       o.Attempts,
			VerifiedAbsent: o.VerifiedAbsent,
		}
		if o.Err != nil {
			j.Error = o.Err.Error()
			j.ErrorKind = kindString(o.Err)
		}
		out = append(out, j)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
