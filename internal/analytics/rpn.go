package analytics

import (
	"math"
	"sort"
)

// RPNInput summarises one failure mode's observed history.
type RPNInput struct {
	FailureModeID        int64
	Description          string
	EventCount           int
	AverageDowntimeHours float64
	// Detection defaults to 5 when unset. FMEA detection scores need
	// process knowledge that event logs do not carry.
	Detection int
}

// RPNEntry carries the 1..10 FMEA scores and their product.
type RPNEntry struct {
	FailureModeID        int64   `json:"failure_mode_id"`
	Description          string  `json:"description"`
	EventCount           int     `json:"event_count"`
	AverageDowntimeHours float64 `json:"average_downtime_hours"`
	Occurrence           int     `json:"occurrence"`
	Severity             int     `json:"severity"`
	Detection            int     `json:"detection"`
	RPN                  int     `json:"rpn"`
}

const defaultDetection = 5

// ComputeRPN scales each mode's event share and downtime into 1..10
// occurrence and severity scores and ranks by risk priority number.
func ComputeRPN(inputs []RPNInput) []RPNEntry {
	if len(inputs) == 0 {
		return nil
	}

	totalEvents := 0
	maxDowntime := 0.0
	for _, in := range inputs {
		totalEvents += in.EventCount
		if in.AverageDowntimeHours > maxDowntime {
			maxDowntime = in.AverageDowntimeHours
		}
	}

	entries := make([]RPNEntry, 0, len(inputs))
	for _, in := range inputs {
		occurrence := 1
		if totalEvents > 0 {
			occurrence = scaleToTen(float64(in.EventCount) / float64(totalEvents))
		}
		severity := 1
		if maxDowntime > 0 {
			severity = scaleToTen(in.AverageDowntimeHours / maxDowntime)
		}
		detection := in.Detection
		if detection < 1 || detection > 10 {
			detection = defaultDetection
		}
		entries = append(entries, RPNEntry{
			FailureModeID:        in.FailureModeID,
			Description:          in.Description,
			EventCount:           in.EventCount,
			AverageDowntimeHours: in.AverageDowntimeHours,
			Occurrence:           occurrence,
			Severity:             severity,
			Detection:            detection,
			RPN:                  occurrence * severity * detection,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RPN > entries[j].RPN
	})
	return entries
}

// scaleToTen maps a fraction in [0,1] onto the 1..10 FMEA scale.
func scaleToTen(frac float64) int {
	s := int(math.Ceil(frac * 10))
	if s < 1 {
		s = 1
	}
	if s > 10 {
		s = 10
	}
	return s
}
