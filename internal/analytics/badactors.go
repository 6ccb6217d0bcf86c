package analytics

import "sort"

// BadActorInput is one asset's raw ranking signals.
type BadActorInput struct {
	AssetID            int64
	AssetName          string
	FailureCount       int
	TotalDowntimeHours float64
	Availability       float64
}

// BadActorEntry is one row of the ranking, worst first.
type BadActorEntry struct {
	AssetID            int64   `json:"asset_id"`
	AssetName          string  `json:"asset_name"`
	FailureCount       int     `json:"failure_count"`
	TotalDowntimeHours float64 `json:"total_downtime_hours"`
	Availability       float64 `json:"availability"`
	CompositeScore     float64 `json:"composite_score"`
}

// Composite weights: failure count and downtime dominate, availability gap
// rounds it out.
const (
	badActorWeightFailures     = 0.40
	badActorWeightDowntime     = 0.35
	badActorWeightAvailability = 0.25
)

// RankBadActors scores assets on normalised failure count, downtime and
// availability shortfall and returns the worst topN (all when topN <= 0).
func RankBadActors(inputs []BadActorInput, topN int) []BadActorEntry {
	if len(inputs) == 0 {
		return nil
	}

	maxFailures := 1
	maxDowntime := 1.0
	for _, in := range inputs {
		if in.FailureCount > maxFailures {
			maxFailures = in.FailureCount
		}
		if in.TotalDowntimeHours > maxDowntime {
			maxDowntime = in.TotalDowntimeHours
		}
	}

	entries := make([]BadActorEntry, 0, len(inputs))
	for _, in := range inputs {
		score := badActorWeightFailures*float64(in.FailureCount)/float64(maxFailures) +
			badActorWeightDowntime*in.TotalDowntimeHours/maxDowntime +
			badActorWeightAvailability*(1-clampUnit(in.Availability))
		entries = append(entries, BadActorEntry{
			AssetID:            in.AssetID,
			AssetName:          in.AssetName,
			FailureCount:       in.FailureCount,
			TotalDowntimeHours: in.TotalDowntimeHours,
			Availability:       in.Availability,
			CompositeScore:     score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompositeScore > entries[j].CompositeScore
	})
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}
