package scoring

import "math"

// AggregateConfig holds the diminishing-returns constants. They are
// empirical; the defaults are the ats-v1 values.
type AggregateConfig struct {
	Base    float64
	Scale   float64
	MaxGain int
}

// DefaultAggregateConfig returns factor = 0.6 + 0.4/sqrt(n), capped at +25.
func DefaultAggregateConfig() AggregateConfig {
	return AggregateConfig{Base: 0.6, Scale: 0.4, MaxGain: 25}
}

// Aggregation explains how a combined gain was derived.
type Aggregation struct {
	OldScore     int     `json:"old_score"`
	RawGain      int     `json:"raw_gain"`
	Count        int     `json:"count"`
	Factor       float64 `json:"factor"`
	AdjustedGain int     `json:"adjusted_gain"`
	FinalGain    int     `json:"final_gain"`
	NewScore     int     `json:"new_score"`
}

// ScoreDelta is the change the aggregation implies after the 100 cap. It is
// smaller than FinalGain when OldScore is already close to 100.
func (a Aggregation) ScoreDelta() int {
	return a.NewScore - a.OldScore
}

// Aggregate combines the estimated gains of applied suggestions with the
// default constants.
func Aggregate(oldScore int, gains []int) Aggregation {
	return DefaultAggregateConfig().Aggregate(oldScore, gains)
}

// Aggregate combines gains so applying several suggestions together cannot
// overshoot: the sum is discounted by Base + Scale/sqrt(n) and capped.
func (c AggregateConfig) Aggregate(oldScore int, gains []int) Aggregation {
	agg := Aggregation{OldScore: oldScore, Count: len(gains), Factor: 1}
	for _, g := range gains {
		agg.RawGain += g
	}
	if agg.Count > 0 {
		agg.Factor = c.Base + c.Scale/math.Sqrt(float64(agg.Count))
	}
	agg.AdjustedGain = int(math.Round(float64(agg.RawGain) * agg.Factor))
	agg.FinalGain = agg.AdjustedGain
	if agg.FinalGain > c.MaxGain {
		agg.FinalGain = c.MaxGain
	}
	agg.NewScore = oldScore + agg.FinalGain
	if agg.NewScore > 100 {
		agg.NewScore = 100
	}
	return agg
}
