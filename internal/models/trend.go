package models

// TrendPoint is one day bucket of aggregated values. Days with no readings
// are omitted, never zero-filled.
type TrendPoint struct {
	Day string  `json:"day"`
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TrendResponse is the read-side payload of GET /api/readings/trends.
// PreviousAvg and ChangePct are omitted when the preceding period is empty
// or averages to zero; Direction is forced to "stable" in that case.
type TrendResponse struct {
	Metric      string       `json:"kind"`
	Period      string       `json:"period"`
	Points      []TrendPoint `json:"points"`
	CurrentAvg  float64      `json:"currentAvg"`
	PreviousAvg *float64     `json:"previousAvg,omitempty"`
	Direction   string       `json:"direction"`
	ChangePct   *float64     `json:"changePct,omitempty"`
}
