package model

// PassiveTelemetry is captured by the quiz flow while a session is taken.
// Slices are indexed by question in presentation order.
type PassiveTelemetry struct {
	ImpulseClicks int       `json:"impulse_clicks"`
	Switches      []int     `json:"switches"`
	DurationsMs   []float64 `json:"durations_ms"`
}

// ActiveSignal is the outcome of one mini-game round.
type ActiveSignal struct {
	GameID string             `json:"game_id"`
	Score  float64            `json:"score"` // normalized 0-1
	Aux    map[string]float64 `json:"aux,omitempty"`
}
