package model

// Command selects what the simulator should do with a request.
type Command string

const (
	CommandPing    Command = "PING"
	CommandPredict Command = "PREDICT"
)

// Status classifies a simulator response.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
	StatusPong    Status = "PONG"
)

// Weights are the stacking weights for the simulated, bayesian and pattern models.
type Weights struct {
	Simulated float64 `json:"simulated" koanf:"simulated"`
	Bayesian  float64 `json:"bayesian" koanf:"bayesian"`
	Pattern   float64 `json:"pattern" koanf:"pattern"`
}

// PredictOptions are per-request overrides. Zero values mean "use the engine default".
type PredictOptions struct {
	RunCount int      `json:"run_count,omitempty"`
	Weights  *Weights `json:"weights,omitempty"`
	Seed     int64    `json:"seed,omitempty"`
}

// Request is a message sent to the simulator.
type Request struct {
	ID          string          `json:"id"`
	Command     Command         `json:"command"`
	Snapshot    *Snapshot       `json:"snapshot,omitempty"`
	Options     *PredictOptions `json:"config,omitempty"`
	HistoryHint *int            `json:"history_hint,omitempty"`
}

// Clone deep-copies the request.
func (r Request) Clone() Request {
	out := r
	if r.Snapshot != nil {
		s := r.Snapshot.Clone()
		out.Snapshot = &s
	}
	if r.Options != nil {
		o := *r.Options
		if r.Options.Weights != nil {
			w := *r.Options.Weights
			o.Weights = &w
		}
		out.Options = &o
	}
	if r.HistoryHint != nil {
		h := *r.HistoryHint
		out.HistoryHint = &h
	}
	return out
}

// Response is the simulator's reply; ID echoes the request.
type Response struct {
	ID     string            `json:"id"`
	Status Status            `json:"status"`
	Result *PredictionResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
	Trace  string            `json:"trace,omitempty"`
}
