package agent

import "trading-agent-go/internal/signal"

// Decision is one intended trade, collected during the analysis phases and
// executed together at the end of the cycle.
type Decision struct {
	Action     signal.Action `json:"action"`
	Size       float64       `json:"size"`
	Price      float64       `json:"price"`
	Confidence float64       `json:"confidence"`
	Reasoning  string        `json:"reasoning"`
	// LotID names the lot that triggered an exit decision. Sells always
	// close oldest-first regardless; the ID is audit metadata.
	LotID string `json:"lot_id,omitempty"`
}
