package models

import "gorm.io/gorm"

// Trade represents an executed trade record in the database.
type Trade struct {
	gorm.Model
	AgentID       string  `json:"agent_id" gorm:"index"`
	Symbol        string  `json:"symbol"`
	Action        string  `json:"action"` // "buy" or "sell"
	Price         float64 `json:"price"`
	Quantity      float64 `json:"quantity"`
	QuoteQuantity float64 `json:"quote_quantity"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
	LotID         string  `json:"lot_id,omitempty"`
	Timestamp     int64   `json:"timestamp"`
	IsSimulation  bool    `json:"is_simulation"`
	Profit        float64 `json:"profit,omitempty"`
}
