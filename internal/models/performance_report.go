package models

import "gorm.io/gorm"

// PerformanceReport captures an agent's final performance snapshot, written
// once when the agent shuts down.
type PerformanceReport struct {
	gorm.Model
	AgentID        string  `json:"agent_id" gorm:"index"`
	Symbol         string  `json:"symbol"`
	Mode           string  `json:"mode"`
	Equity         float64 `json:"equity"`
	RealizedPnL    float64 `json:"realized_pnl"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
	TotalReturn    float64 `json:"total_return"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	WinRate        float64 `json:"win_rate"`
	FinalPositions int     `json:"final_positions"`
}
