package main

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trading-agent-go/internal/models"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log *zap.Logger
	db  *gorm.DB
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, db *gorm.DB) *APIHandler {
	return &APIHandler{log: log, db: db}
}

// TradesHandler returns historical trades, most recent first. The optional
// ?agent=<id> parameter narrows to one agent.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	query := h.db.Order("timestamp desc")
	if id := r.URL.Query().Get("agent"); id != "" {
		query = query.Where("agent_id = ?", id)
	}

	var trades []models.Trade
	if err := query.Find(&trades).Error; err != nil {
		h.log.Error("Failed to get trades from database", zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

// ReportsHandler returns the stored performance reports, newest first.
func (h *APIHandler) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	query := h.db.Order("created_at desc")
	if id := r.URL.Query().Get("agent"); id != "" {
		query = query.Where("agent_id = ?", id)
	}

	var reports []models.PerformanceReport
	if err := query.Find(&reports).Error; err != nil {
		h.log.Error("Failed to get reports from database", zap.Error(err))
		http.Error(w, "Failed to get reports", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

// StatsDetail holds calculated statistics for a given period.
type StatsDetail struct {
	TotalTrades      int64   `json:"total_trades"`
	ProfitableTrades int64   `json:"profitable_trades"`
	WinRate          float64 `json:"win_rate"`
	TotalProfit      float64 `json:"total_profit"`
}

// StatisticsResponse is the structure for the /api/statistics endpoint.
type StatisticsResponse struct {
	Since24h StatsDetail `json:"since_24h"`
	AllTime  StatsDetail `json:"all_time"`
}

// StatisticsHandler calculates win statistics over closing trades. Only
// sells realize PnL, so buys are excluded.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	query := h.db.Where("action = ?", "sell")
	if id := r.URL.Query().Get("agent"); id != "" {
		query = query.Where("agent_id = ?", id)
	}

	var sells []models.Trade
	if err := query.Find(&sells).Error; err != nil {
		h.log.Error("Failed to get trades for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	since24h := now.Add(-24 * time.Hour)

	stats24h := StatsDetail{}
	statsAllTime := StatsDetail{}

	for _, trade := range sells {
		statsAllTime.TotalTrades++
		if trade.Profit > 0 {
			statsAllTime.ProfitableTrades++
		}
		statsAllTime.TotalProfit += trade.Profit

		if time.Unix(trade.Timestamp, 0).After(since24h) {
			stats24h.TotalTrades++
			if trade.Profit > 0 {
				stats24h.ProfitableTrades++
			}
			stats24h.TotalProfit += trade.Profit
		}
	}

	if statsAllTime.TotalTrades > 0 {
		statsAllTime.WinRate = float64(statsAllTime.ProfitableTrades) / float64(statsAllTime.TotalTrades)
	}
	if stats24h.TotalTrades > 0 {
		stats24h.WinRate = float64(stats24h.ProfitableTrades) / float64(stats24h.TotalTrades)
	}

	response := StatisticsResponse{
		Since24h: stats24h,
		AllTime:  statsAllTime,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
