package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trading-agent-go/internal/executor"
	"trading-agent-go/internal/indicator"
	"trading-agent-go/internal/market"
	"trading-agent-go/internal/models"
	"trading-agent-go/internal/signal"
	"trading-agent-go/internal/tracker"
)

// cycle runs one pass of the trading loop. Decisions from the entry,
// management, and governance phases are collected and executed together;
// any phase error is logged and the cycle moves on.
func (a *Agent) cycle(ctx context.Context) error {
	// Fetch the market window.
	series, err := a.provider.Latest(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch market data: %w", err)
	}
	if series.Len() == 0 {
		return fmt.Errorf("market window for %s is empty", a.cfg.Symbol)
	}
	price := series.LastPrice()
	a.lastPrice = price

	// Classify the market condition.
	cond := market.Classify(series.Prices)

	// Refresh the indicator snapshot. The previous snapshot is kept when
	// the history is too short.
	if a.cfg.UseTechnicalAnalysis && series.Len() >= indicator.MinHistory {
		snap, err := indicator.Compute(series.Prices, series.Volumes)
		if err != nil {
			a.logger.Error("Indicator computation failed", zap.Error(err))
		} else {
			a.snapshot = snap
		}
	}

	// Run model inference.
	var sigs signal.ModelSignals
	if a.cfg.UseModelPredictions {
		sigs, err = a.source.Signals(ctx, series, a.snapshot)
		if err != nil {
			a.logger.Error("Model inference failed", zap.Error(err))
			sigs = signal.ModelSignals{}
		}
	}

	// Aggregate signals and size the entry.
	rec := signal.Aggregate(cond, a.snapshot, sigs)
	var decisions []Decision
	if rec.Confidence < signal.MinTradeConfidence {
		a.logger.Info("Low confidence, skipping trade",
			zap.Float64("confidence", rec.Confidence),
			zap.String("action", string(rec.Action)),
		)
	} else if rec.Action != signal.ActionHold {
		size := a.sizer.Size(rec.Action, price, a.perf.AccountValue(), a.winRate(), a.book.TotalSize())
		if size > 0 {
			decisions = append(decisions, Decision{
				Action:     rec.Action,
				Size:       size,
				Price:      price,
				Confidence: rec.Confidence,
				Reasoning:  rec.Reasoning,
			})
		}
	}

	// Manage open positions, then apply portfolio-level risk control. The
	// governor reads the risk figures tracked at the end of the previous
	// cycle.
	decisions = append(decisions, a.manager.Review(a.book.Lots(), price)...)
	decisions = append(decisions, a.governor.Review(a.perf.RiskLevel(), a.perf.Drawdown(), a.book.Lots(), price)...)

	// Execute what was decided.
	for _, dec := range decisions {
		if err := a.execute(ctx, dec); err != nil {
			a.logger.Error("Order execution failed", zap.Error(err))
		}
	}

	// Track metrics and publish the cycle's state.
	metrics := a.perf.Apply(tracker.Update{
		RealizedPnL:     a.book.RealizedPnL(),
		UnrealizedPnL:   a.book.UnrealizedPnL(price),
		Exposure:        a.book.Exposure(price),
		TotalTrades:     a.totalTrades,
		WinningTrades:   a.book.Wins(),
		ActivePositions: a.book.Len(),
	})
	a.publishStatus(cond, rec, metrics)

	return nil
}

// execute submits one decision and applies the fill to the book. Rejected
// orders change nothing. PnL is realized only through FIFO closes.
func (a *Agent) execute(ctx context.Context, dec Decision) error {
	a.logger.Info("Executing order",
		zap.String("action", string(dec.Action)),
		zap.Float64("size", dec.Size),
		zap.Float64("price", dec.Price),
		zap.String("reasoning", dec.Reasoning),
	)

	accepted, err := a.exec.Submit(ctx, executor.Order{
		AgentID:    a.cfg.ID,
		Symbol:     a.cfg.Symbol,
		Action:     dec.Action,
		Size:       dec.Size,
		Price:      dec.Price,
		Confidence: dec.Confidence,
		Reasoning:  dec.Reasoning,
	})
	if err != nil {
		return fmt.Errorf("failed to submit order: %w", err)
	}
	if !accepted {
		a.logger.Warn("Order not accepted",
			zap.String("action", string(dec.Action)),
			zap.Float64("size", dec.Size),
		)
		return nil
	}

	var profit float64
	lotID := dec.LotID
	switch dec.Action {
	case signal.ActionBuy:
		lot := a.book.Open(dec.Size, dec.Price)
		lotID = lot.ID
	case signal.ActionSell:
		closures, realized := a.book.CloseFIFO(dec.Size, dec.Price)
		profit = realized

		var closedSize float64
		for _, c := range closures {
			closedSize += c.Size
		}
		if closedSize+sizeEpsilon < dec.Size {
			a.logger.Warn("Sell exceeded held size, closed what was available",
				zap.Float64("requested", dec.Size),
				zap.Float64("closed", closedSize),
			)
		}
		if lotID == "" && len(closures) > 0 {
			lotID = closures[0].LotID
		}
	}

	a.totalTrades++
	a.perf.RecordTrade(string(dec.Action))

	trade := models.Trade{
		AgentID:       a.cfg.ID,
		Symbol:        a.cfg.Symbol,
		Action:        string(dec.Action),
		Price:         dec.Price,
		Quantity:      dec.Size,
		QuoteQuantity: dec.Size * dec.Price,
		Confidence:    dec.Confidence,
		Reasoning:     dec.Reasoning,
		LotID:         lotID,
		Timestamp:     time.Now().Unix(),
		IsSimulation:  a.cfg.DryRun,
		Profit:        profit,
	}
	if err := a.db.Create(&trade).Error; err != nil {
		// State is already updated; a failed audit row must not stop trading.
		a.logger.Error("Failed to save trade record to database", zap.Error(err))
	}

	return nil
}
