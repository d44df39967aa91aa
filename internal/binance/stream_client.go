package binance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"trading-agent-go/internal/config"
)

const (
	streamReadTimeout  = 60 * time.Second
	streamWriteTimeout = 10 * time.Second
	streamMaxBackoff   = 30 * time.Second
	streamReadLimit    = 512 * 1024
)

// KlineStream subscribes to a Binance kline websocket stream and delivers
// closed candles on a channel. It reconnects with exponential backoff until
// the context is cancelled, after which the events channel is closed.
type KlineStream struct {
	url    string
	symbol string
	logger *zap.Logger
	events chan Kline
}

// NewKlineStream prepares a stream for one symbol and interval. Run must be
// called to start it.
func NewKlineStream(cfg *config.Binance, symbol, interval string, logger *zap.Logger) *KlineStream {
	base := wsBaseURL
	if cfg.Testnet {
		base = testnetWsBaseURL
	}
	return &KlineStream{
		url:    fmt.Sprintf("%s/%s@kline_%s", base, strings.ToLower(symbol), interval),
		symbol: symbol,
		logger: logger,
		events: make(chan Kline, 256),
	}
}

// Events returns the channel of closed candles.
func (s *KlineStream) Events() <-chan Kline {
	return s.events
}

// Run blocks, maintaining the subscription until ctx is cancelled.
func (s *KlineStream) Run(ctx context.Context) {
	defer close(s.events)

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("Kline stream dial failed, retrying",
				zap.String("url", s.url),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff *= 2; backoff > streamMaxBackoff {
				backoff = streamMaxBackoff
			}
			continue
		}

		backoff = time.Second
		s.logger.Info("Kline stream connected", zap.String("symbol", s.symbol))

		err = s.readLoop(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("Kline stream disconnected, reconnecting", zap.Error(err))
	}
}

// readLoop consumes one connection until it fails. The read deadline doubles
// as the watchdog: Binance pings every few seconds, and every frame resets
// the deadline, so a silent connection errors out and triggers a redial.
func (s *KlineStream) readLoop(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(streamWriteTimeout)
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			conn.Close()
		case <-done:
		}
	}()

	conn.SetReadLimit(streamReadLimit)
	if err := conn.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
		return err
	}
	conn.SetPingHandler(func(payload string) error {
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
		deadline := time.Now().Add(streamWriteTimeout)
		return conn.WriteControl(websocket.PongMessage, []byte(payload), deadline)
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
		s.handleMessage(message)
	}
}

func (s *KlineStream) handleMessage(message []byte) {
	event := gjson.ParseBytes(message)
	if event.Get("e").String() != "kline" {
		return
	}
	k := event.Get("k")
	if !k.Get("x").Bool() {
		// Candle still open; only closed candles enter the price history.
		return
	}

	kline := Kline{
		OpenTime:  k.Get("t").Int(),
		Open:      k.Get("o").Float(),
		High:      k.Get("h").Float(),
		Low:       k.Get("l").Float(),
		Close:     k.Get("c").Float(),
		Volume:    k.Get("v").Float(),
		CloseTime: k.Get("T").Int(),
	}

	select {
	case s.events <- kline:
	default:
		s.logger.Warn("Kline stream buffer full, dropping candle", zap.String("symbol", s.symbol))
	}
}
