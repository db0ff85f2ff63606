// Package pricefeed keeps the daily price_history table current: a
// websocket client consumes live OHLCV ticks and a scheduled filler
// backfills dates the rewards reference but the feed missed.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/observability"
	"steem-curation-lab/internal/storage"
)

// ClientConfig configures websocket client behavior.
type ClientConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is the per-message read deadline; the feed sends at
	// least a heartbeat inside this interval.
	ReadTimeout time.Duration
	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration
}

// DefaultClientConfig returns the default websocket configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       90 * time.Second,
		HandshakeTimeout:  10 * time.Second,
	}
}

// tickMessage is the feed's wire format for one daily OHLCV candle.
type tickMessage struct {
	Date   string  `json:"date"` // YYYY-MM-DD, UTC
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// parseTick converts a feed message into a price tick.
func parseTick(data []byte) (*domain.PriceTick, error) {
	var msg tickMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode tick: %w", err)
	}
	day, err := time.Parse("2006-01-02", msg.Date)
	if err != nil {
		return nil, fmt.Errorf("parse tick date %q: %w", msg.Date, err)
	}
	if msg.Close <= 0 {
		return nil, fmt.Errorf("tick for %s has non-positive close %f", msg.Date, msg.Close)
	}
	return &domain.PriceTick{
		Date:   day.UTC(),
		Open:   msg.Open,
		High:   msg.High,
		Low:    msg.Low,
		Close:  msg.Close,
		Volume: int64(msg.Volume),
	}, nil
}

// Client consumes the market-data websocket and upserts daily ticks.
type Client struct {
	endpoint string
	prices   storage.PriceStore
	config   ClientConfig
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewClient creates a price feed client.
func NewClient(endpoint string, prices storage.PriceStore, config ClientConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		prices:   prices,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run consumes the feed until the context is cancelled, reconnecting
// with exponential backoff on any connection failure. A replayed tick
// re-upserts the same date, which is harmless.
func (c *Client) Run(ctx context.Context) error {
	delay := c.config.ReconnectDelay
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("price feed disconnected",
			zap.Error(err),
			zap.Duration("retry_in", delay),
		)
		if c.metrics != nil {
			c.metrics.PriceFeedReconnects.Inc()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.config.MaxReconnectDelay {
			delay = c.config.MaxReconnectDelay
		}
	}
}

// consume runs one connection lifetime: dial, then read ticks until
// the connection breaks.
func (c *Client) consume(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.config.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	defer conn.Close()
	c.logger.Info("price feed connected", zap.String("endpoint", c.endpoint))

	// Unblock the read loop on shutdown.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read tick: %w", err)
		}

		tick, err := parseTick(data)
		if err != nil {
			// A malformed message is the feed's bug, not a reason to
			// reconnect.
			c.logger.Warn("skipping malformed tick", zap.Error(err))
			continue
		}
		if err := c.prices.Upsert(ctx, tick); err != nil {
			return fmt.Errorf("upsert tick %s: %w", tick.Date.Format("2006-01-02"), err)
		}
		if c.metrics != nil {
			c.metrics.PriceTicksReceived.Inc()
		}
	}
}
