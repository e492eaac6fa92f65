package stream

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pool-signal-lab/internal/observability"
)

// WSConfig configures WebSocket source behavior.
type WSConfig struct {
	Endpoint string
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig(endpoint string) WSConfig {
	return WSConfig{
		Endpoint:          endpoint,
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
	}
}

// WSSource consumes decoded pool records from a WebSocket feed,
// reconnecting with capped backoff when the connection drops.
type WSSource struct {
	cfg     WSConfig
	log     zerolog.Logger
	metrics *observability.Metrics
}

// NewWSSource creates a WebSocket source.
func NewWSSource(cfg WSConfig, log zerolog.Logger) *WSSource {
	return &WSSource{
		cfg:     cfg,
		log:     log.With().Str("component", "ws_source").Logger(),
		metrics: observability.DefaultMetrics,
	}
}

// Run consumes until the context is cancelled.
func (s *WSSource) Run(ctx context.Context, handle Handler) error {
	delay := s.cfg.ReconnectDelay

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.Endpoint, nil)
		if err != nil {
			s.metrics.StreamReconnects.Inc()
			s.log.Warn().Err(err).Dur("retry_in", delay).Msg("dial failed")
			if !sleepCtx(ctx, delay) {
				return ctx.Err()
			}
			delay = minDuration(delay*2, s.cfg.MaxReconnectDelay)
			continue
		}
		delay = s.cfg.ReconnectDelay
		s.log.Info().Str("endpoint", s.cfg.Endpoint).Msg("connected")

		err = s.readLoop(ctx, conn, handle)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.metrics.StreamReconnects.Inc()
		s.log.Warn().Err(err).Msg("connection lost, reconnecting")
	}
}

func (s *WSSource) readLoop(ctx context.Context, conn *websocket.Conn, handle Handler) error {
	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		if s.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		s.metrics.StreamMessages.Inc()

		rec, err := DecodeRecord(payload)
		if err != nil {
			s.metrics.StreamDecodeErrors.Inc()
			s.log.Warn().Err(err).Msg("undecodable payload skipped")
			continue
		}
		if err := handle(ctx, rec); err != nil {
			s.log.Warn().Err(err).Msg("record not processed")
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
