// Package channel consumes the moderated alert channel. The channel is a
// single-partition Kafka topic: the broker assigns each message a
// monotonically increasing offset, which serves directly as the message
// identifier the cursor tracks.
package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/vartalabs/varta-ingest/internal/domain"
)

// SubscribeFromNewest starts a live subscription at the end of the channel,
// skipping the backlog. Used on first run, when no cursor exists.
const SubscribeFromNewest = int64(-1)

// Client reads alert messages from the channel topic. Session management,
// reconnect policy, and broker authentication all live in the underlying
// Kafka client; this adapter only maps messages and offsets.
type Client struct {
	brokers []string
	topic   string
	logger  *slog.Logger
}

// NewClient creates a channel client for the configured topic.
func NewClient(brokers []string, topic string, logger *slog.Logger) *Client {
	return &Client{brokers: brokers, topic: topic, logger: logger}
}

// FetchSince returns messages with identifier strictly greater than afterID,
// oldest first, truncated to the most recent limit messages. A backlog larger
// than limit is skipped, not replayed.
func (c *Client) FetchSince(ctx context.Context, afterID int64, limit int) ([]domain.RawMessage, error) {
	conn, err := kafkago.DialLeader(ctx, "tcp", c.brokers[0], c.topic, 0)
	if err != nil {
		return nil, fmt.Errorf("dial channel leader: %w", err)
	}
	defer conn.Close()

	first, err := conn.ReadFirstOffset()
	if err != nil {
		return nil, fmt.Errorf("read first offset: %w", err)
	}
	end, err := conn.ReadLastOffset()
	if err != nil {
		return nil, fmt.Errorf("read end offset: %w", err)
	}

	start, skipped := catchupRange(first, end, afterID, limit)
	if skipped > 0 {
		c.logger.Warn("catch-up backlog exceeds limit, skipping oldest messages",
			"skipped", skipped, "limit", limit)
	}
	if start >= end {
		return nil, nil
	}

	reader := c.newReader()
	defer reader.Close()
	if err := reader.SetOffset(start); err != nil {
		return nil, fmt.Errorf("seek channel offset: %w", err)
	}

	messages := make([]domain.RawMessage, 0, end-start)
	for offset := start; offset < end; offset++ {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return messages, fmt.Errorf("read channel message: %w", err)
		}
		messages = append(messages, mapMessage(msg))
	}
	return messages, nil
}

// Subscribe opens a live subscription delivering messages with identifier
// greater than afterID, in order. The returned channel is closed when the
// connection is lost or ctx is cancelled; the subscription is not retried
// here.
func (c *Client) Subscribe(ctx context.Context, afterID int64) (<-chan domain.RawMessage, error) {
	reader := c.newReader()

	offset := kafkago.LastOffset
	if afterID != SubscribeFromNewest {
		offset = afterID + 1
	}
	if err := reader.SetOffset(offset); err != nil {
		reader.Close()
		return nil, fmt.Errorf("seek channel offset: %w", err)
	}

	out := make(chan domain.RawMessage)
	go func() {
		defer close(out)
		defer reader.Close()
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, io.EOF) {
					c.logger.Error("channel subscription lost", "error", err)
				}
				return
			}
			select {
			case out <- mapMessage(msg):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *Client) newReader() *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   c.brokers,
		Topic:     c.topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
}

// catchupRange computes the replay window [start, end) for a topic holding
// offsets [first, end), given the persisted cursor. A backlog beyond limit is
// truncated to the most recent limit messages; skipped reports how many were
// dropped.
func catchupRange(first, end, afterID int64, limit int) (start, skipped int64) {
	start = afterID + 1
	if start < first {
		start = first
	}
	if start > end {
		start = end
	}
	if end-start > int64(limit) {
		skipped = end - start - int64(limit)
		start = end - int64(limit)
	}
	return start, skipped
}

// mapMessage converts a Kafka message into the domain's raw message shape.
func mapMessage(msg kafkago.Message) domain.RawMessage {
	return domain.RawMessage{
		ID:        msg.Offset,
		Text:      string(msg.Value),
		Timestamp: msg.Time,
	}
}
