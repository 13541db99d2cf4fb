// Package ingest owns the channel-message half of the pipeline: cursor
// tracking, startup gap recovery, and the per-message processing step.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vartalabs/varta-ingest/internal/domain"
	"github.com/vartalabs/varta-ingest/internal/observability"
	"github.com/vartalabs/varta-ingest/internal/store"
)

// Source is the external channel client. It owns the session and its retry
// policy; the ingestor only consumes messages and observes connection loss
// through channel closure.
type Source interface {
	// FetchSince returns messages with identifier strictly greater than
	// afterID, oldest first, truncated to the most recent limit.
	FetchSince(ctx context.Context, afterID int64, limit int) ([]domain.RawMessage, error)

	// Subscribe opens a live subscription after the given identifier; pass a
	// negative value to start at the newest message. The returned channel
	// closes on connection loss.
	Subscribe(ctx context.Context, afterID int64) (<-chan domain.RawMessage, error)
}

// State of the ingestor's lifecycle.
type State int32

// Lifecycle states, in order of progression. Stopped is terminal.
const (
	StateStopped State = iota
	StateStarting
	StateCatchingUp
	StateListening
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateCatchingUp:
		return "catching_up"
	case StateListening:
		return "listening"
	default:
		return "stopped"
	}
}

// Ingestor consumes the channel source, classifies each message, persists it,
// and forwards it to the sink. It is the single writer of both the cursor and
// the history store.
type Ingestor struct {
	source       Source
	cursor       *store.CursorStore
	history      *store.HistoryStore
	settings     *store.SettingsStore
	sink         domain.Sink
	logger       *slog.Logger
	metrics      *observability.Metrics
	catchupLimit int

	state atomic.Int32
}

// New creates an Ingestor. catchupLimit bounds startup gap recovery.
func New(source Source, cursor *store.CursorStore, history *store.HistoryStore,
	settings *store.SettingsStore, sink domain.Sink, logger *slog.Logger,
	metrics *observability.Metrics, catchupLimit int,
) *Ingestor {
	return &Ingestor{
		source:       source,
		cursor:       cursor,
		history:      history,
		settings:     settings,
		sink:         sink,
		logger:       logger,
		metrics:      metrics,
		catchupLimit: catchupLimit,
	}
}

// State returns the current lifecycle state.
func (i *Ingestor) State() State {
	return State(i.state.Load())
}

// CheckReadiness returns nil once the live subscription is established.
func (i *Ingestor) CheckReadiness(_ context.Context) error {
	if i.State() != StateListening {
		return errors.New("channel ingestor is not listening")
	}
	return nil
}

// Run executes the ingestor lifecycle: catch-up from the persisted cursor,
// then live listening until the connection is lost or ctx is cancelled.
// Connection loss is terminal here; reconnection belongs to the channel
// client.
func (i *Ingestor) Run(ctx context.Context) error {
	i.setState(StateStarting)
	i.logger.Info("channel ingestor starting")

	lastID, haveCursor := i.cursor.Load()
	if haveCursor {
		lastID = i.catchUp(ctx, lastID)
	} else {
		i.logger.Info("no cursor found, starting from live messages only")
	}
	if ctx.Err() != nil {
		i.setState(StateStopped)
		return nil
	}

	subscribeAfter := lastID
	if !haveCursor {
		subscribeAfter = -1
	}
	messages, err := i.source.Subscribe(ctx, subscribeAfter)
	if err != nil {
		i.setState(StateStopped)
		return err
	}

	i.setState(StateListening)
	i.metrics.ChannelListening.Set(1)
	defer i.metrics.ChannelListening.Set(0)
	i.logger.Info("listening for channel messages", "after_id", subscribeAfter)

	for msg := range messages {
		i.process(msg, false)
	}

	i.setState(StateStopped)
	if ctx.Err() != nil {
		i.logger.Info("channel ingestor stopping", "reason", ctx.Err())
		return nil
	}
	i.logger.Error("channel connection lost, ingestor stopped")
	return nil
}

// catchUp fetches and processes the messages missed while offline, bounded to
// the most recent catchupLimit. Returns the highest processed identifier, or
// the starting cursor when nothing was fetched.
func (i *Ingestor) catchUp(ctx context.Context, afterID int64) int64 {
	i.setState(StateCatchingUp)
	i.logger.Info("recovering missed channel messages", "cursor", afterID, "limit", i.catchupLimit)

	messages, err := i.source.FetchSince(ctx, afterID, i.catchupLimit)
	if err != nil {
		// Transient transport failure: the live subscription still covers
		// everything after the cursor for an in-range backlog.
		i.logger.Error("catch-up fetch failed", "error", err)
	}
	for _, msg := range messages {
		i.process(msg, true)
		afterID = msg.ID
	}
	if len(messages) > 0 {
		i.logger.Info("catch-up complete", "replayed", len(messages), "cursor", afterID)
	}
	return afterID
}

// process runs one message through the processing step, in both catch-up and
// live listening.
//
// The cursor is advanced before the payload is parsed: delivery is
// at-most-once per identifier, and a message that fails to decode is skipped
// permanently rather than retried.
func (i *Ingestor) process(msg domain.RawMessage, catchup bool) {
	start := time.Now()
	i.metrics.MessagesSeen.Inc()
	if catchup {
		i.metrics.CatchupReplayed.Inc()
	}

	if err := i.cursor.Save(msg.ID); err != nil {
		i.logger.Error("cursor write failed", "id", msg.ID, "error", err)
	}
	i.metrics.CursorPosition.Set(float64(msg.ID))

	event, err := domain.ParseMessage(msg)
	if errors.Is(err, domain.ErrEmptyPayload) {
		return
	}
	if err != nil {
		i.metrics.ParseErrors.Inc()
		i.logger.Warn("dropping undecodable channel message", "id", msg.ID, "error", err)
		return
	}

	verdict := domain.Classify(event.Level, event.Regions, i.settings.Region())

	if err := i.history.Append(domain.NewHistoryRecord(event, verdict)); err != nil {
		i.logger.Error("history append failed", "id", msg.ID, "error", err)
	}

	i.sink.OnAlertEvent(event, verdict)
	i.metrics.EventsForwarded.Inc()

	if event.Suppressible() {
		i.metrics.EventsSuppressed.Inc()
	} else if codes := domain.ResolveMany(event.Regions); len(codes) > 0 {
		i.sink.OnHighlightRequest(codes)
	}

	i.metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
	i.logger.Debug("channel message processed",
		"id", msg.ID,
		"severity", verdict.Severity,
		"suppressible", event.Suppressible(),
		"catchup", catchup,
	)
}

func (i *Ingestor) setState(s State) {
	i.state.Store(int32(s))
}
