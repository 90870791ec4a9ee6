// Package notify models the notification collaborator as message passing:
// the core enqueues short title/description messages with a severity and a
// single display component consumes them.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/sanitize"
)

// Severity selects how a message is shown.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// DefaultCapacity bounds a Queue built without an explicit size.
const DefaultCapacity = 32

// ErrClosed is returned by Next once the queue is closed and drained.
var ErrClosed = errors.New("notify: queue closed")

// Message is one transient notification.
type Message struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    Severity  `json:"severity"`
	At          time.Time `json:"at"`
}

// Info builds an info message.
func Info(title, description string) Message {
	return Message{Title: title, Description: description, Severity: SeverityInfo}
}

// Error builds an error message.
func Error(title, description string) Message {
	return Message{Title: title, Description: description, Severity: SeverityError}
}

// Notifier accepts messages for display. Notify must not block.
type Notifier interface {
	Notify(Message)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(Message)

// Notify calls fn.
func (fn NotifierFunc) Notify(msg Message) { fn(msg) }

// Discard drops every message.
var Discard Notifier = NotifierFunc(func(Message) {})

// Fanout delivers each message to every notifier in order.
func Fanout(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(msg Message) {
		for _, n := range notifiers {
			if n != nil {
				n.Notify(msg)
			}
		}
	})
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithCapacity sets the queue bound.
func WithCapacity(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) QueueOption {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// Queue is a bounded FIFO of messages. Notify never blocks: when the queue is
// full the oldest message is dropped.
type Queue struct {
	mu       sync.Mutex
	items    []Message
	capacity int
	dropped  int
	closed   bool
	signal   chan struct{}
	now      func() time.Time
}

// NewQueue builds an empty queue.
func NewQueue(options ...QueueOption) *Queue {
	q := &Queue{
		capacity: DefaultCapacity,
		signal:   make(chan struct{}),
		now:      time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(q)
		}
	}
	return q
}

// Notify implements Notifier. Text is stripped of markup and a zero At is
// stamped with the queue clock.
func (q *Queue) Notify(msg Message) {
	msg.Title = sanitize.Text(msg.Title)
	msg.Description = sanitize.Text(msg.Description)
	if msg.Severity == "" {
		msg.Severity = SeverityInfo
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if msg.At.IsZero() {
		msg.At = q.now()
	}
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, msg)
	q.wake()
}

// Next blocks until a message is available, ctx is done or the queue is
// closed and empty.
func (q *Queue) Next(ctx context.Context) (Message, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return msg, nil
		}
		if q.closed {
			q.mu.Unlock()
			return Message{}, ErrClosed
		}
		signal := q.signal
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-signal:
		}
	}
}

// Drain removes and returns every queued message.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len reports the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped reports how many messages were discarded because the queue was
// full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Close stops accepting messages and wakes blocked readers. Queued messages
// can still be read.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.wake()
}

// wake releases every waiting reader. Callers hold q.mu.
func (q *Queue) wake() {
	close(q.signal)
	q.signal = make(chan struct{})
}

// LogNotifier writes messages to a zap logger. Errors log at warn level.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier wraps logger; a nil logger discards.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(msg Message) {
	fields := []zap.Field{
		zap.String("title", sanitize.Text(msg.Title)),
		zap.String("severity", string(msg.Severity)),
	}
	if msg.Description != "" {
		fields = append(fields, zap.String("description", sanitize.Text(msg.Description)))
	}
	if msg.Severity == SeverityError {
		n.logger.Warn("notification", fields...)
		return
	}
	n.logger.Info("notification", fields...)
}
