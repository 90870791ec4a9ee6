package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formstate/pkg/notify"
)

var fixed = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestQueueFIFOAndSanitize(t *testing.T) {
	q := notify.NewQueue(notify.WithClock(func() time.Time { return fixed }))
	q.Notify(notify.Info("Profile updated", "<b>Saved</b> your changes"))
	q.Notify(notify.Error("Submission failed", "backend unreachable"))

	require.Equal(t, 2, q.Len())

	want := []notify.Message{
		{Title: "Profile updated", Description: "Saved your changes", Severity: notify.SeverityInfo, At: fixed},
		{Title: "Submission failed", Description: "backend unreachable", Severity: notify.SeverityError, At: fixed},
	}
	if diff := cmp.Diff(want, q.Drain()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	require.Zero(t, q.Len())
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := notify.NewQueue(notify.WithCapacity(2))
	for _, title := range []string{"one", "two", "three"} {
		q.Notify(notify.Info(title, ""))
	}

	got := q.Drain()
	require.Len(t, got, 2)
	require.Equal(t, "two", got[0].Title)
	require.Equal(t, "three", got[1].Title)
	require.Equal(t, 1, q.Dropped())
}

func TestQueueNextWaitsForMessage(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := notify.NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan notify.Message, 1)
	go func() {
		msg, err := q.Next(ctx)
		if err == nil {
			done <- msg
		}
		close(done)
	}()

	q.Notify(notify.Info("hello", ""))
	msg, ok := <-done
	require.True(t, ok)
	require.Equal(t, "hello", msg.Title)
}

func TestQueueNextHonoursContextAndClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := notify.NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)

	q.Notify(notify.Info("last", ""))
	q.Close()
	q.Notify(notify.Info("ignored", ""))

	msg, err := q.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "last", msg.Title)

	_, err = q.Next(context.Background())
	require.True(t, errors.Is(err, notify.ErrClosed))
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := notify.NewLogNotifier(zap.New(core))

	notify.Fanout(n, notify.Discard).Notify(notify.Error("Submission failed", "timeout"))
	n.Notify(notify.Info("Saved", ""))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "timeout", entries[0].ContextMap()["description"])
	require.Equal(t, zapcore.InfoLevel, entries[1].Level)
}
