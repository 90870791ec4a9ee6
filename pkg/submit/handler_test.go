package submit_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/notify"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/submit"
)

func registrationSchema() *model.Schema {
	return model.NewBuilder("candidate").
		Purpose(model.PurposeCandidateRegistration).
		Section("personal", "Personal Information",
			model.Field{Key: "fullName", Required: true},
			model.Field{Key: "email", Kind: model.FieldKindEmail, Required: true},
			model.Field{Key: "experienceYears", Kind: model.FieldKindNumber},
		).
		MustBuild()
}

func validSeed() model.Record {
	return model.Record{"fullName": "Asha Rao", "email": "asha@example.com", "experienceYears": "3"}
}

// gatedBackend blocks every call until release is closed and counts calls.
type gatedBackend struct {
	calls   atomic.Int32
	release chan struct{}
	resp    submit.Response
	err     error

	mu   sync.Mutex
	reqs []submit.Request
}

func newGatedBackend(resp submit.Response, err error) *gatedBackend {
	return &gatedBackend{release: make(chan struct{}), resp: resp, err: err}
}

func (b *gatedBackend) Submit(ctx context.Context, req submit.Request) (submit.Response, error) {
	b.calls.Add(1)
	b.mu.Lock()
	b.reqs = append(b.reqs, req)
	b.mu.Unlock()
	select {
	case <-b.release:
		return b.resp, b.err
	case <-ctx.Done():
		return submit.Response{}, ctx.Err()
	}
}

func (b *gatedBackend) lastRequest() submit.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reqs[len(b.reqs)-1]
}

func wait(t *testing.T, p *submit.Pending) submit.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := p.Wait(ctx)
	require.NoError(t, err)
	return result
}

func TestSubmitBlockedByValidation(t *testing.T) {
	defer goleak.VerifyNone(t)

	controller := state.New(registrationSchema(), model.Record{"fullName": "Asha Rao"})
	backend := newGatedBackend(submit.Response{OK: true}, nil)
	h := submit.New(controller, backend)
	defer h.Close()

	_, err := h.Submit(context.Background())
	require.ErrorIs(t, err, submit.ErrInvalid)
	require.Zero(t, backend.calls.Load())
	require.Equal(t, state.Invalid, controller.State())
	require.Equal(t, "email", controller.Snapshot().Focus)
	require.False(t, h.Pending())
}

func TestSubmitGuardsAgainstDuplicateCalls(t *testing.T) {
	defer goleak.VerifyNone(t)

	controller := state.New(registrationSchema(), validSeed())
	backend := newGatedBackend(submit.Response{OK: true}, nil)
	h := submit.New(controller, backend)
	defer h.Close()

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, h.Pending())

	for i := 0; i < 3; i++ {
		_, err = h.Submit(context.Background())
		require.ErrorIs(t, err, submit.ErrInFlight)
	}

	close(backend.release)
	result := wait(t, pending)
	require.Equal(t, submit.OutcomeSucceeded, result.Outcome)
	require.EqualValues(t, 1, backend.calls.Load())
	require.False(t, h.Pending())
}

func TestSubmitSuccessResetsController(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := notify.NewQueue()
	controller := state.New(registrationSchema(), nil)
	require.NoError(t, controller.Change("fullName", "Asha Rao"))
	require.NoError(t, controller.Change("email", "asha@example.com"))
	require.NoError(t, controller.Change("experienceYears", " 3 "))

	backend := newGatedBackend(submit.Response{OK: true, Seed: model.Record{"fullName": "Asha Rao", "email": "asha@example.com", "experienceYears": 3}}, nil)
	close(backend.release)
	h := submit.New(controller, backend, submit.WithNotifier(queue), submit.WithIDGenerator(func() string { return "sub-1" }))
	defer h.Close()

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sub-1", pending.ID())
	result := wait(t, pending)
	require.Equal(t, submit.OutcomeSucceeded, result.Outcome)

	snap := controller.Snapshot()
	require.Equal(t, state.Pristine, snap.State)
	require.False(t, snap.EditMode)
	require.Empty(t, snap.Dirty)
	require.Equal(t, 3, snap.Values["experienceYears"])

	messages := queue.Drain()
	require.Len(t, messages, 1)
	require.Equal(t, notify.SeverityInfo, messages[0].Severity)
	require.Equal(t, "Saved", messages[0].Title)

	req := backend.lastRequest()
	require.Equal(t, "sub-1", req.ID)
	require.Equal(t, model.PurposeCandidateRegistration, req.Purpose)
	require.Equal(t, "candidate", req.FormID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(req.Payload, &payload))
	require.Equal(t, map[string]any{"fullName": "Asha Rao", "email": "asha@example.com", "experienceYears": float64(3)}, payload)
}

func TestSubmitSuccessWithoutSeedKeepsSubmittedValues(t *testing.T) {
	defer goleak.VerifyNone(t)

	controller := state.New(registrationSchema(), validSeed())
	backend := submit.BackendFunc(func(ctx context.Context, req submit.Request) (submit.Response, error) {
		return submit.Response{OK: true}, nil
	})
	h := submit.New(controller, backend)
	defer h.Close()

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	wait(t, pending)

	require.Equal(t, validSeed(), controller.Values())
	require.Equal(t, state.Pristine, controller.State())
}

func TestSubmitRejectionMergesServerErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := notify.NewQueue()
	controller := state.New(registrationSchema(), validSeed())
	backend := submit.BackendFunc(func(ctx context.Context, req submit.Request) (submit.Response, error) {
		return submit.Response{
			FieldErrors: map[string][]string{"/body/email": {"is already registered"}},
			FormErrors:  []string{"Registration could not be completed"},
		}, nil
	})
	h := submit.New(controller, backend, submit.WithNotifier(queue))
	defer h.Close()

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	result := wait(t, pending)
	require.Equal(t, submit.OutcomeRejected, result.Outcome)

	snap := controller.Snapshot()
	require.Equal(t, state.Invalid, snap.State)
	require.True(t, snap.EditMode)
	require.Equal(t, "is already registered", snap.Error("email"))
	require.Equal(t, []string{"Registration could not be completed"}, snap.FormErrors)
	require.Equal(t, validSeed(), snap.Values)

	messages := queue.Drain()
	require.Len(t, messages, 1)
	require.Equal(t, notify.SeverityError, messages[0].Severity)
	require.Equal(t, "Registration could not be completed", messages[0].Description)

	// The server issue blocks resubmission until the field changes.
	_, err = h.Submit(context.Background())
	require.ErrorIs(t, err, submit.ErrInvalid)
	require.NoError(t, controller.Change("email", "asha.rao@example.com"))
	require.True(t, controller.Result().Valid())
}

func TestSubmitTransportFailureKeepsInput(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := notify.NewQueue()
	controller := state.New(registrationSchema(), nil)
	for key, value := range validSeed() {
		require.NoError(t, controller.Change(key, value))
	}
	before := controller.Snapshot()

	backend := newGatedBackend(submit.Response{}, errors.New("connection refused"))
	close(backend.release)
	h := submit.New(controller, backend, submit.WithNotifier(queue))
	defer h.Close()

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	result := wait(t, pending)
	require.Equal(t, submit.OutcomeFailed, result.Outcome)
	require.ErrorIs(t, result.Err, submit.ErrTransport)

	snap := controller.Snapshot()
	require.Equal(t, state.Valid, snap.State)
	require.True(t, snap.EditMode)
	require.Equal(t, before.Values, snap.Values)
	require.Equal(t, before.Dirty, snap.Dirty)

	messages := queue.Drain()
	require.Len(t, messages, 1)
	require.Equal(t, notify.SeverityError, messages[0].Severity)

	// Retrying goes through the same action.
	backend.err = nil
	backend.resp = submit.Response{OK: true}
	pending, err = h.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, submit.OutcomeSucceeded, wait(t, pending).Outcome)
}

func TestSubmitTimeoutResolvesPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := notify.NewQueue()
	controller := state.New(registrationSchema(), validSeed())
	backend := newGatedBackend(submit.Response{OK: true}, nil)
	h := submit.New(controller, backend, submit.WithNotifier(queue), submit.WithTimeout(20*time.Millisecond))
	defer h.Close()

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	result := wait(t, pending)
	require.Equal(t, submit.OutcomeFailed, result.Outcome)
	require.ErrorIs(t, result.Err, context.DeadlineExceeded)
	require.ErrorIs(t, result.Err, submit.ErrTransport)
	require.Equal(t, 1, queue.Len())
}

func TestCloseDiscardsLateResponse(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := notify.NewQueue()
	controller := state.New(registrationSchema(), validSeed())
	rec := make(chan string, 8)
	controller.OnTransition(func(from, to state.State) { rec <- string(to) })

	started := make(chan struct{})
	release := make(chan struct{})
	backend := submit.BackendFunc(func(ctx context.Context, req submit.Request) (submit.Response, error) {
		close(started)
		<-release
		return submit.Response{OK: true, Seed: model.Record{"fullName": "Someone Else"}}, nil
	})
	h := submit.New(controller, backend, submit.WithNotifier(queue))

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	<-started
	before := controller.Snapshot()
	for len(rec) > 0 {
		<-rec
	}

	h.Close()
	close(release)
	result := wait(t, pending)
	require.Equal(t, submit.OutcomeDiscarded, result.Outcome)

	require.Equal(t, before, controller.Snapshot())
	require.Zero(t, queue.Len())
	require.Empty(t, rec)

	_, err = h.Submit(context.Background())
	require.ErrorIs(t, err, submit.ErrClosed)
}

func TestCloseCancelsInFlightCall(t *testing.T) {
	defer goleak.VerifyNone(t)

	controller := state.New(registrationSchema(), validSeed())
	backend := newGatedBackend(submit.Response{OK: true}, nil)
	h := submit.New(controller, backend)

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	h.Close()

	result := wait(t, pending)
	require.Equal(t, submit.OutcomeDiscarded, result.Outcome)
	require.False(t, h.Pending())
}

func TestSubmitFreezesEditingWhilePending(t *testing.T) {
	defer goleak.VerifyNone(t)

	controller := state.New(registrationSchema(), validSeed())
	backend := newGatedBackend(submit.Response{FieldErrors: map[string][]string{"fullName": {"blocked"}}}, nil)
	h := submit.New(controller, backend)
	defer h.Close()

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	require.ErrorIs(t, controller.Change("fullName", "X"), state.ErrReadOnly)

	close(backend.release)
	require.Equal(t, submit.OutcomeRejected, wait(t, pending).Outcome)
	require.NoError(t, controller.Change("fullName", "Asha R"))
}

func TestCloseFromNotifierDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	controller := state.New(registrationSchema(), validSeed())
	backend := newGatedBackend(submit.Response{OK: true}, nil)
	close(backend.release)

	var h *submit.Handler
	var seen []notify.Message
	closer := notify.NotifierFunc(func(msg notify.Message) {
		seen = append(seen, msg)
		h.Close()
	})
	h = submit.New(controller, backend, submit.WithNotifier(closer))

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	result := wait(t, pending)
	require.Equal(t, submit.OutcomeSucceeded, result.Outcome)
	require.Len(t, seen, 1)
	require.False(t, h.Pending())

	_, err = h.Submit(context.Background())
	require.ErrorIs(t, err, submit.ErrClosed)
}

func TestTransitionObserverMayCloseOrResubmit(t *testing.T) {
	defer goleak.VerifyNone(t)

	controller := state.New(registrationSchema(), validSeed())
	backend := newGatedBackend(submit.Response{FieldErrors: map[string][]string{"email": {"already registered"}}}, nil)
	close(backend.release)
	queue := notify.NewQueue()
	h := submit.New(controller, backend, submit.WithNotifier(queue))

	resubmit := make(chan error, 1)
	controller.OnTransition(func(_, to state.State) {
		if to != state.Invalid {
			return
		}
		_, err := h.Submit(context.Background())
		resubmit <- err
		h.Close()
	})

	pending, err := h.Submit(context.Background())
	require.NoError(t, err)
	result := wait(t, pending)
	require.Equal(t, submit.OutcomeRejected, result.Outcome)
	require.ErrorIs(t, <-resubmit, submit.ErrInFlight)

	// The rejection was applied before Close, so it is still reported.
	require.Equal(t, 1, queue.Len())
	require.Equal(t, "already registered", controller.Snapshot().Error("email"))
	require.Equal(t, int32(1), backend.calls.Load())
}
