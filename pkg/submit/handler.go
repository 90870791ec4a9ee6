package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/notify"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/validation"
)

var (
	ErrInvalid   = errors.New("submit: form has validation errors")
	ErrInFlight  = errors.New("submit: a submission is already in flight")
	ErrClosed    = errors.New("submit: handler closed")
	ErrTransport = errors.New("submit: backend unavailable")
)

// Request is what the backend collaborator receives.
type Request struct {
	ID      string
	Purpose model.Purpose
	FormID  string
	Payload []byte
	Record  model.Record
}

// Response is the backend verdict. A response with OK false carries field
// errors keyed by backend paths and/or form-level messages.
type Response struct {
	OK          bool
	FieldErrors map[string][]string
	FormErrors  []string
	Message     string
	Seed        model.Record
}

// Backend is the external collaborator that stores records. Errors mean the
// backend could not be reached or did not answer in time.
type Backend interface {
	Submit(ctx context.Context, req Request) (Response, error)
}

// BackendFunc adapts a function into a Backend.
type BackendFunc func(ctx context.Context, req Request) (Response, error)

// Submit calls fn.
func (fn BackendFunc) Submit(ctx context.Context, req Request) (Response, error) {
	return fn(ctx, req)
}

// Messages holds the notification copy shown for each outcome.
type Messages struct {
	Success        notify.Message
	Rejected       notify.Message
	TransportError notify.Message
}

// DefaultMessages is used unless WithMessages overrides it.
var DefaultMessages = Messages{
	Success:        notify.Info("Saved", "Your details were submitted successfully."),
	Rejected:       notify.Error("Please review the form", "Some fields need your attention."),
	TransportError: notify.Error("Submission failed", "We could not reach the server. Your changes are kept, please try again."),
}

// Option configures a Handler.
type Option func(*Handler)

// WithNotifier sets where outcome notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(h *Handler) {
		if n != nil {
			h.notifier = n
		}
	}
}

// WithSerializer overrides the payload serializer.
func WithSerializer(s Serializer) Option {
	return func(h *Handler) {
		if s != nil {
			h.serializer = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithTimeout bounds each backend call. Zero leaves timing to the backend.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

// WithMessages overrides the notification copy.
func WithMessages(m Messages) Option {
	return func(h *Handler) {
		h.messages = m
	}
}

// WithIDGenerator overrides submission id generation.
func WithIDGenerator(fn func() string) Option {
	return func(h *Handler) {
		if fn != nil {
			h.newID = fn
		}
	}
}

// Handler submits one form instance. At most one submission is in flight at
// a time; a call made while one is pending returns ErrInFlight without
// reaching the backend.
type Handler struct {
	controller *state.Controller
	backend    Backend
	notifier   notify.Notifier
	serializer Serializer
	logger     *zap.Logger
	timeout    time.Duration
	messages   Messages
	newID      func() string

	guard    *semaphore.Weighted
	inflight atomic.Bool

	mu     sync.Mutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a Handler for controller that sends records to backend.
func New(controller *state.Controller, backend Backend, options ...Option) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handler{
		controller: controller,
		backend:    backend,
		notifier:   notify.Discard,
		logger:     zap.NewNop(),
		messages:   DefaultMessages,
		newID:      uuid.NewString,
		guard:      semaphore.NewWeighted(1),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	if h.serializer == nil {
		h.serializer = NewJSONSerializer(nil)
	}
	return h
}

// Pending reports whether a submission is in flight, i.e. whether the submit
// control should be disabled.
func (h *Handler) Pending() bool {
	return h.inflight.Load()
}

// Submit validates the form and, when valid, sends it to the backend in the
// background. Editing is frozen while the request is in flight. The returned
// Pending resolves once the outcome has been applied to the controller.
func (h *Handler) Submit(ctx context.Context) (*Pending, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	if !h.guard.TryAcquire(1) {
		h.logger.Debug("submission ignored while pending", zap.String("form", h.controller.Schema().ID()))
		return nil, ErrInFlight
	}

	result := h.controller.Validate()
	if !result.Valid() {
		h.guard.Release(1)
		first, _ := result.First(h.controller.Schema())
		h.logger.Debug("submission blocked by validation",
			zap.String("form", h.controller.Schema().ID()),
			zap.Int("issues", len(result)),
			zap.String("focus", first.Field),
		)
		return nil, ErrInvalid
	}

	schema := h.controller.Schema()
	snapshot := h.controller.Snapshot()
	payload, err := h.serializer.Serialize(schema, snapshot.Values)
	if err != nil {
		h.guard.Release(1)
		return nil, fmt.Errorf("submit: serialize %s: %w", schema.ID(), err)
	}

	req := Request{
		ID:      h.newID(),
		Purpose: schema.Purpose(),
		FormID:  schema.ID(),
		Payload: payload,
		Record:  snapshot.Values.Clone(),
	}

	callCtx, cancel := context.WithCancel(h.ctx)
	stop := context.AfterFunc(ctx, cancel)
	if h.timeout > 0 {
		var cancelTimeout context.CancelFunc
		callCtx, cancelTimeout = context.WithTimeout(callCtx, h.timeout)
		parent := cancel
		cancel = func() {
			cancelTimeout()
			parent()
		}
	}

	h.inflight.Store(true)
	h.controller.SetEditMode(false)
	pending := newPending(req.ID)

	h.logger.Info("submission started",
		zap.String("id", req.ID),
		zap.String("form", req.FormID),
		zap.String("purpose", string(req.Purpose)),
	)

	go func() {
		resp, err := h.backend.Submit(callCtx, req)
		result, msg, send := h.apply(req, snapshot, resp, err)

		stop()
		cancel()
		h.inflight.Store(false)
		h.guard.Release(1)
		if send {
			h.notifier.Notify(msg)
		}
		pending.resolve(result)
	}()
	return pending, nil
}

// Close marks the owning form as gone. The in-flight call is cancelled and
// any response that arrives later is discarded without touching the
// controller or notifying. A response already being applied when Close is
// called finishes. Later Submit calls return ErrClosed. Close never blocks,
// so it is safe to call from notifiers and transition observers.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.cancel()
}

func (h *Handler) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// apply maps the backend answer onto the controller and returns the
// notification to send once the in-flight guard is released. No handler lock
// is held while controller observers run.
func (h *Handler) apply(req Request, before state.Snapshot, resp Response, err error) (Result, notify.Message, bool) {
	logger := h.logger.With(zap.String("id", req.ID), zap.String("form", req.FormID))
	if h.isClosed() {
		logger.Info("submission response discarded after close")
		return Result{ID: req.ID, Outcome: OutcomeDiscarded, Err: ErrClosed}, notify.Message{}, false
	}

	if err != nil {
		if !errors.Is(err, ErrTransport) {
			err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		h.controller.Restore(before)
		h.controller.SetEditMode(before.EditMode)
		logger.Warn("submission failed", zap.Error(err))
		return Result{ID: req.ID, Outcome: OutcomeFailed, Err: err}, h.messages.TransportError, true
	}

	if resp.OK {
		seed := resp.Seed
		if len(seed) == 0 {
			seed = req.Record
		}
		h.controller.Reset(seed)
		h.controller.SetEditMode(false)
		logger.Info("submission accepted")
		return Result{ID: req.ID, Outcome: OutcomeSucceeded, Response: resp}, withDescription(h.messages.Success, resp.Message), true
	}

	mapping := validation.MapErrorPayload(h.controller.Schema(), resp.FieldErrors)
	mapping.Form = validation.MergeFormErrors(mapping.Form, resp.FormErrors...)
	h.controller.SetEditMode(before.EditMode)
	h.controller.ApplyServerErrors(mapping)
	logger.Info("submission rejected",
		zap.Int("field_errors", len(mapping.Fields)),
		zap.Strings("form_errors", mapping.Form),
	)
	msg := h.messages.Rejected
	if len(mapping.Form) > 0 {
		msg.Description = mapping.Form[0]
	}
	return Result{ID: req.ID, Outcome: OutcomeRejected, Response: resp, Mapping: mapping}, withDescription(msg, resp.Message), true
}

func withDescription(msg notify.Message, description string) notify.Message {
	if description != "" {
		msg.Description = description
	}
	return msg
}
