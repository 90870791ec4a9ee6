package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// State is a position in the form lifecycle.
type State string

const (
	Pristine   State = "pristine"
	Dirty      State = "dirty"
	Validating State = "validating"
	Valid      State = "valid"
	Invalid    State = "invalid"
)

// Mode selects when single fields are revalidated outside a full run.
type Mode string

const (
	// ValidateOnBlur revalidates a field when it loses focus.
	ValidateOnBlur Mode = "blur"
	// ValidateOnChange revalidates a field on every change.
	ValidateOnChange Mode = "change"
	// ValidateOnSubmit only validates on an explicit Validate call. Fields
	// that already failed are still revalidated as they change.
	ValidateOnSubmit Mode = "submit"
)

// ParseMode maps a config string onto a Mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ValidateOnBlur, ValidateOnChange, ValidateOnSubmit:
		return Mode(raw), nil
	case "":
		return ValidateOnBlur, nil
	default:
		return "", fmt.Errorf("state: unknown validation mode %q", raw)
	}
}

var (
	ErrReadOnly     = errors.New("state: form is not in edit mode")
	ErrUnknownField = errors.New("state: unknown field")
)

// TransitionFunc observes state changes.
type TransitionFunc func(from, to State)

// Option configures a Controller.
type Option func(*Controller)

// WithMode sets the revalidation mode. Defaults to ValidateOnBlur.
func WithMode(mode Mode) Option {
	return func(c *Controller) {
		if mode != "" {
			c.mode = mode
		}
	}
}

// WithEditMode sets the initial edit mode. Defaults to true.
func WithEditMode(on bool) Option {
	return func(c *Controller) {
		c.editMode = on
	}
}

// WithEngine overrides the validation engine.
func WithEngine(engine *validation.Engine) Option {
	return func(c *Controller) {
		if engine != nil {
			c.engine = engine
		}
	}
}

// WithLogger sets the logger used for transition traces.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller owns the Record and Validation Result of one form instance.
// Methods are safe to call from the submission goroutine and the UI at the
// same time; observers run after the lock is released.
type Controller struct {
	mu sync.Mutex

	schema *model.Schema
	engine *validation.Engine
	logger *zap.Logger
	mode   Mode

	state      State
	values     model.Record
	result     validation.Result
	dirty      map[string]bool
	touched    map[string]bool
	editMode   bool
	validated  bool
	stale      map[string]bool
	formErrors []string
	focus      string

	observers []TransitionFunc
}

type move struct {
	from, to State
}

// New seeds a controller from schema defaults overlaid with seed.
func New(schema *model.Schema, seed model.Record, options ...Option) *Controller {
	c := &Controller{
		schema:   schema,
		engine:   validation.New(),
		logger:   zap.NewNop(),
		mode:     ValidateOnBlur,
		editMode: true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	c.reset(seed)
	return c
}

// Schema returns the form schema.
func (c *Controller) Schema() *model.Schema { return c.schema }

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// EditMode reports whether the form accepts changes.
func (c *Controller) EditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editMode
}

// Values returns a copy of the current record.
func (c *Controller) Values() model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values.Clone()
}

// Result returns a copy of the current validation result.
func (c *Controller) Result() validation.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result.Clone()
}

// OnTransition registers an observer for state changes.
func (c *Controller) OnTransition(fn TransitionFunc) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Change writes value to key. A server issue on the field and any form-level
// server messages are dropped. The field is revalidated immediately in
// ValidateOnChange mode and whenever the form is already invalid; other
// fields keep their prior results.
func (c *Controller) Change(key string, value any) error {
	c.mu.Lock()
	if !c.editMode {
		c.mu.Unlock()
		return ErrReadOnly
	}
	if !c.schema.Has(key) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	wasInvalid := c.state == Invalid
	var moves []move

	c.values = c.values.Merge(model.Record{key: value})
	c.dirty[key] = true
	c.stale[key] = true
	c.formErrors = nil
	if issue, ok := c.result[key]; ok && issue.Source == validation.SourceServer {
		delete(c.result, key)
	}
	c.moveTo(&moves, Dirty)

	if c.mode == ValidateOnChange || wasInvalid {
		c.moveTo(&moves, Validating)
		c.revalidate(key)
		c.moveTo(&moves, c.outcome(Dirty))
	}
	c.release(moves)
	return nil
}

// Blur marks key as touched and, in ValidateOnBlur mode, revalidates it.
func (c *Controller) Blur(key string) error {
	c.mu.Lock()
	if !c.schema.Has(key) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	c.touched[key] = true

	var moves []move
	if c.mode == ValidateOnBlur {
		fallback := Dirty
		if c.state == Pristine {
			fallback = Pristine
		}
		c.moveTo(&moves, Validating)
		c.revalidate(key)
		c.moveTo(&moves, c.outcome(fallback))
	}
	c.release(moves)
	return nil
}

// Validate runs a full validation. Server issues on fields that were not
// changed since they arrived are kept. A clean run also clears form-level
// server messages.
func (c *Controller) Validate() validation.Result {
	c.mu.Lock()
	var moves []move
	c.moveTo(&moves, Validating)

	client := c.engine.Validate(c.schema, c.values)
	c.result = validation.Merge(client, c.result.BySource(validation.SourceServer))
	c.validated = true
	c.stale = make(map[string]bool)
	if c.result.Valid() {
		c.formErrors = nil
	}
	c.focus = c.firstFailing()

	c.moveTo(&moves, c.outcome(Valid))
	out := c.result.Clone()
	c.release(moves)
	return out
}

// SetEditMode toggles edit mode. Dirty flags and results are untouched.
func (c *Controller) SetEditMode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editMode = on
}

// Reset replaces the record with defaults overlaid with seed and returns the
// controller to Pristine.
func (c *Controller) Reset(seed model.Record) {
	c.mu.Lock()
	var moves []move
	from := c.state
	c.reset(seed)
	if from != Pristine {
		moves = append(moves, move{from: from, to: Pristine})
	}
	c.release(moves)
}

// ApplyServerErrors merges a server rejection into the result. A server issue
// replaces a client issue on the same field and stays until that field
// changes. Form-level messages are kept for display.
func (c *Controller) ApplyServerErrors(mapping validation.ErrorMapping) {
	c.mu.Lock()
	var moves []move
	c.result = validation.Merge(c.result, validation.ServerResult(mapping))
	c.formErrors = validation.MergeFormErrors(c.formErrors, mapping.Form...)
	c.focus = c.firstFailing()
	c.moveTo(&moves, Invalid)
	c.release(moves)
}

// Restore returns the controller to a previously captured snapshot. Edit
// mode is left as is.
func (c *Controller) Restore(snap Snapshot) {
	c.mu.Lock()
	var moves []move
	c.values = snap.Values.Clone()
	c.result = snap.Result.Clone()
	c.dirty = toSet(snap.Dirty)
	c.touched = toSet(snap.Touched)
	c.formErrors = append([]string(nil), snap.FormErrors...)
	c.focus = snap.Focus
	c.validated = snap.validated
	c.stale = toSet(snap.stale)
	c.moveTo(&moves, snap.State)
	c.release(moves)
}

// Snapshot returns an immutable copy of the controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:      c.state,
		Values:     c.values.Clone(),
		Result:     c.result.Clone(),
		Dirty:      keys(c.dirty),
		Touched:    keys(c.touched),
		EditMode:   c.editMode,
		FormErrors: append([]string(nil), c.formErrors...),
		Focus:      c.focus,
		validated:  c.validated,
		stale:      keys(c.stale),
	}
}

func (c *Controller) reset(seed model.Record) {
	c.values = c.schema.Defaults().Merge(seed)
	c.result = make(validation.Result)
	c.dirty = make(map[string]bool)
	c.touched = make(map[string]bool)
	c.formErrors = nil
	c.focus = ""
	c.validated = false
	c.stale = make(map[string]bool)
	c.state = Pristine
}

// revalidate refreshes key, dependents that the user already interacted
// with, and drops issues of fields that became disabled.
func (c *Controller) revalidate(key string) {
	targets := []string{key}
	for _, dependent := range c.schema.Dependents(key) {
		_, failing := c.result[dependent]
		if failing || c.dirty[dependent] || c.touched[dependent] {
			targets = append(targets, dependent)
		}
	}

	for _, target := range targets {
		delete(c.stale, target)
		if issue, ok := c.result[target]; ok && issue.Source == validation.SourceServer {
			continue
		}
		if issue, failed := c.engine.ValidateField(c.schema, c.values, target); failed {
			c.result[target] = issue
		} else {
			delete(c.result, target)
		}
	}

	for failing := range c.result {
		if !c.engine.Enabled(c.schema, c.values, failing) {
			delete(c.result, failing)
		}
	}
	c.focus = c.firstFailing()
}

// outcome picks the state after a validation step. A clean partial result
// only means the whole form is valid after a full run with no edits left
// unchecked since.
func (c *Controller) outcome(fallback State) State {
	switch {
	case len(c.result) > 0:
		return Invalid
	case c.validated && len(c.stale) == 0:
		return Valid
	default:
		return fallback
	}
}

func (c *Controller) firstFailing() string {
	if issue, ok := c.result.First(c.schema); ok {
		return issue.Field
	}
	return ""
}

func (c *Controller) moveTo(moves *[]move, to State) {
	if c.state == to {
		return
	}
	*moves = append(*moves, move{from: c.state, to: to})
	c.state = to
}

// release unlocks and then notifies observers of the recorded moves.
func (c *Controller) release(moves []move) {
	observers := append([]TransitionFunc(nil), c.observers...)
	c.mu.Unlock()

	for _, m := range moves {
		c.logger.Debug("form state transition",
			zap.String("form", c.schema.ID()),
			zap.String("from", string(m.from)),
			zap.String("to", string(m.to)),
		)
		for _, fn := range observers {
			fn(m.from, m.to)
		}
	}
}

func keys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for key, on := range set {
		if on {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, key := range list {
		out[key] = true
	}
	return out
}
