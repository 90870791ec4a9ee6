package submit

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// Outcome classifies how a submission ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
	OutcomeDiscarded Outcome = "discarded"
)

// Result is the resolved value of a Pending submission.
type Result struct {
	ID       string
	Outcome  Outcome
	Response Response
	Mapping  validation.ErrorMapping
	Err      error
}

// Pending is the single future of one submission.
type Pending struct {
	id     string
	done   chan struct{}
	result Result
}

func newPending(id string) *Pending {
	return &Pending{id: id, done: make(chan struct{})}
}

// ID returns the submission id sent as the idempotency key.
func (p *Pending) ID() string { return p.id }

// Done is closed once the outcome was applied.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the submission resolves or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Outcome returns the result if the submission already resolved.
func (p *Pending) Outcome() (Result, bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return Result{}, false
	}
}

func (p *Pending) resolve(result Result) {
	p.result = result
	close(p.done)
}
