package tumbler

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Operation names used in errors and observer callbacks.
const (
	OpEncrypt = "encrypt"
	OpDecrypt = "decrypt"
)

// Observer receives pipeline outcomes. Implementations must be safe for
// concurrent use; see the metrics package for a Prometheus implementation.
type Observer interface {
	// ObserveStep is called once per condition visited by a fold.
	// err is nil for a successful step.
	ObserveStep(op string, index int, kind Kind, err error)

	// ObserveOperation is called once per Encrypt or Decrypt call.
	ObserveOperation(op string, duration time.Duration, err error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver attaches an observer to the pipeline.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, o)
	}
}

// Pipeline is an ordered sequence of conditions.
//
// Encrypt folds Forward over the conditions in insertion order. Decrypt folds
// Inverse in the SAME order, checking each condition's Satisfied first and
// failing the whole operation at the first closed gate.
//
// Build a pipeline with Add before first use. Encrypt and Decrypt are safe for
// concurrent use; Add takes a write lock but adding while other goroutines
// transform data is a usage error the pipeline does not guard against.
type Pipeline struct {
	mu         sync.RWMutex
	conditions []Condition
	err        error

	observers []Observer
}

// New returns an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	emitPipelineCreated(context.Background())
	return p
}

// Add appends c to the end of the pipeline and returns the pipeline for
// chaining. Adding nil does not append; it poisons the pipeline so every later
// Encrypt or Decrypt fails with ErrInvalidCondition.
func (p *Pipeline) Add(c Condition) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c == nil {
		if p.err == nil {
			p.err = fmt.Errorf("%w: nil condition at position %d", ErrInvalidCondition, len(p.conditions))
		}
		return p
	}
	p.conditions = append(p.conditions, c)
	emitConditionAdded(context.Background(), len(p.conditions)-1, kindOf(c))
	return p
}

// Err returns the construction error recorded by Add, if any.
func (p *Pipeline) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Len returns the number of conditions.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conditions)
}

// Conditions returns a copy of the condition sequence in application order.
func (p *Pipeline) Conditions() []Condition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Condition(nil), p.conditions...)
}

// Encrypt applies every condition's Forward in insertion order.
// An empty pipeline returns a copy of data. The context carries event
// metadata only; the fold is not cancellable.
func (p *Pipeline) Encrypt(ctx context.Context, data []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	start := time.Now()
	emitEncryptStart(ctx, len(p.conditions), len(data))

	var retErr error
	defer func() {
		d := time.Since(start)
		emitEncryptComplete(ctx, len(p.conditions), len(data), d, retErr)
		p.observeOperation(OpEncrypt, d, retErr)
	}()

	if p.err != nil {
		retErr = p.err
		return nil, retErr
	}

	result := identity(data)
	for i, c := range p.conditions {
		out, err := c.Forward(result)
		if err != nil {
			retErr = newStepError(stepSentinel(err), OpEncrypt, i, kindOf(c), err)
			p.observeStep(OpEncrypt, i, c, retErr)
			return nil, retErr
		}
		p.observeStep(OpEncrypt, i, c, nil)
		result = out
	}
	return result, nil
}

// Decrypt applies every condition's Inverse in the same insertion order used
// by Encrypt. Each condition must report Satisfied before its Inverse runs;
// the first unsatisfied condition fails the whole call with a *StepError
// wrapping ErrConditionNotSatisfied, and no later condition is touched.
// An empty pipeline returns a copy of data.
func (p *Pipeline) Decrypt(ctx context.Context, data []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	start := time.Now()
	emitDecryptStart(ctx, len(p.conditions), len(data))

	var retErr error
	defer func() {
		d := time.Since(start)
		emitDecryptComplete(ctx, len(p.conditions), len(data), d, retErr)
		p.observeOperation(OpDecrypt, d, retErr)
	}()

	if p.err != nil {
		retErr = p.err
		return nil, retErr
	}

	result := identity(data)
	for i, c := range p.conditions {
		kind := kindOf(c)
		if !c.Satisfied() {
			emitGateRejected(ctx, i, kind)
			retErr = newStepError(ErrConditionNotSatisfied, OpDecrypt, i, kind, nil)
			p.observeStep(OpDecrypt, i, c, retErr)
			return nil, retErr
		}

		out, err := c.Inverse(result)
		if err != nil {
			retErr = newStepError(stepSentinel(err), OpDecrypt, i, kind, err)
			p.observeStep(OpDecrypt, i, c, retErr)
			return nil, retErr
		}
		p.observeStep(OpDecrypt, i, c, nil)
		result = out
	}
	return result, nil
}

// Ready evaluates every gate in order and returns the index of the first
// unsatisfied condition, or -1 and true when all are satisfied.
func (p *Pipeline) Ready() (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for i, c := range p.conditions {
		if !c.Satisfied() {
			return i, false
		}
	}
	return -1, true
}

// Await polls Ready every interval until all gates are open or ctx is done.
// The pipeline has no wait primitive of its own; this is the caller-side loop
// for bounding a wait before calling Decrypt.
func Await(ctx context.Context, p *Pipeline, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, ok := p.Ready(); ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Pipeline) observeStep(op string, index int, c Condition, err error) {
	if len(p.observers) == 0 {
		return
	}
	kind := kindOf(c)
	for _, o := range p.observers {
		o.ObserveStep(op, index, kind, err)
	}
}

func (p *Pipeline) observeOperation(op string, d time.Duration, err error) {
	for _, o := range p.observers {
		o.ObserveOperation(op, d, err)
	}
}
