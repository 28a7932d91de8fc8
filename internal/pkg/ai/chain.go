package ai

import (
	"context"
	"errors"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
)

// ChainState tracks where the fallback chain is in its lifecycle.
type ChainState int

const (
	// StateTryPreferred is the initial state: one attempt on the
	// preferred provider.
	StateTryPreferred ChainState = iota

	// StateTryFallback is entered only from StateTryPreferred, and only
	// when a fallback credential exists.
	StateTryFallback

	// StateManual means both remote attempts are exhausted (or were never
	// available) and the caller should collect a message from the user.
	StateManual

	// StateDone means a provider produced a usable response.
	StateDone
)

// String returns a readable state name for logging.
func (s ChainState) String() string {
	switch s {
	case StateTryPreferred:
		return "try_preferred"
	case StateTryFallback:
		return "try_fallback"
	case StateManual:
		return "manual"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ChainResult is the outcome of one chain run.
//
// When Manual is true no provider produced a response and the caller owns
// the manual-entry path; Attempts then carries the provider errors for
// display. Response and Manual are mutually exclusive.
type ChainResult struct {
	Response *GenerateResponse
	Manual   bool
	Attempts []AttemptError
}

// AttemptError records one failed provider attempt.
type AttemptError struct {
	Provider string
	Err      error
}

// Chain runs the preferred provider and, on recoverable failure, the
// fallback provider. Each provider is tried at most once per run; the
// chain never retries the same provider and never loops back.
type Chain struct {
	preferred Provider
	fallback  Provider // nil when no fallback credential was resolved
	process   func(string) (string, error)
}

// NewChain creates a fallback chain. fallback may be nil.
func NewChain(preferred Provider, fallback Provider) (*Chain, error) {
	if preferred == nil {
		return nil, errors.New("preferred provider is required")
	}
	return &Chain{preferred: preferred, fallback: fallback}, nil
}

// SetPostProcessor installs a cleanup step applied to each successful
// provider response before the chain accepts it. A response the step
// rejects counts as that provider's failure, so an answer that cleans
// down to nothing still advances the chain instead of committing junk.
func (c *Chain) SetPostProcessor(fn func(string) (string, error)) {
	c.process = fn
}

// Generate walks the chain for one request.
//
// Transitions:
//
//	try_preferred -> done          success
//	try_preferred -> try_fallback  recoverable failure, fallback configured
//	try_preferred -> manual        recoverable failure, no fallback
//	try_fallback  -> done          success
//	try_fallback  -> manual        recoverable failure
//
// Non-recoverable failures (empty diff, user abort, context canceled)
// stop the chain immediately instead of degrading to manual entry.
func (c *Chain) Generate(ctx context.Context, req *GenerateRequest) (*ChainResult, error) {
	result := &ChainResult{}
	state := StateTryPreferred

	for {
		switch state {
		case StateTryPreferred:
			resp, err := c.attempt(ctx, c.preferred, req)
			if err == nil {
				result.Response = resp
				state = StateDone
				continue
			}
			if !recoverable(ctx, err) {
				return nil, err
			}
			result.Attempts = append(result.Attempts, AttemptError{Provider: c.preferred.Name(), Err: err})
			if c.fallback != nil {
				apperrors.LogFallback(c.preferred.Name(), c.fallback.Name(), err)
				state = StateTryFallback
			} else {
				apperrors.LogFallback(c.preferred.Name(), "manual", err)
				state = StateManual
			}

		case StateTryFallback:
			resp, err := c.attempt(ctx, c.fallback, req)
			if err == nil {
				result.Response = resp
				state = StateDone
				continue
			}
			if !recoverable(ctx, err) {
				return nil, err
			}
			result.Attempts = append(result.Attempts, AttemptError{Provider: c.fallback.Name(), Err: err})
			apperrors.LogFallback(c.fallback.Name(), "manual", err)
			state = StateManual

		case StateManual:
			result.Manual = true
			return result, nil

		case StateDone:
			return result, nil
		}
	}
}

// attempt runs one provider and applies the post-processor to its
// response.
func (c *Chain) attempt(ctx context.Context, p Provider, req *GenerateRequest) (*GenerateResponse, error) {
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.process != nil {
		cleaned, err := c.process(resp.Text)
		if err != nil {
			return nil, err
		}
		resp.Text = cleaned
	}

	return resp, nil
}

// HasFallback reports whether a second provider is configured.
func (c *Chain) HasFallback() bool {
	return c.fallback != nil
}

// PreferredName returns the preferred provider's name.
func (c *Chain) PreferredName() string {
	return c.preferred.Name()
}

// recoverable decides whether a provider failure may advance the chain.
// Cancellation always stops the chain even when the wrapped error would
// otherwise be recoverable.
func recoverable(ctx context.Context, err error) bool {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		return false
	}
	return apperrors.IsRecoverable(err)
}
