package tzrecovery

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a search ends without a match.
var ErrNotFound = errors.New("passphrase not found")

// Client provides a high-level API for passphrase recovery.
type Client struct {
	strategy SearchStrategy
	sink     ResultSink
}

// NewClient creates a new client with default settings: a parallel search
// and matches appended to DefaultResultFile.
func NewClient() *Client {
	return &Client{
		strategy: NewParallelSearch(),
		sink:     NewFileSink(DefaultResultFile),
	}
}

// WithStrategy sets a custom search strategy.
func (c *Client) WithStrategy(strategy SearchStrategy) *Client {
	c.strategy = strategy
	return c
}

// WithSink sets where matches are recorded.
func (c *Client) WithSink(sink ResultSink) *Client {
	c.sink = sink
	return c
}

// NewSession creates a session bound to the client's result sink.
func (c *Client) NewSession(params Params) (*Session, error) {
	return NewSession(params, c.sink)
}

// Recover searches plan for the passphrase that produced params.Target.
//
// Args:
//   - ctx: Context for cancellation.
//   - params: Target address, email, mnemonic and iteration count.
//   - plan: Candidate space.
//
// Returns:
//   - SearchResult with the passphrase if found; ErrNotFound (with the
//     partial result) when the search ended without a match.
func (c *Client) Recover(ctx context.Context, params Params, plan *Plan) (*SearchResult, error) {
	session, err := c.NewSession(params)
	if err != nil {
		return nil, err
	}
	return c.RecoverWithSession(ctx, session, plan)
}

// RecoverWithSession runs the search on a caller-owned session, so the caller
// can pause, resume or stop it and read its statistics while it runs.
func (c *Client) RecoverWithSession(ctx context.Context, session *Session, plan *Plan) (*SearchResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("nil plan")
	}
	result, err := c.strategy.Search(ctx, plan, session)
	if result == nil {
		return nil, fmt.Errorf("%s search failed: %w", c.strategy.Name(), err)
	}
	if err != nil {
		return result, err
	}
	if !result.Found {
		return result, ErrNotFound
	}
	return result, nil
}

// Test checks a single passphrase, e.g. one the operator believes is right.
// A match is recorded in the client's sink like any other.
func (c *Client) Test(params Params, password string) (Attempt, error) {
	session, err := c.NewSession(params)
	if err != nil {
		return Attempt{}, err
	}
	return session.Check(password)
}
