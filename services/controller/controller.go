package controller

import (
	"context"
	"sync"

	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/search"
)

type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Controller owns the query text and the interaction state of one view.
type Controller struct {
	logger   logger.Logger
	searcher Searcher

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	query      string
	state      State
	generation uint64
	closed     bool
}

// New starts a controller whose lifetime ends when ctx is done or Close is called.
func New(ctx context.Context, logger logger.Logger, searcher Searcher) *Controller {
	lifetimeCtx, cancel := context.WithCancel(ctx)

	return &Controller{
		logger:   logger,
		searcher: searcher,
		ctx:      lifetimeCtx,
		cancel:   cancel,
		state:    Idle{},
	}
}

func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = query
}

func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.query
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return snapshotOf(c.query, c.state)
}

// TriggerSearch enters Loading before returning and runs the request in the background.
// The returned channel is closed once the outcome has been applied, or dropped because a newer
// search was triggered in the meantime.
func (c *Controller) TriggerSearch() <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(done)
		return done
	}
	c.generation++
	generation := c.generation
	query := c.query
	c.state = Loading{Results: c.state.Visible()}
	c.mu.Unlock()

	c.logger.Debug("search triggered", "query", query, "generation", generation)

	go func() {
		defer close(done)
		results, err := c.searcher.Search(c.ctx, query)
		c.settle(generation, query, results, err)
	}()

	return done
}

func (c *Controller) settle(generation uint64, query string, results []search.Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if generation != c.generation {
		c.logger.Debug("discarding superseded search", "query", query, "generation", generation, "latest", c.generation)
		return
	}

	if err != nil {
		c.logger.Error("search failed", "query", query, "generation", generation, "err", err.Error())
		c.state = Failed{Message: err.Error(), Results: c.state.Visible()}
		return
	}

	if results == nil {
		results = []search.Result{}
	}
	c.logger.Info("search completed", "query", query, "generation", generation, "results", len(results))
	c.state = Success{Results: results}
}

// Close ends the controller lifetime and aborts the in-flight request, if any. Later triggers are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
}
