package service

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Coordinator serialises work on a single user's derived data.
//
// Mutations and recomputes hold the user's write lock, reads hold the read lock,
// so a reader never observes positions halfway through a replace. Recompute
// requests for the same user that arrive while one is running share its result.
// Different users never contend.
type Coordinator struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
	group singleflight.Group
}

// NewCoordinator creates a Coordinator with no users registered.
func NewCoordinator() *Coordinator {
	return &Coordinator{locks: make(map[string]*sync.RWMutex)}
}

func (c *Coordinator) lockFor(userID string) *sync.RWMutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.locks[userID]
	if !ok {
		l = &sync.RWMutex{}
		c.locks[userID] = l
	}
	return l
}

// WithWrite runs fn while holding the user's write lock.
func (c *Coordinator) WithWrite(userID string, fn func() error) error {
	l := c.lockFor(userID)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// WithRead runs fn while holding the user's read lock.
func (c *Coordinator) WithRead(userID string, fn func() error) error {
	l := c.lockFor(userID)
	l.RLock()
	defer l.RUnlock()
	return fn()
}

// Recompute runs fn under the user's write lock, coalescing concurrent calls for
// the same user into one execution. Every waiter receives that execution's error.
//
// A caller whose ctx ends stops waiting and gets ctx.Err(); the shared
// computation keeps running for the remaining waiters, detached from the
// cancellation of whichever caller started it.
func (c *Coordinator) Recompute(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(userID, func() (any, error) {
		return nil, c.WithWrite(userID, func() error {
			return fn(detached)
		})
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}
