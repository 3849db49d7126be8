package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/service"
)

func TestCoordinator_Recompute(t *testing.T) {
	t.Run("concurrent requests for one user share a pass", func(t *testing.T) {
		c := service.NewCoordinator()
		started := make(chan struct{})
		release := make(chan struct{})
		var calls atomic.Int32

		fn := func(context.Context) error {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return errors.New("shared failure")
		}

		var wg sync.WaitGroup
		errs := make([]error, 5)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[0] = c.Recompute(context.Background(), "user-1", fn)
		}()
		<-started

		for i := 1; i < len(errs); i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = c.Recompute(context.Background(), "user-1", fn)
			}(i)
		}
		// Give the followers time to join the in-flight call.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		if got := calls.Load(); got != 1 {
			t.Errorf("fn ran %d times, want 1", got)
		}
		for i, err := range errs {
			if err == nil || err.Error() != "shared failure" {
				t.Errorf("caller %d got %v, want the shared error", i, err)
			}
		}
	})

	t.Run("a cancelled caller stops waiting", func(t *testing.T) {
		c := service.NewCoordinator()
		release := make(chan struct{})
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- c.Recompute(ctx, "user-1", func(context.Context) error {
				<-release
				return nil
			})
		}()
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("error = %v, want context.Canceled", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Recompute did not return after cancellation")
		}
	})

	t.Run("the pass does not see the caller's cancellation", func(t *testing.T) {
		c := service.NewCoordinator()
		ctx, cancel := context.WithCancel(context.Background())
		passCtx := make(chan context.Context, 1)

		err := c.Recompute(ctx, "user-1", func(ctx context.Context) error {
			passCtx <- ctx
			return nil
		})
		if err != nil {
			t.Fatalf("Recompute() error = %v", err)
		}
		cancel()
		if inner := <-passCtx; inner.Err() != nil {
			t.Errorf("pass context error = %v, want nil", inner.Err())
		}
	})
}

func TestCoordinator_Locks(t *testing.T) {
	t.Run("reads wait for a write on the same user", func(t *testing.T) {
		c := service.NewCoordinator()
		writing := make(chan struct{})
		release := make(chan struct{})
		var order []string
		var mu sync.Mutex
		record := func(s string) {
			mu.Lock()
			order = append(order, s)
			mu.Unlock()
		}

		go func() {
			_ = c.WithWrite("user-1", func() error {
				close(writing)
				<-release
				record("write")
				return nil
			})
		}()
		<-writing

		readDone := make(chan struct{})
		go func() {
			_ = c.WithRead("user-1", func() error {
				record("read")
				return nil
			})
			close(readDone)
		}()

		select {
		case <-readDone:
			t.Fatal("read finished while the write lock was held")
		case <-time.After(50 * time.Millisecond):
		}
		close(release)
		<-readDone

		if len(order) != 2 || order[0] != "write" || order[1] != "read" {
			t.Errorf("order = %v, want [write read]", order)
		}
	})

	t.Run("different users do not contend", func(t *testing.T) {
		c := service.NewCoordinator()
		release := make(chan struct{})
		defer close(release)
		holding := make(chan struct{})

		go func() {
			_ = c.WithWrite("user-1", func() error {
				close(holding)
				<-release
				return nil
			})
		}()
		<-holding

		done := make(chan struct{})
		go func() {
			_ = c.WithWrite("user-2", func() error { return nil })
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("write for user-2 blocked on user-1")
		}
	})
}
