package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/yamori/gleaner/pkg/utils/async"
)

// safeBuffer is a thread-safe buffer for capturing log output from the
// dispatched goroutine.
type safeBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.String()
}

func TestDispatch(t *testing.T) {
	t.Run("executes handler asynchronously", func(t *testing.T) {
		var wg sync.WaitGroup
		executed := false

		wg.Add(1)
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			executed = true
			return nil
		})

		wg.Wait()
		gt.True(t, executed)
	})

	t.Run("handler error is swallowed", func(t *testing.T) {
		var wg sync.WaitGroup

		wg.Add(1)
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			return errors.New("boom")
		})

		wg.Wait()
	})

	t.Run("recovers from panic and logs stack", func(t *testing.T) {
		logBuf := &safeBuffer{}
		logger := slog.New(slog.NewTextHandler(logBuf, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
		ctx := ctxlog.With(context.Background(), logger)

		done := make(chan struct{}, 1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			panic("kaboom")
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler did not complete within timeout")
		}

		// The deferred recover writes the log entry after the handler's own
		// defer fires, so poll briefly for it.
		deadline := time.Now().Add(time.Second)
		for {
			out := logBuf.String()
			if strings.Contains(out, "panic in async handler") {
				gt.True(t, strings.Contains(out, "kaboom"))
				gt.True(t, strings.Contains(out, "goroutine"))
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("panic log was not written within timeout")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})

	t.Run("detaches from caller cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup
		wg.Add(1)

		async.Dispatch(ctx, func(bgCtx context.Context) error {
			defer wg.Done()

			cancel()

			select {
			case <-bgCtx.Done():
				t.Error("background context was cancelled with the caller")
			default:
			}
			return nil
		})

		wg.Wait()
	})

	t.Run("preserves context logger", func(t *testing.T) {
		ctx := ctxlog.With(context.Background(), slog.Default())

		var wg sync.WaitGroup
		wg.Add(1)

		async.Dispatch(ctx, func(bgCtx context.Context) error {
			defer wg.Done()
			gt.NotNil(t, ctxlog.From(bgCtx))
			return nil
		})

		wg.Wait()
	})
}
