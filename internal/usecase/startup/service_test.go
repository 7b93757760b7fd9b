package startup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

// blockingInit counts calls and optionally blocks until released.
type blockingInit struct {
	calls   atomic.Int32
	errs    []error
	release chan struct{}
}

func (b *blockingInit) EnsureReady(ctx context.Context) error {
	n := int(b.calls.Add(1)) - 1
	if b.release != nil {
		select {
		case <-b.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n < len(b.errs) {
		return b.errs[n]
	}
	return nil
}

func TestRun_Succeeds(t *testing.T) {
	init := &blockingInit{}
	svc := New([]Target{{Name: "mail", Init: init}}, zap.NewNop())

	if got := svc.State(); got != StateNotStarted {
		t.Fatalf("initial state = %s", got)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Ready() {
		t.Error("not ready after successful run")
	}
	if svc.LastError() != nil {
		t.Errorf("lastErr = %v", svc.LastError())
	}
}

func TestRun_NoOpWhenReady(t *testing.T) {
	init := &blockingInit{}
	svc := New([]Target{{Name: "mail", Init: init}}, zap.NewNop())

	_ = svc.Run(context.Background())
	_ = svc.Run(context.Background())

	if got := init.calls.Load(); got != 1 {
		t.Errorf("initializer called %d times, want 1", got)
	}
}

func TestRun_RetriggerableAfterFailure(t *testing.T) {
	init := &blockingInit{errs: []error{errors.New("store down")}}
	svc := New([]Target{{Name: "mail", Init: init}}, zap.NewNop())

	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected first run to fail")
	}
	if got := svc.State(); got != StateFailed {
		t.Fatalf("state after failure = %s", got)
	}
	if svc.LastError() == nil {
		t.Error("lastErr not recorded")
	}

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !svc.Ready() {
		t.Error("not ready after retry")
	}
	if svc.LastError() != nil {
		t.Errorf("lastErr not cleared: %v", svc.LastError())
	}
}

func TestRun_StopsAtFirstFailedTarget(t *testing.T) {
	first := &blockingInit{errs: []error{domain.ErrInitTimeout}}
	second := &blockingInit{}
	svc := New([]Target{
		{Name: "mail", Init: first},
		{Name: "match", Init: second},
	}, zap.NewNop())

	err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrInitTimeout) {
		t.Fatalf("expected ErrInitTimeout, got %v", err)
	}
	if second.calls.Load() != 0 {
		t.Error("second target initialized after first failed")
	}
}

func TestRun_ConcurrentTriggerRunsOnce(t *testing.T) {
	init := &blockingInit{release: make(chan struct{})}
	svc := New([]Target{{Name: "mail", Init: init}}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Run(context.Background())
		}()
	}

	// let the first caller enter the initializer, the rest must bail out
	deadline := time.After(time.Second)
	for init.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("initializer never entered")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	close(init.release)
	wg.Wait()

	if got := init.calls.Load(); got != 1 {
		t.Errorf("initializer called %d times, want 1", got)
	}
	if !svc.Ready() {
		t.Error("not ready after concurrent trigger")
	}
}
