package quota

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-tripplanner-be/internal/entity"

	"github.com/google/uuid"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// fakeCounterSource grants until its pool is drained, mirroring the atomic
// conditional-update behavior of the real sources.
type fakeCounterSource struct {
	name          string
	remaining     int64
	denyWhenEmpty bool // Denied vs NotApplicable once drained
}

func (f *fakeCounterSource) Name() string { return f.name }

func (f *fakeCounterSource) TryConsume(ctx context.Context, userId uuid.UUID, feature entity.Feature) (Outcome, *Decision, error) {
	for {
		current := atomic.LoadInt64(&f.remaining)
		if current <= 0 {
			if f.denyWhenEmpty {
				return OutcomeDenied, &Decision{Limit: 5, Used: 5, ResetAt: time.Now().Add(time.Hour)}, nil
			}
			return OutcomeNotApplicable, &Decision{}, nil
		}
		if atomic.CompareAndSwapInt64(&f.remaining, current, current-1) {
			return OutcomeAllowed, &Decision{Remaining: int(current - 1)}, nil
		}
	}
}

func TestGuardStopsAtFirstAllowingSource(t *testing.T) {
	period := &fakeCounterSource{name: "subscription", remaining: 1, denyWhenEmpty: true}
	tickets := &fakeCounterSource{name: "ticket", remaining: 10}
	guard := NewGuard(noopLogger{}, period, tickets)

	decision, err := guard.CheckAndConsume(context.Background(), uuid.New(), entity.FeaturePlanGeneration)
	if err != nil {
		t.Fatalf("CheckAndConsume returned error: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("expected allowed decision")
	}
	if decision.Source != "subscription" {
		t.Errorf("Source = %q, want subscription", decision.Source)
	}
	if got := atomic.LoadInt64(&tickets.remaining); got != 10 {
		t.Errorf("ticket pool touched while period quota had budget, remaining = %d", got)
	}
}

func TestGuardFallsThroughToTickets(t *testing.T) {
	period := &fakeCounterSource{name: "subscription", remaining: 0, denyWhenEmpty: true}
	tickets := &fakeCounterSource{name: "ticket", remaining: 2}
	guard := NewGuard(noopLogger{}, period, tickets)

	decision, err := guard.CheckAndConsume(context.Background(), uuid.New(), entity.FeaturePlanGeneration)
	if err != nil {
		t.Fatalf("CheckAndConsume returned error: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("expected ticket tier to grant the call")
	}
	if decision.Source != "ticket" {
		t.Errorf("Source = %q, want ticket", decision.Source)
	}
	// Period metadata must survive the fall-through for rendering
	if decision.Limit != 5 || decision.Used != 5 {
		t.Errorf("period metadata lost: limit=%d used=%d", decision.Limit, decision.Used)
	}
}

func TestGuardDeniesWhenAllSourcesExhausted(t *testing.T) {
	period := &fakeCounterSource{name: "subscription", remaining: 0, denyWhenEmpty: true}
	tickets := &fakeCounterSource{name: "ticket", remaining: 0}
	guard := NewGuard(noopLogger{}, period, tickets)

	decision, err := guard.CheckAndConsume(context.Background(), uuid.New(), entity.FeaturePlanGeneration)
	if err != nil {
		t.Fatalf("CheckAndConsume returned error: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected deny")
	}
	if decision.ResetAt.IsZero() {
		t.Error("deny decision must carry the reset time")
	}
}

// With remaining quota R and N > R concurrent requests, exactly R may pass.
func TestGuardNoDoubleSpendUnderConcurrency(t *testing.T) {
	const (
		remaining = 7
		attempts  = 50
	)

	period := &fakeCounterSource{name: "subscription", remaining: remaining, denyWhenEmpty: true}
	guard := NewGuard(noopLogger{}, period)
	userId := uuid.New()

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := guard.CheckAndConsume(context.Background(), userId, entity.FeaturePlanGeneration)
			if err != nil {
				t.Errorf("CheckAndConsume returned error: %v", err)
				return
			}
			if decision.Allowed {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != remaining {
		t.Errorf("allowed = %d, want exactly %d", allowed, remaining)
	}
}
