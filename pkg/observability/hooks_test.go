package observability

import (
	"context"
	"testing"
	"time"
)

type countingGatherHooks struct {
	starts, completes, queries int
}

func (h *countingGatherHooks) OnGatherStart(ctx context.Context, runID, root string, sources int) {
	h.starts++
}

func (h *countingGatherHooks) OnGatherComplete(ctx context.Context, runID string, candidates, passes int, d time.Duration, err error) {
	h.completes++
}

func (h *countingGatherHooks) OnQueryStart(ctx context.Context, runID, feed, id string) {
	h.queries++
}

func (h *countingGatherHooks) OnQueryComplete(ctx context.Context, runID, feed, id string, found int, d time.Duration, err error) {
}

func TestSetGatherHooks(t *testing.T) {
	t.Cleanup(Reset)

	hooks := &countingGatherHooks{}
	SetGatherHooks(hooks)

	ctx := context.Background()
	Gather().OnGatherStart(ctx, "run-1", "serilog", 2)
	Gather().OnQueryStart(ctx, "run-1", "main", "serilog")
	Gather().OnGatherComplete(ctx, "run-1", 4, 2, time.Second, nil)

	if hooks.starts != 1 || hooks.queries != 1 || hooks.completes != 1 {
		t.Errorf("hook counts = %d/%d/%d, want 1/1/1", hooks.starts, hooks.queries, hooks.completes)
	}
}

func TestSetNilHooksKeepsDefaults(t *testing.T) {
	t.Cleanup(Reset)

	SetGatherHooks(nil)
	if Gather() == nil {
		t.Fatal("Gather() should never return nil")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	SetGatherHooks(&countingGatherHooks{})
	Reset()

	if _, ok := Gather().(NoopGatherHooks); !ok {
		t.Error("Reset should restore NoopGatherHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset should restore NoopCacheHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset should restore NoopHTTPHooks")
	}
}
