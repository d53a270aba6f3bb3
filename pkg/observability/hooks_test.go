package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Engine hooks
	e := NoopEngineHooks{}
	e.OnRecalcStart(ctx, "node-a", 3)
	e.OnNodeCalculated(ctx, "node-a", "inputNode", true, time.Millisecond)
	e.OnRecalcComplete(ctx, "node-a", 3, 0, 0, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "session")
	c.OnCacheMiss(ctx, "session")
	c.OnCacheSet(ctx, "session", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/canvas")
	h.OnResponse(ctx, "GET", "/canvas", 200, time.Second)
	h.OnError(ctx, "POST", "/connections", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Engine() should return NoopEngineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customEngine := &testEngineHooks{}
	SetEngineHooks(customEngine)
	if Engine() != customEngine {
		t.Error("SetEngineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Reset() should restore NoopEngineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testEngineHooks{}
	SetEngineHooks(custom)
	SetEngineHooks(nil)
	if Engine() != custom {
		t.Error("SetEngineHooks(nil) should not replace existing hooks")
	}
	Reset()
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testEngineHooks{}
	SetEngineHooks(h)

	ctx := context.Background()
	Engine().OnRecalcStart(ctx, "*", 4)
	Engine().OnNodeCalculated(ctx, "a", "inputNode", true, 0)
	Engine().OnNodeCalculated(ctx, "b", "scaleNode", false, 0)
	Engine().OnRecalcComplete(ctx, "*", 1, 1, 2, 0, nil)

	if h.starts != 1 || h.nodes != 2 || h.failed != 1 || h.completes != 1 {
		t.Errorf("events = %+v", h)
	}
}

type testEngineHooks struct {
	starts, nodes, failed, completes int
}

func (h *testEngineHooks) OnRecalcStart(context.Context, string, int) { h.starts++ }
func (h *testEngineHooks) OnNodeCalculated(_ context.Context, _, _ string, ok bool, _ time.Duration) {
	h.nodes++
	if !ok {
		h.failed++
	}
}
func (h *testEngineHooks) OnRecalcComplete(context.Context, string, int, int, int, time.Duration, error) {
	h.completes++
}

type testCacheHooks struct{}

func (testCacheHooks) OnCacheHit(context.Context, string)      {}
func (testCacheHooks) OnCacheMiss(context.Context, string)     {}
func (testCacheHooks) OnCacheSet(context.Context, string, int) {}

type testHTTPHooks struct{}

func (testHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (testHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (testHTTPHooks) OnError(context.Context, string, string, error)                 {}
