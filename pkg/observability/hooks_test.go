package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Compute hooks
	p := NoopComputeHooks{}
	p.OnLoadStart(ctx, "tree.json", "traits.json")
	p.OnLoadComplete(ctx, 5, time.Second, nil)
	p.OnComputeStart(ctx, 5)
	p.OnComputeComplete(ctx, 5, 4, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "tree")
	c.OnCacheSet(ctx, "result", 1024)

	// Store hooks
	s := NoopStoreHooks{}
	s.OnStorePut(ctx, "run-1")
	s.OnStoreGet(ctx, "run-1", true, time.Second)
	s.OnStoreError(ctx, "put", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Compute().(NoopComputeHooks); !ok {
		t.Error("Compute() should return NoopComputeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	// Set custom hooks
	customCompute := &testComputeHooks{}
	SetComputeHooks(customCompute)
	if Compute() != customCompute {
		t.Error("SetComputeHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Compute().(NoopComputeHooks); !ok {
		t.Error("Reset() should restore NoopComputeHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testComputeHooks{}
	SetComputeHooks(custom)

	// Setting nil should be ignored
	SetComputeHooks(nil)

	if Compute() != custom {
		t.Error("SetComputeHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testComputeHooks struct{ NoopComputeHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testStoreHooks struct{ NoopStoreHooks }
