package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/landsketch/pkg/adapters/memory"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 500

	// 1. Open and Close many sessions
	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		if _, err := mgr.Open(ctx, sid); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		_ = mgr.WithLock(ctx, sid, func(context.Context, *Workspace) error { return nil })
		if err := mgr.Close(ctx, sid); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	// 2. Count locks remaining in map
	lockCount := len(mgr.locks)
	t.Logf("Sessions Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Close", lockCount)
	}
	if len(mgr.workspaces) != 0 {
		t.Errorf("Expected no workspaces, got %d", len(mgr.workspaces))
	}
}
