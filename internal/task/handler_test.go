package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func okHandler(value interface{}) Handler {
	return func(ctx context.Context) (interface{}, error) {
		return value, nil
	}
}

// TestNewRegistry tests creating a new registry
func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	if registry == nil {
		t.Fatal("Expected registry to be created")
	}

	if registry.handlers == nil {
		t.Error("Expected handlers map to be initialized")
	}

	if len(registry.Types()) != 0 {
		t.Errorf("Expected empty registry, got %d types", len(registry.Types()))
	}
}

// TestRegisterHandler tests registering a handler
func TestRegisterHandler(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("hello", okHandler("HELLO")); err != nil {
		t.Fatalf("Failed to register handler: %v", err)
	}

	types := registry.Types()
	if len(types) != 1 || types[0] != "hello" {
		t.Errorf("Expected [hello], got %v", types)
	}
}

// TestRegisterInvalidHandler tests rejecting empty names, nil handlers and duplicates
func TestRegisterInvalidHandler(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("", okHandler(1)); err == nil {
		t.Error("Expected error for empty name")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Error("Expected error for nil handler")
	}
	if err := registry.Register("dup", okHandler(1)); err != nil {
		t.Fatalf("Failed to register handler: %v", err)
	}
	if err := registry.Register("dup", okHandler(2)); err == nil {
		t.Error("Expected error when registering duplicate handler")
	}
}

// TestGetNonExistentHandler tests retrieving a missing handler
func TestGetNonExistentHandler(t *testing.T) {
	registry := NewRegistry()

	handler, err := registry.Get("missing")
	if err == nil {
		t.Error("Expected error for missing handler")
	}
	if handler != nil {
		t.Error("Expected nil handler")
	}
}

// TestRegistryTypesSorted tests that Types is sorted
func TestRegistryTypesSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"sleep", "fail", "fetch"} {
		if err := registry.Register(name, okHandler(name)); err != nil {
			t.Fatalf("Failed to register %s: %v", name, err)
		}
	}

	expected := []string{"fail", "fetch", "sleep"}
	types := registry.Types()
	for i := range expected {
		if types[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, types)
			break
		}
	}
}

// TestLaunch tests that Launch starts one task per name in order
func TestLaunch(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register("hello", okHandler("HELLO"))
	_ = registry.Register("world", okHandler("WORLD"))
	_ = registry.Register("fail", func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("ERROR")
	})

	tasks, err := registry.Launch(context.Background(), "hello", "world", "fail", "hello")
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("Expected 4 tasks, got %d", len(tasks))
	}

	expected := []interface{}{"HELLO", "WORLD", nil, "HELLO"}
	for i, tsk := range tasks {
		value, err := tsk.Wait()
		if i == 2 {
			if err == nil {
				t.Error("Expected the fail handler to fail")
			}
			continue
		}
		if err != nil || value != expected[i] {
			t.Errorf("Task %d: expected %v, got %v (err=%v)", i, expected[i], value, err)
		}
	}
}

// TestLaunchUnknownName tests that nothing starts when a name is unknown
func TestLaunchUnknownName(t *testing.T) {
	registry := NewRegistry()

	started := make(chan struct{}, 1)
	_ = registry.Register("hello", func(ctx context.Context) (interface{}, error) {
		started <- struct{}{}
		return "HELLO", nil
	})

	tasks, err := registry.Launch(context.Background(), "hello", "missing")
	if err == nil {
		t.Fatal("Expected error for unknown handler")
	}
	if tasks != nil {
		t.Error("Expected no tasks")
	}

	select {
	case <-started:
		t.Error("Expected no handler to run")
	default:
	}
}

// TestConcurrentRegistration tests registering from many goroutines
func TestConcurrentRegistration(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = registry.Register(fmt.Sprintf("handler_%d", i), okHandler(i))
		}(i)
	}
	wg.Wait()

	if len(registry.Types()) != 50 {
		t.Errorf("Expected 50 handlers, got %d", len(registry.Types()))
	}
}
