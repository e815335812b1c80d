package storage

import (
	"context"
	"strings"
	"testing"
)

// TestNewRequiresKind verifies backend selection errors.
func TestNewRequiresKind(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("empty kind should error")
	}
	_, err := New(context.Background(), Config{Kind: "no-such-backend"})
	if err == nil || !strings.Contains(err.Error(), "no-such-backend") {
		t.Fatalf("err = %v, want unsupported kind", err)
	}
}

// TestRegisterPanics verifies the fail-fast contract for bad registrations.
func TestRegisterPanics(t *testing.T) {
	t.Parallel()

	mustPanic := func(name string, f func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		f()
	}

	mustPanic("empty kind", func() {
		Register("", func(context.Context, Config) (Repository, error) { return nil, nil })
	})
	mustPanic("nil factory", func() {
		Register("test-nil-factory", nil)
	})

	Register("test-duplicate", func(context.Context, Config) (Repository, error) { return nil, nil })
	mustPanic("duplicate kind", func() {
		Register("test-duplicate", func(context.Context, Config) (Repository, error) { return nil, nil })
	})
}
