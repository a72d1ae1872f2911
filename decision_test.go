package sietch_test

import (
	"context"
	"testing"

	"github.com/pthm/sietch"
)

type testContextKey string

func TestDecisionContext(t *testing.T) {
	t.Run("DecisionUnset by default", func(t *testing.T) {
		ctx := context.Background()
		if got := sietch.GetDecisionContext(ctx); got != sietch.DecisionUnset {
			t.Errorf("GetDecisionContext() = %v, want DecisionUnset", got)
		}
	})

	t.Run("WithDecisionContext sets DecisionAllow", func(t *testing.T) {
		ctx := sietch.WithDecisionContext(context.Background(), sietch.DecisionAllow)
		if got := sietch.GetDecisionContext(ctx); got != sietch.DecisionAllow {
			t.Errorf("GetDecisionContext() = %v, want DecisionAllow", got)
		}
	})

	t.Run("child context inherits decision", func(t *testing.T) {
		parent := sietch.WithDecisionContext(context.Background(), sietch.DecisionDeny)
		child := context.WithValue(parent, testContextKey("other"), "value")
		if got := sietch.GetDecisionContext(child); got != sietch.DecisionDeny {
			t.Errorf("GetDecisionContext(child) = %v, want DecisionDeny", got)
		}
	})
}

func TestCheck_DecisionOverrides(t *testing.T) {
	ctx := context.Background()
	alice := object("user", "alice")
	eng := object("space", "eng")

	t.Run("DecisionAllow bypasses the store", func(t *testing.T) {
		checker := withDecision(t, sietch.DecisionAllow)

		ok, err := checker.Check(ctx, alice, "create_app", eng)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !ok {
			t.Error("Check should return true for DecisionAllow")
		}
	})

	t.Run("DecisionDeny bypasses the store", func(t *testing.T) {
		checker := withDecision(t, sietch.DecisionDeny)

		ok, err := checker.Check(ctx, alice, "create_app", eng)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if ok {
			t.Error("Check should return false for DecisionDeny")
		}
	})

	t.Run("context decision takes precedence when enabled", func(t *testing.T) {
		checker := newDecisionChecker(t, sietch.WithDecision(sietch.DecisionDeny), sietch.WithContextDecision())
		ctx := sietch.WithDecisionContext(context.Background(), sietch.DecisionAllow)

		ok, err := checker.Check(ctx, alice, "create_app", eng)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !ok {
			t.Error("context DecisionAllow should override checker DecisionDeny")
		}
	})

	t.Run("context decision requires opt-in", func(t *testing.T) {
		checker := newDecisionChecker(t, sietch.WithDecision(sietch.DecisionDeny))
		ctx := sietch.WithDecisionContext(context.Background(), sietch.DecisionAllow)

		ok, err := checker.Check(ctx, alice, "create_app", eng)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if ok {
			t.Error("context decision must be ignored without WithContextDecision")
		}
	})
}

// withDecision builds a checker over an unavailable store so any store
// read would fail loudly; decision overrides must never touch the store.
func withDecision(t *testing.T, d sietch.Decision) *sietch.Checker {
	t.Helper()
	return newDecisionChecker(t, sietch.WithDecision(d))
}

func newDecisionChecker(t *testing.T, opts ...sietch.Option) *sietch.Checker {
	t.Helper()
	reg, err := sietch.LoadModel(workspaceModel())
	if err != nil {
		t.Fatalf("loading model: %v", err)
	}
	return sietch.NewChecker(reg, unavailableStore{}, opts...)
}
