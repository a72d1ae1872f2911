package sietch

import "context"

// Decision allows bypassing store-backed checks for admin tools and
// tests. Decisions are set at Checker construction time via WithDecision,
// making the bypass explicit and visible in code.
type Decision int

const (
	// DecisionUnset means no override - perform the normal check.
	DecisionUnset Decision = iota

	// DecisionAllow bypasses evaluation and always returns true.
	// Use for admin tools, background jobs, or testing authorized paths.
	DecisionAllow

	// DecisionDeny bypasses evaluation and always returns false.
	// Use for testing unauthorized paths without store setup.
	DecisionDeny
)

type decisionContextKey struct{}

// WithDecisionContext returns a new context carrying the given decision.
// The Checker consults it only when constructed with WithContextDecision;
// this is a utility for applications that propagate authorization
// decisions through their own middleware chains.
func WithDecisionContext(ctx context.Context, decision Decision) context.Context {
	return context.WithValue(ctx, decisionContextKey{}, decision)
}

// GetDecisionContext retrieves the decision from context.
// Returns DecisionUnset if none is set.
func GetDecisionContext(ctx context.Context) Decision {
	if decision, ok := ctx.Value(decisionContextKey{}).(Decision); ok {
		return decision
	}
	return DecisionUnset
}
