package sietch

import (
	"context"
	"time"
)

// defaultMaxDepth bounds userset resolution. Valid models terminate well
// inside this; the guard exists so a corrupted store or model can never
// drive the checker into unbounded recursion.
const defaultMaxDepth = 16

// Checker answers "can subject exercise relation on object?" by
// evaluating the model's rewrite rules against the tuple store. Checks
// only read; they run fully in parallel with each other and with
// unrelated writes.
//
// Checkers are lightweight and safe to create per request. They hold no
// state beyond the registry, the store handle, and the configured
// options.
type Checker struct {
	reg                *Registry
	store              TupleStore
	cache              Cache
	observer           Observer
	decision           Decision
	useContextDecision bool
	maxDepth           int
}

// Option configures a Checker.
type Option func(*Checker)

// WithCache enables caching of check results. Caching is safe across
// goroutines but scoped to a single Checker instance; for request-scoped
// caching, create a Checker per request with a request-scoped cache.
func WithCache(c Cache) Option {
	return func(ch *Checker) {
		ch.cache = c
	}
}

// WithObserver installs a hook that sees every check outcome. Use it to
// wire counters or trace spans; the default observer discards
// observations.
func WithObserver(o Observer) Option {
	return func(ch *Checker) {
		ch.observer = o
	}
}

// WithDecision sets a decision override that bypasses store reads.
// Use DecisionAllow for admin tools or testing authorized paths,
// DecisionDeny for testing unauthorized paths.
func WithDecision(d Decision) Option {
	return func(ch *Checker) {
		ch.decision = d
	}
}

// WithContextDecision enables context-based decision overrides. When
// enabled, Check consults GetDecisionContext(ctx) before the Checker's
// own decision and before any store read. Opt-in by design so context
// can only override authorization where the Checker explicitly allows it.
func WithContextDecision() Option {
	return func(ch *Checker) {
		ch.useContextDecision = true
	}
}

// WithMaxDepth overrides the resolution depth limit.
func WithMaxDepth(depth int) Option {
	return func(ch *Checker) {
		if depth > 0 {
			ch.maxDepth = depth
		}
	}
}

// NewChecker creates a checker over the given registry and store.
func NewChecker(reg *Registry, store TupleStore, opts ...Option) *Checker {
	c := &Checker{
		reg:      reg,
		store:    store,
		observer: NopObserver{},
		decision: DecisionUnset,
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check returns true if subject holds relation on object under the loaded
// model. Absence of a granting path is a normal (false, nil) result, not
// an error. Errors are returned only when the model does not define the
// queried relation or the store cannot be reached; at an authorization
// decision point prefer Allowed, which fails closed on those.
func (c *Checker) Check(ctx context.Context, subject Object, relation Relation, object Object) (bool, error) {
	if c.useContextDecision {
		if d := GetDecisionContext(ctx); d != DecisionUnset {
			return d == DecisionAllow, nil
		}
	}
	if c.decision != DecisionUnset {
		return c.decision == DecisionAllow, nil
	}

	if c.cache != nil {
		if allowed, cachedErr, found := c.cache.Get(SubjectFor(subject), relation, object); found {
			return allowed, cachedErr
		}
	}

	start := time.Now()
	allowed, err := c.check(ctx, subject, relation, object, 0)
	c.observer.ObserveCheck(subject, relation, object, allowed, err, time.Since(start))

	// Only successful checks are cached; transient store failures must
	// not be served from cache after the store recovers.
	if c.cache != nil && err == nil {
		c.cache.Set(SubjectFor(subject), relation, object, allowed, nil)
	}

	return allowed, err
}

// Allowed is the fail-closed form of Check: any error, including a store
// outage, is a denial. Callers gating a mutation should use this so an
// infrastructure failure can never widen into an allow. The caller-facing
// signal does not distinguish "no grant" from "failed closed"; wire an
// Observer to see the underlying errors.
func (c *Checker) Allowed(ctx context.Context, subject Object, relation Relation, object Object) bool {
	allowed, err := c.Check(ctx, subject, relation, object)
	return err == nil && allowed
}

// check resolves the rewrite rule for (object.Type, relation) and
// evaluates it. depth counts rewrite hops, not call frames.
func (c *Checker) check(ctx context.Context, subject Object, relation Relation, object Object, depth int) (bool, error) {
	if depth > c.maxDepth {
		return false, ErrResolutionDepth
	}

	rewrite, err := c.reg.Expression(object.Type, relation)
	if err != nil {
		return false, err
	}
	return c.eval(ctx, rewrite, subject, relation, object, depth)
}

// eval evaluates one rewrite expression by structural recursion with
// short-circuiting, per the four-case algebra.
func (c *Checker) eval(ctx context.Context, rewrite Userset, subject Object, relation Relation, object Object, depth int) (bool, error) {
	switch e := rewrite.(type) {
	case Direct:
		ok, err := c.store.Lookup(ctx, SubjectFor(subject), relation, object)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		// The subject may be an indirect member via a userset-reference
		// tuple: (team:core#member, moderator, space:eng) grants every
		// member of team:core. Expand structurally instead of
		// materializing members.
		usersets, err := c.store.LookupUsersets(ctx, object, relation)
		if err != nil {
			return false, err
		}
		for _, us := range usersets {
			ok, err := c.check(ctx, subject, us.Relation, us.Object, depth+1)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case ComputedUserset:
		return c.check(ctx, subject, e.Relation, object, depth+1)

	case TupleToUserset:
		targets, err := c.store.LookupByTupleset(ctx, object, e.Tupleset)
		if err != nil {
			return false, err
		}
		// Logical OR over link targets; normally exactly one (a space
		// belongs to one organization).
		for _, target := range targets {
			ok, err := c.check(ctx, subject, e.Computed, target, depth+1)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case Union:
		for _, child := range e.Children {
			ok, err := c.eval(ctx, child, subject, relation, object, depth)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	default:
		// LoadModel rejects unknown variants; reaching this means the
		// registry was bypassed.
		return false, ErrInvalidSchema
	}
}
