package sietch

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory TupleStore. It is safe for concurrent use:
// reads take a shared lock and batches take the exclusive lock, so a
// Check running concurrently with a Write observes either the whole batch
// or none of it.
//
// MemoryStore is the store of choice for tests and single-process
// deployments that can rebuild tuples at startup. Use pkg/pgstore when
// tuples must survive restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	name   string
	reg    *Registry
	tuples map[string]Tuple
}

// NewMemoryStore creates an empty in-memory store. A model must be
// installed (directly or via Bootstrap) before tuples can be written.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tuples: make(map[string]Tuple),
	}
}

// CreateStore records the store name. Creating an existing store is a
// no-op success.
func (s *MemoryStore) CreateStore(ctx context.Context, name string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	return nil
}

// InstallModel installs the registry used to validate writes.
func (s *MemoryStore) InstallModel(ctx context.Context, reg *Registry) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg = reg
	return nil
}

// Lookup reports whether the exact tuple is stored.
func (s *MemoryStore) Lookup(ctx context.Context, subject Subject, relation Relation, object Object) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	key := Tuple{Subject: subject, Relation: relation, Object: object}.String()

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tuples[key]
	return ok, nil
}

// LookupByTupleset returns the plain-object link targets of object under
// the tupleset relation.
func (s *MemoryStore) LookupByTupleset(ctx context.Context, object Object, tupleset Relation) ([]Object, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var targets []Object
	for _, t := range s.tuples {
		if t.Object == object && t.Relation == tupleset && !t.Subject.IsUserset() {
			targets = append(targets, t.Subject.Object)
		}
	}
	return targets, nil
}

// LookupUsersets returns the userset-reference subjects stored for
// (relation, object).
func (s *MemoryStore) LookupUsersets(ctx context.Context, object Object, relation Relation) ([]Subject, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var usersets []Subject
	for _, t := range s.tuples {
		if t.Object == object && t.Relation == relation && t.Subject.IsUserset() {
			usersets = append(usersets, t.Subject)
		}
	}
	return usersets, nil
}

// ReadByObject returns every stored tuple on the given object.
func (s *MemoryStore) ReadByObject(ctx context.Context, object Object) ([]Tuple, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var tuples []Tuple
	for _, t := range s.tuples {
		if t.Object == object {
			tuples = append(tuples, t)
		}
	}
	return tuples, nil
}

// Write applies the batch atomically. The whole batch is validated
// against the installed model before anything is touched, so a single
// invalid tuple rejects every add and remove in the batch.
func (s *MemoryStore) Write(ctx context.Context, adds, removes []Tuple) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reg == nil {
		return ErrMissingModel
	}
	for _, t := range adds {
		if !s.reg.HasRelation(t.Object.Type, t.Relation) {
			return fmt.Errorf("%w: %s", ErrInvalidTuple, t)
		}
	}
	for _, t := range removes {
		if !s.reg.HasRelation(t.Object.Type, t.Relation) {
			return fmt.Errorf("%w: %s", ErrInvalidTuple, t)
		}
	}

	// Duplicate adds and absent removes collapse silently.
	for _, t := range adds {
		s.tuples[t.String()] = t
	}
	for _, t := range removes {
		delete(s.tuples, t.String())
	}
	return nil
}

// Len returns the number of stored tuples. Useful in tests and for
// monitoring.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tuples)
}

// ctxErr maps an expired or cancelled context to ErrStoreUnavailable so
// in-memory and remote stores fail uniformly.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

var _ AdminStore = (*MemoryStore)(nil)
