package sietch

import "context"

// TupleStore is the durable set of relationship tuples. Implementations
// must be safe for concurrent readers and writers, honor context
// deadlines by returning an error wrapping ErrStoreUnavailable rather
// than blocking indefinitely, and apply each Write batch atomically.
//
// The core ships MemoryStore; pkg/pgstore provides a PostgreSQL-backed
// implementation over database/sql.
type TupleStore interface {
	// Lookup reports whether the exact tuple (subject, relation, object)
	// is stored. It is an existence check only; no rewrite evaluation.
	Lookup(ctx context.Context, subject Subject, relation Relation, object Object) (bool, error)

	// LookupByTupleset returns the link targets of object under the given
	// tupleset relation: the plain-object subjects of stored
	// (subject, tupleset, object) tuples. Userset subjects on a link
	// relation are excluded; links point at objects, not at usersets.
	LookupByTupleset(ctx context.Context, object Object, tupleset Relation) ([]Object, error)

	// LookupUsersets returns the userset-reference subjects of stored
	// tuples for (relation, object). The checker expands these
	// structurally, re-checking the referenced relation on the referenced
	// object instead of materializing group members.
	LookupUsersets(ctx context.Context, object Object, relation Relation) ([]Subject, error)

	// ReadByObject returns every stored tuple whose object is the given
	// object. Used by lifecycle teardown to remove all facts about a
	// deleted entity in one batch.
	ReadByObject(ctx context.Context, object Object) ([]Tuple, error)

	// Write applies adds and removes as a single atomic batch: either the
	// whole batch is observable afterwards or none of it is. Adding an
	// already-present tuple and removing an absent one are both no-op
	// successes. A tuple whose relation is not in the installed model
	// fails the whole batch with ErrInvalidTuple.
	Write(ctx context.Context, adds, removes []Tuple) error
}

// AdminStore extends TupleStore with the one-time provisioning surface
// used by Bootstrap. Both operations are idempotent.
type AdminStore interface {
	TupleStore

	// CreateStore provisions the backing storage under the given name.
	// Safe to call when the store already exists.
	CreateStore(ctx context.Context, name string) error

	// InstallModel installs the registry the store validates writes
	// against. Reinstalling replaces the previous registry; in-flight
	// reads are unaffected.
	InstallModel(ctx context.Context, reg *Registry) error
}
