// Package sietch provides embeddable relationship-based access control
// implementing Zanzibar/OpenFGA concepts as an in-process engine.
//
// # Core Concepts
//
// Permissions are derived from a graph of stored relationship tuples rather
// than static role lists. A tuple is a fact of the form
// "subject has relation on object":
//
//	alice := sietch.Object{Type: "user", ID: "alice"}
//	eng := sietch.Object{Type: "space", ID: "eng"}
//	tuple := sietch.Tuple{
//	    Subject:  sietch.SubjectFor(alice),
//	    Relation: "moderator",
//	    Object:   eng,
//	}
//
// An authorization model defines, per object type, how each relation is
// computed: from stored tuples directly, as an alias of another relation,
// by following a link tuple to a related object, or as a union of those.
//
// # Basic Usage
//
//	registry, _ := sietch.LoadModel(model)
//	store := sietch.NewMemoryStore()
//	_ = store.InstallModel(ctx, registry)
//	checker := sietch.NewChecker(registry, store)
//	ok, err := checker.Check(ctx, alice, "create_app", eng)
//
// # Stores
//
// The core ships an in-memory store. For durable tuples backed by
// PostgreSQL, use the pkg/pgstore package, which implements the same
// TupleStore interface over database/sql.
//
// # Writes
//
// Tuple mutations go through the Relationships manager, which applies
// batched adds and removes atomically and idempotently:
//
//	rels := sietch.NewRelationships(store)
//	err := rels.ApplyBatch(ctx, adds, removes)
//
// # Fail-Closed Checks
//
// Check returns a typed error when the store is unreachable. At an
// authorization decision point, use Allowed, which treats any failure as a
// denial rather than propagating infrastructure errors into an allow.
package sietch

import (
	"fmt"
	"strings"
)

// ObjectType represents the type of an object.
type ObjectType string

// String returns the string representation of the object type.
func (ot ObjectType) String() string {
	return string(ot)
}

// Object represents a typed resource identifier.
// Both "users" and "resources" are objects - there is no distinction
// between subjects and objects at the type level.
//
// Objects are value types and safe to copy. The canonical string format
// is "type:id", used at API boundaries and in logging.
type Object struct {
	Type ObjectType
	ID   string
}

// String returns the canonical representation "type:id".
func (o Object) String() string {
	return o.Type.String() + ":" + o.ID
}

// Relation represents a typed relation identifier.
// Relations can be permissions (create_app, edit_app) or roles
// (admin, moderator); sietch treats all relations uniformly.
type Relation string

// String returns the canonical representation of the relation.
func (r Relation) String() string {
	return string(r)
}

// Subject is the "who" of a tuple: either a plain object, or a userset
// reference meaning "every subject that holds Relation on Object".
// A zero Relation marks a plain object subject.
//
// Userset subjects are how group-style grants are stored: the tuple
// (team:core#member, moderator, space:eng) makes every member of
// team:core a moderator of space:eng.
type Subject struct {
	Object
	Relation Relation
}

// SubjectFor wraps an object as a plain (non-userset) subject.
func SubjectFor(o Object) Subject {
	return Subject{Object: o}
}

// UsersetSubject builds a userset-reference subject for relation on o.
func UsersetSubject(o Object, relation Relation) Subject {
	return Subject{Object: o, Relation: relation}
}

// IsUserset reports whether the subject is a userset reference.
func (s Subject) IsUserset() bool {
	return s.Relation != ""
}

// String returns "type:id" for plain subjects and "type:id#relation" for
// userset references.
func (s Subject) String() string {
	if s.IsUserset() {
		return s.Object.String() + "#" + s.Relation.String()
	}
	return s.Object.String()
}

// Tuple is a stored relationship fact: Subject holds Relation on Object.
// Two tuples are the same fact iff all three components are equal;
// the store never holds structural duplicates.
type Tuple struct {
	Subject  Subject
	Relation Relation
	Object   Object
}

// String renders the tuple in Zanzibar notation "object#relation@subject".
// The encoding is a serialization convenience for boundaries and logs,
// not part of evaluation.
func (t Tuple) String() string {
	return t.Object.String() + "#" + t.Relation.String() + "@" + t.Subject.String()
}

// ParseObject parses the canonical "type:id" form.
func ParseObject(s string) (Object, error) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok || typ == "" || id == "" {
		return Object{}, fmt.Errorf("sietch: malformed object %q, want type:id", s)
	}
	return Object{Type: ObjectType(typ), ID: id}, nil
}

// ParseSubject parses "type:id" or a userset reference "type:id#relation".
func ParseSubject(s string) (Subject, error) {
	ref, relation, hasRelation := strings.Cut(s, "#")
	obj, err := ParseObject(ref)
	if err != nil {
		return Subject{}, err
	}
	if !hasRelation {
		return SubjectFor(obj), nil
	}
	if relation == "" {
		return Subject{}, fmt.Errorf("sietch: malformed subject %q, empty userset relation", s)
	}
	return UsersetSubject(obj, Relation(relation)), nil
}

// Well-known object types and relations for the workspace deployment.
// The registry itself is generic; these constants exist so that the
// lifecycle helpers on Relationships and the bootstrap sequence agree on
// one vocabulary.
const (
	TypeUser         ObjectType = "user"
	TypeOrganization ObjectType = "organization"
	TypeSpace        ObjectType = "space"

	RelationAdmin        Relation = "admin"
	RelationModerator    Relation = "moderator"
	RelationOrganization Relation = "organization"
)
