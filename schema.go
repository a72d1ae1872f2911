package sietch

import (
	"fmt"
	"sort"
)

// Userset is the rule defining who holds a relation. It is a closed sum
// type evaluated by structural recursion in the Checker; the four variants
// are Direct, ComputedUserset, TupleToUserset, and Union.
//
// This algebra is sufficient to express direct assignment, role-derived
// permissions ("a moderator of this space may create an app in it"), and
// cross-scope inheritance ("an admin of the organization this space
// belongs to may do anything a moderator can") without general attribute
// predicates.
type Userset interface {
	userset()
}

// Direct grants the relation to whoever is explicitly tied to it via a
// stored tuple. The tuple subject may itself be a userset reference, in
// which case membership is resolved recursively.
type Direct struct{}

// ComputedUserset aliases the relation to another relation on the same
// object: holders of Relation hold this relation too.
type ComputedUserset struct {
	Relation Relation
}

// TupleToUserset derives the relation from a related object. Tupleset
// names a link relation whose direct tuples point at the related object
// (e.g. "this space belongs to this organization"); Computed is the
// relation evaluated there. Holders of Computed on any link target hold
// this relation.
type TupleToUserset struct {
	Tupleset Relation
	Computed Relation
}

// Union grants the relation if any child expression grants it.
// Evaluation short-circuits on the first granting child.
type Union struct {
	Children []Userset
}

func (Direct) userset()          {}
func (ComputedUserset) userset() {}
func (TupleToUserset) userset()  {}
func (Union) userset()           {}

// RelationDefinition binds a relation name to its rewrite rule.
type RelationDefinition struct {
	Name    Relation
	Rewrite Userset
}

// TypeDefinition describes one object type and the relations that can
// exist on objects of that type.
type TypeDefinition struct {
	Name      ObjectType
	Relations []RelationDefinition
}

// Model is the versioned authorization model: the full set of type
// definitions for one deployment. Models are plain data; LoadModel
// validates one and produces the immutable Registry the engine reads.
type Model struct {
	Version string
	Types   []TypeDefinition
}

// Registry is the validated, immutable runtime form of a Model.
// It is created once by LoadModel and is read-only afterwards, so
// concurrent reads need no synchronization. Installing a new model
// version means loading a new Registry, never mutating one in place.
type Registry struct {
	version  string
	rewrites map[ObjectType]map[Relation]Userset
}

// LoadModel validates a model and returns its registry. It fails with an
// error wrapping ErrInvalidSchema when a relation references an undefined
// relation name or an unknown object type, when a tupleset relation is
// not purely directly assignable, or when relation aliases form a cycle.
func LoadModel(m Model) (*Registry, error) {
	reg := &Registry{
		version:  m.Version,
		rewrites: make(map[ObjectType]map[Relation]Userset, len(m.Types)),
	}

	for _, t := range m.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: type with empty name", ErrInvalidSchema)
		}
		if _, ok := reg.rewrites[t.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate type %q", ErrInvalidSchema, t.Name)
		}
		relations := make(map[Relation]Userset, len(t.Relations))
		for _, r := range t.Relations {
			if r.Name == "" {
				return nil, fmt.Errorf("%w: type %q has a relation with empty name", ErrInvalidSchema, t.Name)
			}
			if _, ok := relations[r.Name]; ok {
				return nil, fmt.Errorf("%w: duplicate relation %q on type %q", ErrInvalidSchema, r.Name, t.Name)
			}
			if r.Rewrite == nil {
				return nil, fmt.Errorf("%w: relation %q on type %q has no rewrite", ErrInvalidSchema, r.Name, t.Name)
			}
			relations[r.Name] = r.Rewrite
		}
		reg.rewrites[t.Name] = relations
	}

	if err := validateModel(reg); err != nil {
		return nil, err
	}

	return reg, nil
}

// Version returns the model version the registry was loaded from.
func (reg *Registry) Version() string {
	return reg.version
}

// Expression returns the rewrite rule for relation on objects of the
// given type. Fails with an error wrapping ErrRelationNotFound when the
// type or relation is absent from the model.
func (reg *Registry) Expression(objectType ObjectType, relation Relation) (Userset, error) {
	relations, ok := reg.rewrites[objectType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown object type %q", ErrRelationNotFound, objectType)
	}
	rewrite, ok := relations[relation]
	if !ok {
		return nil, fmt.Errorf("%w: %s#%s", ErrRelationNotFound, objectType, relation)
	}
	return rewrite, nil
}

// HasRelation reports whether the model defines relation for objectType.
// Stores use this to enforce that every written tuple names a relation
// the model knows about.
func (reg *Registry) HasRelation(objectType ObjectType, relation Relation) bool {
	_, ok := reg.rewrites[objectType][relation]
	return ok
}

// ObjectTypes returns the object types defined by the model, sorted.
func (reg *Registry) ObjectTypes() []ObjectType {
	types := make([]ObjectType, 0, len(reg.rewrites))
	for t := range reg.rewrites {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Relations returns the relations defined for objectType, sorted.
// Returns nil for unknown types.
func (reg *Registry) Relations(objectType ObjectType) []Relation {
	defined, ok := reg.rewrites[objectType]
	if !ok {
		return nil
	}
	relations := make([]Relation, 0, len(defined))
	for r := range defined {
		relations = append(relations, r)
	}
	sort.Slice(relations, func(i, j int) bool { return relations[i] < relations[j] })
	return relations
}
