package sietch

import "fmt"

// color represents the state of a node during DFS cycle detection.
type color int

const (
	white color = iota // unvisited
	gray               // in current DFS path (cycle if revisited)
	black              // fully processed
)

// validateModel checks the structural invariants of a loaded model:
//
//   - every relation referenced by a ComputedUserset or Union child is
//     defined on the same type
//   - every TupleToUserset tupleset relation is defined on the same type
//     and is purely directly assignable: it names a link ("this space
//     belongs to this organization"), not a derived permission
//   - same-type relation references are acyclic
//
// The computed relation of a TupleToUserset is evaluated on whatever type
// the link tuple points at, which is only known at runtime; an absent
// relation there surfaces as ErrRelationNotFound from Check. Because a
// TupleToUserset always moves to a different object before recursing,
// same-type acyclicity is what bounds resolution depth.
func validateModel(reg *Registry) error {
	for _, objectType := range reg.ObjectTypes() {
		relations := reg.rewrites[objectType]

		for _, name := range reg.Relations(objectType) {
			if err := validateRewrite(objectType, name, relations[name], relations); err != nil {
				return err
			}
		}

		if cycle := detectRelationCycle(objectType, reg); cycle != nil {
			return fmt.Errorf("%w: relation cycle on type %q: %s",
				ErrInvalidSchema, objectType, formatCycle(cycle))
		}
	}
	return nil
}

// validateRewrite checks that a single rewrite only references relations
// defined on its own type, recursing through unions.
func validateRewrite(objectType ObjectType, name Relation, rewrite Userset, relations map[Relation]Userset) error {
	switch e := rewrite.(type) {
	case Direct:
		return nil

	case ComputedUserset:
		if _, ok := relations[e.Relation]; !ok {
			return fmt.Errorf("%w: relation %q on type %q references undefined relation %q",
				ErrInvalidSchema, name, objectType, e.Relation)
		}
		return nil

	case TupleToUserset:
		tupleset, ok := relations[e.Tupleset]
		if !ok {
			return fmt.Errorf("%w: relation %q on type %q references undefined tupleset relation %q",
				ErrInvalidSchema, name, objectType, e.Tupleset)
		}
		if _, direct := tupleset.(Direct); !direct {
			return fmt.Errorf("%w: tupleset relation %q on type %q must be directly assignable",
				ErrInvalidSchema, e.Tupleset, objectType)
		}
		if e.Computed == "" {
			return fmt.Errorf("%w: relation %q on type %q has an empty computed relation",
				ErrInvalidSchema, name, objectType)
		}
		return nil

	case Union:
		if len(e.Children) == 0 {
			return fmt.Errorf("%w: relation %q on type %q has an empty union",
				ErrInvalidSchema, name, objectType)
		}
		for _, child := range e.Children {
			if child == nil {
				return fmt.Errorf("%w: relation %q on type %q has a nil union member",
					ErrInvalidSchema, name, objectType)
			}
			if err := validateRewrite(objectType, name, child, relations); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: relation %q on type %q has unsupported rewrite %T",
			ErrInvalidSchema, name, objectType, rewrite)
	}
}

// detectRelationCycle finds a cycle among same-type relation references,
// if one exists, and returns it for error reporting. TupleToUserset edges
// are excluded: they cross to a different object, so they cannot close a
// same-type loop.
func detectRelationCycle(objectType ObjectType, reg *Registry) []Relation {
	relations := reg.rewrites[objectType]
	colors := make(map[Relation]color, len(relations))

	var stack []Relation
	var cycle []Relation

	var visit func(r Relation) bool
	visit = func(r Relation) bool {
		colors[r] = gray
		stack = append(stack, r)

		for _, next := range sameTypeReferences(relations[r]) {
			if _, defined := relations[next]; !defined {
				continue // undefined references are reported by validateRewrite
			}
			switch colors[next] {
			case gray:
				// Found a cycle; slice the stack from the first occurrence.
				for i, s := range stack {
					if s == next {
						cycle = append(append([]Relation{}, stack[i:]...), next)
						return true
					}
				}
			case white:
				if visit(next) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		colors[r] = black
		return false
	}

	for _, r := range reg.Relations(objectType) {
		if colors[r] == white && visit(r) {
			return cycle
		}
	}
	return nil
}

// sameTypeReferences collects the relations a rewrite references on its
// own type: ComputedUserset targets and union members, recursively.
func sameTypeReferences(rewrite Userset) []Relation {
	switch e := rewrite.(type) {
	case ComputedUserset:
		return []Relation{e.Relation}
	case Union:
		var refs []Relation
		for _, child := range e.Children {
			refs = append(refs, sameTypeReferences(child)...)
		}
		return refs
	default:
		return nil
	}
}

// formatCycle renders a relation cycle as "a -> b -> a".
func formatCycle(cycle []Relation) string {
	s := ""
	for i, r := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += r.String()
	}
	return s
}
