package sietch

import (
	"fmt"
	"os"
	"sort"

	"sigs.k8s.io/yaml"
)

// modelFile is the on-disk YAML form of a Model.
//
//	version: "1"
//	types:
//	  - name: organization
//	    relations:
//	      admin: {direct: true}
//	  - name: space
//	    relations:
//	      moderator: {direct: true}
//	      organization: {direct: true}
//	      create_app:
//	        union:
//	          - direct: true
//	          - computed: moderator
//	          - tupleToUserset: {tupleset: organization, computed: admin}
type modelFile struct {
	Version string          `json:"version"`
	Types   []modelFileType `json:"types"`
}

type modelFileType struct {
	Name      string                 `json:"name"`
	Relations map[string]rewriteSpec `json:"relations"`
}

// rewriteSpec is the declarative form of a Userset. Exactly one field
// must be set.
type rewriteSpec struct {
	Direct         bool          `json:"direct,omitempty"`
	Computed       string        `json:"computed,omitempty"`
	TupleToUserset *ttuSpec      `json:"tupleToUserset,omitempty"`
	Union          []rewriteSpec `json:"union,omitempty"`
}

type ttuSpec struct {
	Tupleset string `json:"tupleset"`
	Computed string `json:"computed"`
}

// LoadModelFile reads a YAML model file. The result still has to go
// through LoadModel; this only handles decoding.
func LoadModelFile(path string) (Model, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Model{}, fmt.Errorf("reading model file: %w", err)
	}
	return ParseModelYAML(content)
}

// ParseModelYAML decodes the YAML model representation.
func ParseModelYAML(content []byte) (Model, error) {
	var file modelFile
	if err := yaml.UnmarshalStrict(content, &file); err != nil {
		return Model{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	model := Model{Version: file.Version}
	for _, t := range file.Types {
		typeDef := TypeDefinition{Name: ObjectType(t.Name)}

		// Map iteration order is random; sort for a deterministic model.
		names := make([]string, 0, len(t.Relations))
		for name := range t.Relations {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			rewrite, err := buildRewrite(t.Relations[name])
			if err != nil {
				return Model{}, fmt.Errorf("%w: relation %q on type %q: %v",
					ErrInvalidSchema, name, t.Name, err)
			}
			typeDef.Relations = append(typeDef.Relations, RelationDefinition{
				Name:    Relation(name),
				Rewrite: rewrite,
			})
		}
		model.Types = append(model.Types, typeDef)
	}
	return model, nil
}

// buildRewrite converts one rewriteSpec into the Userset sum type.
func buildRewrite(spec rewriteSpec) (Userset, error) {
	set := 0
	if spec.Direct {
		set++
	}
	if spec.Computed != "" {
		set++
	}
	if spec.TupleToUserset != nil {
		set++
	}
	if len(spec.Union) > 0 {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("want exactly one of direct, computed, tupleToUserset, union; got %d", set)
	}

	switch {
	case spec.Direct:
		return Direct{}, nil
	case spec.Computed != "":
		return ComputedUserset{Relation: Relation(spec.Computed)}, nil
	case spec.TupleToUserset != nil:
		return TupleToUserset{
			Tupleset: Relation(spec.TupleToUserset.Tupleset),
			Computed: Relation(spec.TupleToUserset.Computed),
		}, nil
	default:
		union := Union{}
		for _, child := range spec.Union {
			rewrite, err := buildRewrite(child)
			if err != nil {
				return nil, err
			}
			union.Children = append(union.Children, rewrite)
		}
		return union, nil
	}
}
