// Package parser provides OpenFGA schema parsing for sietch.
//
// This package wraps the official OpenFGA language parser to convert .fga
// schema files into sietch's Model format. It isolates the OpenFGA parser
// dependency from other packages.
//
// # Basic Usage
//
// Parse a schema file:
//
//	model, err := parser.ParseModel("schemas/schema.fga")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg, err := sietch.LoadModel(model)
//
// Parse schema from a string:
//
//	model, err := parser.ParseModelString(schemaContent)
//
// # Supported Rewrites
//
// The sietch engine evaluates direct assignment, computed usersets,
// tuple-to-userset inheritance, and unions. Schemas that use intersection
// ("and") or difference ("but not") fail with ErrInvalidSchema rather than
// being silently approximated.
package parser

import (
	"fmt"
	"os"
	"sort"

	openfgav1 "github.com/openfga/api/proto/openfga/v1"
	"github.com/openfga/language/pkg/go/transformer"

	"github.com/pthm/sietch"
)

// ParseModel reads an OpenFGA .fga file and returns a sietch model.
// Uses the official OpenFGA language parser to ensure compatibility with
// the OpenFGA ecosystem and tooling.
func ParseModel(path string) (sietch.Model, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted source
	if err != nil {
		return sietch.Model{}, fmt.Errorf("reading schema file: %w", err)
	}

	return ParseModelString(string(content))
}

// ParseModelString parses OpenFGA DSL content and returns a sietch model.
// Wraps the OpenFGA transformer to convert the protobuf model to our
// rewrite algebra.
func ParseModelString(content string) (sietch.Model, error) {
	model, err := transformer.TransformDSLToProto(content)
	if err != nil {
		return sietch.Model{}, fmt.Errorf("%w: %v", sietch.ErrInvalidSchema, err)
	}

	return ConvertProtoModel(model)
}

// ConvertProtoModel converts an OpenFGA protobuf AuthorizationModel to a
// sietch Model. Useful when a protobuf model is already at hand (e.g. from
// the OpenFGA API) rather than DSL text.
func ConvertProtoModel(model *openfgav1.AuthorizationModel) (sietch.Model, error) {
	out := sietch.Model{Version: model.GetSchemaVersion()}

	for _, td := range model.GetTypeDefinitions() {
		typeDef := sietch.TypeDefinition{
			Name: sietch.ObjectType(td.GetType()),
		}

		// Sort relation names for deterministic order; the protobuf
		// representation keeps relations in a map.
		relMap := td.GetRelations()
		relNames := make([]string, 0, len(relMap))
		for relName := range relMap {
			relNames = append(relNames, relName)
		}
		sort.Strings(relNames)

		for _, relName := range relNames {
			rewrite, err := convertUserset(relMap[relName])
			if err != nil {
				return sietch.Model{}, fmt.Errorf("%w: relation %q on type %q: %v",
					sietch.ErrInvalidSchema, relName, td.GetType(), err)
			}
			typeDef.Relations = append(typeDef.Relations, sietch.RelationDefinition{
				Name:    sietch.Relation(relName),
				Rewrite: rewrite,
			})
		}

		out.Types = append(out.Types, typeDef)
	}

	return out, nil
}

// convertUserset converts a protobuf Userset tree into the rewrite algebra.
// OpenFGA Usersets are recursive tree structures; the mapping is direct:
//   - This: direct tuple assignment
//   - ComputedUserset: relation alias on the same object
//   - TupleToUserset: inherit from a related object
//   - Union: any child grants
//
// Intersection and Difference have no counterpart in the engine and are
// rejected.
func convertUserset(us *openfgav1.Userset) (sietch.Userset, error) {
	if us == nil {
		return sietch.Direct{}, nil
	}

	switch v := us.Userset.(type) {
	case *openfgav1.Userset_This:
		return sietch.Direct{}, nil

	case *openfgav1.Userset_ComputedUserset:
		return sietch.ComputedUserset{
			Relation: sietch.Relation(v.ComputedUserset.GetRelation()),
		}, nil

	case *openfgav1.Userset_TupleToUserset:
		return sietch.TupleToUserset{
			Tupleset: sietch.Relation(v.TupleToUserset.GetTupleset().GetRelation()),
			Computed: sietch.Relation(v.TupleToUserset.GetComputedUserset().GetRelation()),
		}, nil

	case *openfgav1.Userset_Union:
		children := v.Union.GetChild()
		union := sietch.Union{Children: make([]sietch.Userset, 0, len(children))}
		for _, child := range children {
			converted, err := convertUserset(child)
			if err != nil {
				return nil, err
			}
			union.Children = append(union.Children, converted)
		}
		return union, nil

	case *openfgav1.Userset_Intersection:
		return nil, fmt.Errorf("intersection is not supported")

	case *openfgav1.Userset_Difference:
		return nil, fmt.Errorf("difference is not supported")

	default:
		return nil, fmt.Errorf("unknown userset variant %T", v)
	}
}
