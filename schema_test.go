package sietch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/sietch"
)

func TestLoadModel_Valid(t *testing.T) {
	reg, err := sietch.LoadModel(workspaceModel())
	require.NoError(t, err)

	assert.Equal(t, "1", reg.Version())
	assert.Equal(t,
		[]sietch.ObjectType{"organization", "space", "team", "user"},
		reg.ObjectTypes())
	assert.Equal(t,
		[]sietch.Relation{"create_app", "edit_app", "moderator", "organization"},
		reg.Relations("space"))

	rewrite, err := reg.Expression("space", "create_app")
	require.NoError(t, err)
	union, ok := rewrite.(sietch.Union)
	require.True(t, ok)
	assert.Len(t, union.Children, 3)
}

func TestLoadModel_UndefinedComputedRelation(t *testing.T) {
	model := sietch.Model{Types: []sietch.TypeDefinition{
		{Name: "space", Relations: []sietch.RelationDefinition{
			{Name: "edit_app", Rewrite: sietch.ComputedUserset{Relation: "create_app"}},
		}},
	}}

	_, err := sietch.LoadModel(model)
	require.Error(t, err)
	assert.True(t, sietch.IsInvalidSchemaErr(err))
	assert.Contains(t, err.Error(), "create_app")
}

func TestLoadModel_UndefinedTuplesetRelation(t *testing.T) {
	model := sietch.Model{Types: []sietch.TypeDefinition{
		{Name: "space", Relations: []sietch.RelationDefinition{
			{Name: "create_app", Rewrite: sietch.TupleToUserset{Tupleset: "organization", Computed: "admin"}},
		}},
	}}

	_, err := sietch.LoadModel(model)
	assert.True(t, sietch.IsInvalidSchemaErr(err))
}

func TestLoadModel_TuplesetMustBeDirect(t *testing.T) {
	// A tupleset relation names a link resolved via stored tuples; a
	// derived relation cannot serve as one.
	model := sietch.Model{Types: []sietch.TypeDefinition{
		{Name: "space", Relations: []sietch.RelationDefinition{
			{Name: "moderator", Rewrite: sietch.Direct{}},
			{Name: "organization", Rewrite: sietch.ComputedUserset{Relation: "moderator"}},
			{Name: "create_app", Rewrite: sietch.TupleToUserset{Tupleset: "organization", Computed: "admin"}},
		}},
	}}

	_, err := sietch.LoadModel(model)
	require.Error(t, err)
	assert.True(t, sietch.IsInvalidSchemaErr(err))
	assert.Contains(t, err.Error(), "directly assignable")
}

func TestLoadModel_ComputedCycle(t *testing.T) {
	model := sietch.Model{Types: []sietch.TypeDefinition{
		{Name: "resource", Relations: []sietch.RelationDefinition{
			{Name: "admin", Rewrite: sietch.Union{Children: []sietch.Userset{
				sietch.Direct{},
				sietch.ComputedUserset{Relation: "owner"},
			}}},
			{Name: "owner", Rewrite: sietch.Union{Children: []sietch.Userset{
				sietch.Direct{},
				sietch.ComputedUserset{Relation: "admin"},
			}}},
		}},
	}}

	_, err := sietch.LoadModel(model)
	require.Error(t, err)
	assert.True(t, sietch.IsInvalidSchemaErr(err))
	assert.Contains(t, err.Error(), "cycle")
}

func TestLoadModel_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		model sietch.Model
	}{
		{"empty type name", sietch.Model{Types: []sietch.TypeDefinition{{Name: ""}}}},
		{"duplicate type", sietch.Model{Types: []sietch.TypeDefinition{{Name: "user"}, {Name: "user"}}}},
		{"nil rewrite", sietch.Model{Types: []sietch.TypeDefinition{
			{Name: "space", Relations: []sietch.RelationDefinition{{Name: "moderator"}}},
		}}},
		{"duplicate relation", sietch.Model{Types: []sietch.TypeDefinition{
			{Name: "space", Relations: []sietch.RelationDefinition{
				{Name: "moderator", Rewrite: sietch.Direct{}},
				{Name: "moderator", Rewrite: sietch.Direct{}},
			}},
		}}},
		{"empty union", sietch.Model{Types: []sietch.TypeDefinition{
			{Name: "space", Relations: []sietch.RelationDefinition{
				{Name: "create_app", Rewrite: sietch.Union{}},
			}},
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sietch.LoadModel(tc.model)
			assert.True(t, sietch.IsInvalidSchemaErr(err))
		})
	}
}

func TestRegistry_ExpressionNotFound(t *testing.T) {
	reg, err := sietch.LoadModel(workspaceModel())
	require.NoError(t, err)

	_, err = reg.Expression("space", "nope")
	assert.True(t, sietch.IsRelationNotFoundErr(err))

	_, err = reg.Expression("galaxy", "admin")
	assert.True(t, sietch.IsRelationNotFoundErr(err))

	assert.True(t, reg.HasRelation("space", "moderator"))
	assert.False(t, reg.HasRelation("space", "nope"))
	assert.Nil(t, reg.Relations("galaxy"))
}
