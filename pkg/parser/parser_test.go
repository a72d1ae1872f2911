package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/sietch"
	"github.com/pthm/sietch/pkg/parser"
)

const workspaceDSL = `
model
  schema 1.1

type user

type team
  relations
    define member: [user]

type organization
  relations
    define admin: [user]

type space
  relations
    define moderator: [user, team#member]
    define organization: [organization]
    define create_app: [user] or moderator or admin from organization
    define edit_app: create_app
`

func TestParseModelString(t *testing.T) {
	model, err := parser.ParseModelString(workspaceDSL)
	require.NoError(t, err)
	assert.Equal(t, "1.1", model.Version)

	var space *sietch.TypeDefinition
	for i := range model.Types {
		if model.Types[i].Name == "space" {
			space = &model.Types[i]
		}
	}
	require.NotNil(t, space, "space type is present")

	rewrites := map[sietch.Relation]sietch.Userset{}
	for _, r := range space.Relations {
		rewrites[r.Name] = r.Rewrite
	}

	assert.Equal(t, sietch.Direct{}, rewrites["moderator"])
	assert.Equal(t, sietch.ComputedUserset{Relation: "create_app"}, rewrites["edit_app"])
	assert.Equal(t, sietch.Union{Children: []sietch.Userset{
		sietch.Direct{},
		sietch.ComputedUserset{Relation: "moderator"},
		sietch.TupleToUserset{Tupleset: "organization", Computed: "admin"},
	}}, rewrites["create_app"])
}

func TestParseModelString_RoundTrip(t *testing.T) {
	ctx := context.Background()

	model, err := parser.ParseModelString(workspaceDSL)
	require.NoError(t, err)

	reg, err := sietch.LoadModel(model)
	require.NoError(t, err)

	store := sietch.NewMemoryStore()
	require.NoError(t, store.InstallModel(ctx, reg))

	alice := sietch.Object{Type: "user", ID: "alice"}
	org := sietch.Object{Type: "organization", ID: "default"}
	eng := sietch.Object{Type: "space", ID: "eng"}
	require.NoError(t, store.Write(ctx, []sietch.Tuple{
		{Subject: sietch.SubjectFor(alice), Relation: "admin", Object: org},
		{Subject: sietch.SubjectFor(org), Relation: "organization", Object: eng},
	}, nil))

	checker := sietch.NewChecker(reg, store)
	ok, err := checker.Check(ctx, alice, "create_app", eng)
	require.NoError(t, err)
	assert.True(t, ok, "parsed DSL drives the engine end to end")
}

func TestParseModelString_Rejected(t *testing.T) {
	cases := []struct {
		name string
		dsl  string
	}{
		{
			name: "not a schema",
			dsl:  "type space\n  relations",
		},
		{
			name: "intersection",
			dsl: `
model
  schema 1.1

type user

type space
  relations
    define moderator: [user]
    define reviewer: [user]
    define approve: moderator and reviewer
`,
		},
		{
			name: "difference",
			dsl: `
model
  schema 1.1

type user

type space
  relations
    define moderator: [user]
    define banned: [user]
    define post: moderator but not banned
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.ParseModelString(tc.dsl)
			require.Error(t, err)
			assert.True(t, sietch.IsInvalidSchemaErr(err))
		})
	}
}

func TestParseModel_MissingFile(t *testing.T) {
	_, err := parser.ParseModel("testdata/does-not-exist.fga")
	require.Error(t, err)
}
