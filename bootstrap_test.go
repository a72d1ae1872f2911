package sietch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/sietch"
)

func TestBootstrap_Run(t *testing.T) {
	ctx := context.Background()
	root := object("user", "root")
	store := sietch.NewMemoryStore()
	boot := sietch.NewBootstrap(store)

	require.Equal(t, sietch.StateUninitialized, boot.State())

	reg, err := boot.Run(ctx, "workspace", workspaceModel(), "default", root)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, sietch.StateOperational, boot.State())

	checker := sietch.NewChecker(reg, store)
	ok, err := checker.Check(ctx, root, "admin", object("organization", "default"))
	require.NoError(t, err)
	assert.True(t, ok, "root admin tuple seeded")
}

func TestBootstrap_RerunIsNoop(t *testing.T) {
	ctx := context.Background()
	root := object("user", "root")
	store := sietch.NewMemoryStore()
	boot := sietch.NewBootstrap(store)

	_, err := boot.Run(ctx, "workspace", workspaceModel(), "default", root)
	require.NoError(t, err)
	before := store.Len()

	_, err = boot.Run(ctx, "workspace", workspaceModel(), "default", root)
	require.NoError(t, err, "restart-time re-execution is safe")
	assert.Equal(t, sietch.StateOperational, boot.State())
	assert.Equal(t, before, store.Len())
}

func TestBootstrap_InvalidModelIsFatal(t *testing.T) {
	ctx := context.Background()
	store := sietch.NewMemoryStore()
	boot := sietch.NewBootstrap(store)

	require.NoError(t, boot.CreateStore(ctx, "workspace"))

	bad := sietch.Model{Types: []sietch.TypeDefinition{
		{Name: "space", Relations: []sietch.RelationDefinition{
			{Name: "edit_app", Rewrite: sietch.ComputedUserset{Relation: "missing"}},
		}},
	}}
	_, err := boot.InstallModel(ctx, bad)
	require.Error(t, err)
	assert.True(t, sietch.IsInvalidSchemaErr(err))
	assert.Equal(t, sietch.StateStoreCreated, boot.State(), "failed install does not advance")
}

func TestBootstrap_StepOrdering(t *testing.T) {
	ctx := context.Background()
	store := sietch.NewMemoryStore()
	boot := sietch.NewBootstrap(store)

	_, err := boot.InstallModel(ctx, workspaceModel())
	assert.Error(t, err, "model install requires a created store")

	err = boot.InitializeRootAdmin(ctx, "default", object("user", "root"))
	assert.Error(t, err, "seeding requires an installed model")
}

func TestBootstrapState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", sietch.StateUninitialized.String())
	assert.Equal(t, "operational", sietch.StateOperational.String())
	assert.Equal(t, "unknown(42)", sietch.BootstrapState(42).String())
}
