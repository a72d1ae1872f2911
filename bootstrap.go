package sietch

import (
	"context"
	"fmt"
)

// BootstrapState tracks progress through the one-time setup sequence.
type BootstrapState int

const (
	StateUninitialized BootstrapState = iota
	StateStoreCreated
	StateModelInstalled
	StateRootAdminSeeded
	StateOperational
)

// String returns the state name for logs and status output.
func (s BootstrapState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStoreCreated:
		return "store created"
	case StateModelInstalled:
		return "model installed"
	case StateRootAdminSeeded:
		return "root admin seeded"
	case StateOperational:
		return "operational"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Bootstrap performs the one-time setup of a deployment: create the
// store, install the authorization model, seed the root
// organization-admin tuple. Each step is idempotent, so re-running
// bootstrap at every startup is safe; against an already-operational
// store the whole sequence is a no-op success.
//
// A model validation failure is terminal: it surfaces as ErrInvalidSchema
// and startup must halt rather than retry.
type Bootstrap struct {
	store AdminStore
	state BootstrapState
	reg   *Registry
}

// NewBootstrap creates a bootstrap sequence over the store.
func NewBootstrap(store AdminStore) *Bootstrap {
	return &Bootstrap{store: store}
}

// State returns the current bootstrap state.
func (b *Bootstrap) State() BootstrapState {
	return b.state
}

// Registry returns the registry produced by InstallModel, or nil before
// that step has run.
func (b *Bootstrap) Registry() *Registry {
	return b.reg
}

// CreateStore provisions the backing store. Safe to re-run.
func (b *Bootstrap) CreateStore(ctx context.Context, name string) error {
	if err := b.store.CreateStore(ctx, name); err != nil {
		return fmt.Errorf("bootstrap: creating store %q: %w", name, err)
	}
	if b.state < StateStoreCreated {
		b.state = StateStoreCreated
	}
	return nil
}

// InstallModel validates the model and installs it into the store.
// Validation failure is fatal to bootstrap and is not retried.
func (b *Bootstrap) InstallModel(ctx context.Context, model Model) (*Registry, error) {
	if b.state < StateStoreCreated {
		return nil, fmt.Errorf("bootstrap: install model before store is created (state %s)", b.state)
	}
	reg, err := LoadModel(model)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if err := b.store.InstallModel(ctx, reg); err != nil {
		return nil, fmt.Errorf("bootstrap: installing model: %w", err)
	}
	b.reg = reg
	if b.state < StateModelInstalled {
		b.state = StateModelInstalled
	}
	return reg, nil
}

// InitializeRootAdmin seeds the root organization-admin tuple. Idempotent.
func (b *Bootstrap) InitializeRootAdmin(ctx context.Context, orgID string, admin Object) error {
	if b.state < StateModelInstalled {
		return fmt.Errorf("bootstrap: seed root admin before model is installed (state %s)", b.state)
	}
	if err := NewRelationships(b.store).InitializeRootAdmin(ctx, orgID, admin); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if b.state < StateRootAdminSeeded {
		b.state = StateRootAdminSeeded
	}
	b.state = StateOperational
	return nil
}

// Run executes the full sequence. Each step is idempotent, so Run is too.
func (b *Bootstrap) Run(ctx context.Context, storeName string, model Model, orgID string, admin Object) (*Registry, error) {
	if err := b.CreateStore(ctx, storeName); err != nil {
		return nil, err
	}
	reg, err := b.InstallModel(ctx, model)
	if err != nil {
		return nil, err
	}
	if err := b.InitializeRootAdmin(ctx, orgID, admin); err != nil {
		return nil, err
	}
	return reg, nil
}
