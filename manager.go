package sietch

import (
	"context"
	"fmt"
)

// Relationships orchestrates tuple mutations on behalf of entity
// lifecycle operations. All mutations funnel through ApplyBatch, which
// delegates to the store's atomic Write: a concurrent Check observes
// either the whole batch or none of it, never a partial one.
//
// Callers own the ordering contract between batches. Correlated changes
// such as "remove the old moderator, add the new one" must be one batch,
// not two calls, or there is a window with zero or two moderators.
type Relationships struct {
	store TupleStore
}

// NewRelationships creates a relationship manager over the store.
func NewRelationships(store TupleStore) *Relationships {
	return &Relationships{store: store}
}

// ApplyBatch applies adds and removes as one atomic, idempotent batch.
// Re-adding present tuples and removing absent ones succeed without
// effect.
func (m *Relationships) ApplyBatch(ctx context.Context, adds, removes []Tuple) error {
	return m.store.Write(ctx, adds, removes)
}

// InitializeRootAdmin writes the root organization-admin tuple
// (admin, "admin", organization:orgID). Idempotent: succeeds whether or
// not the tuple already existed.
func (m *Relationships) InitializeRootAdmin(ctx context.Context, orgID string, admin Object) error {
	tuple := Tuple{
		Subject:  SubjectFor(admin),
		Relation: RelationAdmin,
		Object:   Object{Type: TypeOrganization, ID: orgID},
	}
	if err := m.store.Write(ctx, []Tuple{tuple}, nil); err != nil {
		return fmt.Errorf("initializing root admin: %w", err)
	}
	return nil
}

// SpaceCreated writes the tuples a new space starts with: its initial
// moderator and the link to its owning organization, in one batch.
func (m *Relationships) SpaceCreated(ctx context.Context, spaceID string, moderator Object, orgID string) error {
	space := Object{Type: TypeSpace, ID: spaceID}
	adds := []Tuple{
		{Subject: SubjectFor(moderator), Relation: RelationModerator, Object: space},
		{Subject: SubjectFor(Object{Type: TypeOrganization, ID: orgID}), Relation: RelationOrganization, Object: space},
	}
	if err := m.store.Write(ctx, adds, nil); err != nil {
		return fmt.Errorf("recording created space %s: %w", space, err)
	}
	return nil
}

// ChangeModerator swaps a space's moderator in one batch, so no
// interleaved Check sees the space with zero or two moderators.
func (m *Relationships) ChangeModerator(ctx context.Context, spaceID string, oldModerator, newModerator Object) error {
	space := Object{Type: TypeSpace, ID: spaceID}
	adds := []Tuple{
		{Subject: SubjectFor(newModerator), Relation: RelationModerator, Object: space},
	}
	removes := []Tuple{
		{Subject: SubjectFor(oldModerator), Relation: RelationModerator, Object: space},
	}
	if err := m.store.Write(ctx, adds, removes); err != nil {
		return fmt.Errorf("changing moderator of %s: %w", space, err)
	}
	return nil
}

// SpaceDeleted removes every tuple whose object is the space, in one
// batch. Idempotent: deleting a space with no tuples succeeds.
func (m *Relationships) SpaceDeleted(ctx context.Context, spaceID string) error {
	return m.ObjectDeleted(ctx, Object{Type: TypeSpace, ID: spaceID})
}

// ObjectDeleted removes every tuple stored on the given object. Call
// after the entity mutation commits to keep tuples consistent with
// entity existence.
func (m *Relationships) ObjectDeleted(ctx context.Context, object Object) error {
	tuples, err := m.store.ReadByObject(ctx, object)
	if err != nil {
		return fmt.Errorf("reading tuples of deleted %s: %w", object, err)
	}
	if len(tuples) == 0 {
		return nil
	}
	if err := m.store.Write(ctx, nil, tuples); err != nil {
		return fmt.Errorf("removing tuples of deleted %s: %w", object, err)
	}
	return nil
}
