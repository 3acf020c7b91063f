package service

import (
	"alcyxob/coach-app/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncIdentity(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.store, f.log)

	user, err := svc.SyncIdentity(f.ctx, IdentityEvent{Type: IdentityUserCreated, ExternalID: "user_2", Email: " Ana@Example.com ", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)

	again, err := svc.SyncIdentity(f.ctx, IdentityEvent{Type: IdentityUserUpdated, ExternalID: "user_2", Name: "Ana B"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "Ana B", again.Name)

	deleted, err := svc.SyncIdentity(f.ctx, IdentityEvent{Type: IdentityUserDeleted, ExternalID: "user_2"})
	require.NoError(t, err)
	assert.Nil(t, deleted)

	_, err = svc.SyncIdentity(f.ctx, IdentityEvent{Type: "session.created", ExternalID: "user_2"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	resolved, err := svc.ResolveUser(f.ctx, "user_3")
	require.NoError(t, err)
	assert.Equal(t, "user_3", resolved.ExternalID)
}

func TestUpdateProfileValidates(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.store, f.log)

	weight := 82.5
	level := domain.ExperienceIntermediate
	eq := domain.Equipment{Kind: domain.EquipmentAccessHome, Items: []domain.EquipmentType{domain.EquipDumbbell}}
	user, err := svc.UpdateProfile(f.ctx, f.user.ID, ProfilePatch{WeightKg: &weight, Experience: &level, Equipment: &eq})
	require.NoError(t, err)
	assert.Equal(t, 82.5, user.WeightKg)
	assert.Equal(t, eq, user.Equipment)

	bad := domain.Equipment{Kind: domain.EquipmentAccessNone, Items: []domain.EquipmentType{domain.EquipBarbell}}
	_, err = svc.UpdateProfile(f.ctx, f.user.ID, ProfilePatch{Equipment: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	age := 4
	_, err = svc.UpdateProfile(f.ctx, f.user.ID, ProfilePatch{Age: &age})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateGoalKeepsOneActive(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.store, f.log)

	first, err := svc.CreateGoal(f.ctx, f.user.ID, GoalInput{Description: "lose 5kg of fat"})
	require.NoError(t, err)
	assert.Equal(t, domain.GoalBodyComposition, first.Category)
	assert.Equal(t, domain.DirectionDecrease, first.Direction)

	second, err := svc.CreateGoal(f.ctx, f.user.ID, GoalInput{Description: "run a marathon"})
	require.NoError(t, err)
	assert.Equal(t, domain.GoalEndurance, second.Category)

	active, err := svc.ActiveGoal(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	old, err := f.store.Goals.GetByID(f.ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)

	done, err := svc.CompleteGoal(f.ctx, f.user.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	active, err = svc.ActiveGoal(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = svc.CreateGoal(f.ctx, f.user.ID, GoalInput{Description: "x", Category: "vibes"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
