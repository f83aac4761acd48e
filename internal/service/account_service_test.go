package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohdFaizan63/Resume-Builder/internal/database"
)

func TestDashboard(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	resumes := NewResumeService(db)
	accounts := NewAccountService(db)
	user := seedUser(t, db, "ann@example.com")

	for _, title := range []string{"One", "Two"} {
		_, err := resumes.Create(ctx, user.ID, validContent(title))
		require.NoError(t, err)
	}

	dash, err := accounts.Dashboard(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.Stats.TotalResumes)
	assert.Equal(t, database.PlanFree, dash.Stats.SubscriptionPlan)
	assert.True(t, dash.Stats.SubscriptionActive)
	assert.Equal(t, "ann@example.com", dash.User.Email)
	assert.Equal(t, database.RoleUser, dash.User.Role)

	_, err = accounts.Dashboard(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateSubscription(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	accounts := NewAccountService(db)
	clock := newFakeClock()
	accounts.now = clock.Now
	user := seedUser(t, db, "ann@example.com")

	view, err := accounts.UpdateSubscription(ctx, user.ID, " Pro ")
	require.NoError(t, err)
	assert.Equal(t, database.PlanPro, view.Plan)
	assert.True(t, view.IsActive)
	require.NotNil(t, view.StartDate)
	assert.True(t, view.StartDate.Equal(clock.Now()))

	var stored database.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, database.PlanPro, stored.Subscription.Plan)

	_, err = accounts.UpdateSubscription(ctx, user.ID, "platinum")
	assert.ErrorIs(t, err, ErrInvalidPlan)
	_, err = accounts.UpdateSubscription(ctx, 9999, database.PlanEnterprise)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteAccount_RetiresResumes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	resumes := NewResumeService(db)
	accounts := NewAccountService(db)
	user := seedUser(t, db, "ann@example.com")
	other := seedUser(t, db, "bob@example.com")

	mine, err := resumes.Create(ctx, user.ID, validContent("Mine"))
	require.NoError(t, err)
	makePublic(t, resumes, user.ID, mine.ID)
	theirs, err := resumes.Create(ctx, other.ID, validContent("Theirs"))
	require.NoError(t, err)

	require.NoError(t, accounts.DeleteAccount(ctx, user.ID))

	_, err = resumes.GetPublic(ctx, mine.ShareLink, Viewer{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, database.StatusDeleted, storedResume(t, db, mine.ID).Status)
	assert.Equal(t, database.StatusActive, storedResume(t, db, theirs.ID).Status)
	assert.Equal(t, 0, resumeCount(t, db, user.ID))
	assert.Equal(t, 1, resumeCount(t, db, other.ID))

	_, err = accounts.Dashboard(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, accounts.DeleteAccount(ctx, user.ID), ErrUserNotFound)
}

func TestReconcileResumeCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	resumes := NewResumeService(db)
	accounts := NewAccountService(db)
	user := seedUser(t, db, "ann@example.com")

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := resumes.Create(ctx, user.ID, validContent(title))
		require.NoError(t, err)
	}
	require.NoError(t, db.Model(&database.User{}).Where("id = ?", user.ID).UpdateColumn("resume_count", 17).Error)

	count, err := accounts.ReconcileResumeCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, resumeCount(t, db, user.ID))

	_, err = accounts.ReconcileResumeCount(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestReconcileAll_OnlyTouchesDriftedUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	resumes := NewResumeService(db)
	accounts := NewAccountService(db)
	drifted := seedUser(t, db, "drifted@example.com")
	healthy := seedUser(t, db, "healthy@example.com")
	empty := seedUser(t, db, "empty@example.com")

	first, err := resumes.Create(ctx, drifted.ID, validContent("One"))
	require.NoError(t, err)
	_, err = resumes.Create(ctx, drifted.ID, validContent("Two"))
	require.NoError(t, err)
	_, err = resumes.Create(ctx, healthy.ID, validContent("Kept"))
	require.NoError(t, err)

	require.NoError(t, db.Model(&database.Resume{}).Where("id = ?", first.ID).
		Updates(map[string]any{"status": database.StatusDeleted, "deleted_at": time.Now()}).Error)
	require.NoError(t, db.Model(&database.User{}).Where("id = ?", empty.ID).UpdateColumn("resume_count", 4).Error)

	changed, err := accounts.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)
	assert.Equal(t, 1, resumeCount(t, db, drifted.ID))
	assert.Equal(t, 1, resumeCount(t, db, healthy.ID))
	assert.Equal(t, 0, resumeCount(t, db, empty.ID))

	changed, err = accounts.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}
