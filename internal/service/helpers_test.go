package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MohdFaizan63/Resume-Builder/internal/database"
	"github.com/MohdFaizan63/Resume-Builder/internal/notify"
	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) database.User {
	t.Helper()
	user := database.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "x",
		Role:         database.RoleUser,
		Subscription: database.Subscription{Plan: database.PlanFree, IsActive: true},
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func validContent(title string) resume.Content {
	return resume.Content{
		Title:    title,
		Template: resume.TemplateClassic,
		PersonalInfo: resume.PersonalInfo{
			FirstName: "Ann",
			LastName:  "Lee",
			Email:     "a@b.com",
		},
	}
}

func resumeCount(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	var user database.User
	require.NoError(t, db.Unscoped().First(&user, userID).Error)
	return user.ResumeCount
}

func storedResume(t *testing.T, db *gorm.DB, id uint) database.Resume {
	t.Helper()
	var r database.Resume
	require.NoError(t, db.First(&r, id).Error)
	return r
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequenceTokens hands out the given tokens, then unique generated ones.
func sequenceTokens(tokens ...string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		if n <= len(tokens) {
			return tokens[n-1]
		}
		return fmt.Sprintf("generated-%d", n)
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	userIDs []uint
	events  []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint, event notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.userIDs = append(n.userIDs, userID)
	n.events = append(n.events, event)
	return nil
}
