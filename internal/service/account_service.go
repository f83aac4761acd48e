package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/MohdFaizan63/Resume-Builder/internal/database"
)

// DashboardStats summarises an account.
type DashboardStats struct {
	TotalResumes       int        `json:"totalResumes"`
	SubscriptionPlan   string     `json:"subscriptionPlan"`
	SubscriptionActive bool       `json:"subscriptionActive"`
	MemberSince        time.Time  `json:"memberSince"`
	LastLogin          *time.Time `json:"lastLogin"`
}

// AccountUser is the public part of a user row.
type AccountUser struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

// Dashboard is returned by AccountService.Dashboard.
type Dashboard struct {
	Stats DashboardStats `json:"stats"`
	User  AccountUser    `json:"user"`
}

// SubscriptionView is returned after a plan change.
type SubscriptionView struct {
	Plan      string     `json:"plan"`
	IsActive  bool       `json:"isActive"`
	StartDate *time.Time `json:"startDate"`
}

// AccountService 负责账号级别的统计与维护。
type AccountService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAccountService 构造账号服务。
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db, now: time.Now}
}

// Dashboard returns the account summary of userID.
func (s *AccountService) Dashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Stats: DashboardStats{
			TotalResumes:       user.ResumeCount,
			SubscriptionPlan:   user.Subscription.Plan,
			SubscriptionActive: user.Subscription.IsActive,
			MemberSince:        user.CreatedAt,
			LastLogin:          user.LastLogin,
		},
		User: AccountUser{
			ID:              user.ID,
			Name:            user.Name,
			Email:           user.Email,
			Role:            user.Role,
			IsEmailVerified: user.EmailVerified,
		},
	}, nil
}

// ValidPlan reports whether plan is a known subscription plan.
func ValidPlan(plan string) bool {
	switch plan {
	case database.PlanFree, database.PlanPro, database.PlanEnterprise:
		return true
	}
	return false
}

// UpdateSubscription switches the user to plan and restarts the subscription.
func (s *AccountService) UpdateSubscription(ctx context.Context, userID uint, plan string) (*SubscriptionView, error) {
	plan = strings.ToLower(strings.TrimSpace(plan))
	if !ValidPlan(plan) {
		return nil, ErrInvalidPlan
	}

	now := s.now()
	res := s.db.WithContext(ctx).Model(&database.User{}).Where("id = ?", userID).
		Updates(map[string]any{
			"subscription_plan":       plan,
			"subscription_is_active":  true,
			"subscription_start_date": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update subscription of user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return &SubscriptionView{Plan: plan, IsActive: true, StartDate: &now}, nil
}

// DeleteAccount soft-deletes the user and retires all of their resumes.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Resume{}).
			Where("user_id = ? AND status = ?", userID, database.StatusActive).
			Updates(map[string]any{
				"status":     database.StatusDeleted,
				"deleted_at": s.now(),
				"version":    gorm.Expr("version + 1"),
			}).Error; err != nil {
			return fmt.Errorf("retire resumes of user %d: %w", userID, err)
		}

		if err := tx.Model(&database.User{}).Where("id = ?", userID).
			UpdateColumn("resume_count", 0).Error; err != nil {
			return fmt.Errorf("reset resume count: %w", err)
		}

		res := tx.Delete(&database.User{}, userID)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// ReconcileResumeCount recomputes resume_count of one user from the active resumes.
func (s *AccountService) ReconcileResumeCount(ctx context.Context, userID uint) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.Resume{}).
		Where("user_id = ? AND status = ?", userID, database.StatusActive).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count resumes of user %d: %w", userID, err)
	}

	res := s.db.WithContext(ctx).Model(&database.User{}).Where("id = ?", userID).
		UpdateColumn("resume_count", count)
	if res.Error != nil {
		return 0, fmt.Errorf("store resume count of user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}
	return int(count), nil
}

// ReconcileAll fixes every drifted resume_count and returns how many users changed.
func (s *AccountService) ReconcileAll(ctx context.Context) (int64, error) {
	active := s.db.Model(&database.Resume{}).
		Select("COUNT(*)").
		Where("resumes.user_id = users.id AND resumes.status = ?", database.StatusActive)

	res := s.db.WithContext(ctx).Model(&database.User{}).
		Where("resume_count <> (?)", active).
		UpdateColumn("resume_count", gorm.Expr("(?)", active))
	if res.Error != nil {
		return 0, fmt.Errorf("reconcile resume counts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *AccountService) loadUser(ctx context.Context, userID uint) (*database.User, error) {
	var user database.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return &user, nil
}
