package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MohdFaizan63/Resume-Builder/internal/auth"
	"github.com/MohdFaizan63/Resume-Builder/internal/database"
	"github.com/MohdFaizan63/Resume-Builder/internal/metrics"
	"github.com/MohdFaizan63/Resume-Builder/internal/notify"
	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
)

const (
	defaultHistoryLimit = 100
	maxTokenAttempts    = 5
	maxTitleLength      = 100
	copySuffix          = " (Copy)"
	maxIPLength         = 64
	maxUserAgentLength  = 512
)

// Notifier delivers live events to a resume owner.
type Notifier interface {
	Notify(ctx context.Context, userID uint, event notify.Event) error
}

// Viewer identifies an anonymous reader of a share link.
type Viewer struct {
	IP        string
	UserAgent string
	Password  string
}

// SettingsPatch carries the share settings to change; nil fields keep their value.
type SettingsPatch struct {
	IsPublic      *bool      `json:"isPublic"`
	AllowDownload *bool      `json:"allowDownload"`
	AllowPrint    *bool      `json:"allowPrint"`
	Password      *string    `json:"password"`
	ExpiresAt     *time.Time `json:"expiresAt"`
}

// ResumeService 负责简历的读写、分享与统计。
type ResumeService struct {
	db           *gorm.DB
	notifier     Notifier
	logger       *slog.Logger
	historyLimit int
	defaultLimit int
	maxLimit     int
	now          func() time.Time
	newToken     func() string
}

// ResumeOption customises a ResumeService.
type ResumeOption func(*ResumeService)

// WithNotifier publishes resume.viewed events through n.
func WithNotifier(n Notifier) ResumeOption {
	return func(s *ResumeService) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ResumeOption {
	return func(s *ResumeService) { s.logger = logger }
}

// WithHistoryLimit caps the stored view history per resume.
func WithHistoryLimit(n int) ResumeOption {
	return func(s *ResumeService) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithPageSize sets the default and maximum listing page size.
func WithPageSize(defaultLimit, maxLimit int) ResumeOption {
	return func(s *ResumeService) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ResumeOption {
	return func(s *ResumeService) { s.now = now }
}

// WithTokenGenerator replaces the share token source.
func WithTokenGenerator(fn func() string) ResumeOption {
	return func(s *ResumeService) { s.newToken = fn }
}

// NewResumeService 构造简历服务。
func NewResumeService(db *gorm.DB, opts ...ResumeOption) *ResumeService {
	s := &ResumeService{
		db:           db,
		logger:       slog.Default(),
		historyLimit: defaultHistoryLimit,
		defaultLimit: defaultPageLimit,
		maxLimit:     maxPageLimit,
		now:          time.Now,
		newToken:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new resume for ownerID.
func (s *ResumeService) Create(ctx context.Context, ownerID uint, content resume.Content) (*Summary, error) {
	content.Normalize()
	if err := resume.Validate(content); err != nil {
		return nil, err
	}

	model := database.Resume{
		UserID:  ownerID,
		Version: 1,
		Status:  database.StatusActive,
		Settings: database.ShareSettings{
			AllowDownload: true,
			AllowPrint:    true,
		},
	}
	model.SetContent(content)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, ownerID); err != nil {
			return err
		}
		if err := s.insertWithFreshToken(tx, &model); err != nil {
			return err
		}
		return adjustResumeCount(tx, ownerID, 1)
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveResumeEvent(metrics.EventCreated)
	return newSummary(&model), nil
}

// List returns one page of the owner's active resumes.
func (s *ResumeService) List(ctx context.Context, ownerID uint, q ListQuery) (*Page, error) {
	q = q.normalize(s.defaultLimit, s.maxLimit)

	query := s.db.WithContext(ctx).Model(&database.Resume{}).
		Where("user_id = ? AND status = ?", ownerID, database.StatusActive)
	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		query = query.Where(
			"(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern,
		)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count resumes: %w", err)
	}

	var rows []database.Resume
	if err := query.Order(q.orderClause()).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}

	items := make([]ListItem, 0, len(rows))
	for i := range rows {
		items = append(items, newListItem(&rows[i]))
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	if totalPages == 0 {
		totalPages = 1
	}
	return &Page{
		Resumes: items,
		Pagination: Pagination{
			CurrentPage: q.Page,
			TotalPages:  totalPages,
			TotalDocs:   total,
			HasNextPage: q.Page < totalPages,
			HasPrevPage: q.Page > 1,
		},
	}, nil
}

// GetOwned returns the full document when ownerID owns an active resume id.
func (s *ResumeService) GetOwned(ctx context.Context, ownerID, id uint) (*Document, error) {
	r, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return newDocument(r, s.now()), nil
}

// Update merges patch onto the stored content and bumps the version.
func (s *ResumeService) Update(ctx context.Context, ownerID, id uint, patch []byte) (*Document, error) {
	current, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	content, err := applyPatch(current.Content(), patch)
	if err != nil {
		return nil, err
	}

	expected, err := patchVersion(patch)
	if err != nil {
		return nil, err
	}
	if expected != nil && *expected != current.Version {
		metrics.ObserveVersionConflict()
		return nil, ErrVersionConflict
	}
	content.Normalize()
	if err := resume.Validate(content); err != nil {
		return nil, err
	}

	if err := s.compareAndUpdate(ctx, current, database.ContentColumns(content)); err != nil {
		return nil, err
	}

	metrics.ObserveResumeEvent(metrics.EventUpdated)
	return s.GetOwned(ctx, ownerID, id)
}

// SoftDelete marks the resume deleted and decrements the owner's counter.
func (s *ResumeService) SoftDelete(ctx context.Context, ownerID, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&database.Resume{}).
			Where("id = ? AND user_id = ? AND status = ?", id, ownerID, database.StatusActive).
			Updates(map[string]any{
				"status":     database.StatusDeleted,
				"deleted_at": s.now(),
				"version":    gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("delete resume %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return adjustResumeCount(tx, ownerID, -1)
	})
	if err != nil {
		return err
	}

	metrics.ObserveResumeEvent(metrics.EventDeleted)
	return nil
}

// GetPublic serves a share link and records the view.
func (s *ResumeService) GetPublic(ctx context.Context, token string, viewer Viewer) (*PublicResume, error) {
	r, err := s.loadPublic(ctx, token, viewer)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var views int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Resume{}).Where("id = ?", r.ID).
			UpdateColumns(map[string]any{
				"analytics_views":       gorm.Expr("analytics_views + 1"),
				"analytics_last_viewed": now,
			}).Error; err != nil {
			return fmt.Errorf("increment views: %w", err)
		}

		view := database.ResumeView{
			ResumeID:  r.ID,
			ViewedAt:  now,
			IP:        truncate(viewer.IP, maxIPLength),
			UserAgent: truncate(viewer.UserAgent, maxUserAgentLength),
		}
		if err := tx.Create(&view).Error; err != nil {
			return fmt.Errorf("record view: %w", err)
		}

		newest := tx.Model(&database.ResumeView{}).Select("id").
			Where("resume_id = ?", r.ID).
			Order("id DESC").
			Limit(s.historyLimit)
		if err := tx.Where("resume_id = ? AND id NOT IN (?)", r.ID, newest).
			Delete(&database.ResumeView{}).Error; err != nil {
			return fmt.Errorf("trim view history: %w", err)
		}

		return tx.Model(&database.Resume{}).Select("analytics_views").
			Where("id = ?", r.ID).Scan(&views).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveResumeEvent(metrics.EventView)
	s.notifyView(ctx, r, views, now)
	return newPublicResume(r, views, now), nil
}

// UpdateSettings merges the provided share settings.
func (s *ResumeService) UpdateSettings(ctx context.Context, ownerID, id uint, patch SettingsPatch) (*SettingsView, error) {
	current, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	settings := current.Settings
	cols := map[string]any{}
	if patch.IsPublic != nil {
		settings.IsPublic = *patch.IsPublic
		cols["settings_is_public"] = settings.IsPublic
	}
	if patch.AllowDownload != nil {
		settings.AllowDownload = *patch.AllowDownload
		cols["settings_allow_download"] = settings.AllowDownload
	}
	if patch.AllowPrint != nil {
		settings.AllowPrint = *patch.AllowPrint
		cols["settings_allow_print"] = settings.AllowPrint
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := auth.HashPassword(*patch.Password)
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, resume.NewValidationError("password", "password cannot be more than 72 bytes")
		}
		if err != nil {
			return nil, err
		}
		settings.PasswordHash = hash
		cols["settings_password_hash"] = hash
	}
	if patch.ExpiresAt != nil {
		expiresAt := *patch.ExpiresAt
		settings.ExpiresAt = &expiresAt
		cols["settings_expires_at"] = expiresAt
	}

	if len(cols) > 0 {
		if err := s.compareAndUpdate(ctx, current, cols); err != nil {
			return nil, err
		}
	}

	view := newSettingsView(settings)
	return &view, nil
}

// RegenerateShareToken replaces the share token; the old one stops resolving.
func (s *ResumeService) RegenerateShareToken(ctx context.Context, ownerID, id uint) (string, error) {
	current, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token := s.newToken()
		err := s.compareAndUpdate(ctx, current, map[string]any{"share_token": token})
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}
	}
	return "", errShareTokenExhausted
}

// RecordDownload counts an owner download.
func (s *ResumeService) RecordDownload(ctx context.Context, ownerID, id uint) (int64, error) {
	n, err := s.incrementOwned(ctx, ownerID, id, "analytics_downloads")
	if err == nil {
		metrics.ObserveResumeEvent(metrics.EventDownload)
	}
	return n, err
}

// RecordShare counts an owner share.
func (s *ResumeService) RecordShare(ctx context.Context, ownerID, id uint) (int64, error) {
	n, err := s.incrementOwned(ctx, ownerID, id, "analytics_shares")
	if err == nil {
		metrics.ObserveResumeEvent(metrics.EventShare)
	}
	return n, err
}

// RecordPublicDownload counts a download through a share link.
func (s *ResumeService) RecordPublicDownload(ctx context.Context, token string, viewer Viewer) (int64, error) {
	r, err := s.loadPublic(ctx, token, viewer)
	if err != nil {
		return 0, err
	}
	if !r.Settings.AllowDownload {
		metrics.ObservePublicAccessDenied("download_disabled")
		return 0, ErrDownloadDisabled
	}
	n, err := s.increment(ctx, r.ID, "analytics_downloads")
	if err == nil {
		metrics.ObserveResumeEvent(metrics.EventDownload)
	}
	return n, err
}

// RecordPublicShare counts a share through a share link.
func (s *ResumeService) RecordPublicShare(ctx context.Context, token string, viewer Viewer) (int64, error) {
	r, err := s.loadPublic(ctx, token, viewer)
	if err != nil {
		return 0, err
	}
	n, err := s.increment(ctx, r.ID, "analytics_shares")
	if err == nil {
		metrics.ObserveResumeEvent(metrics.EventShare)
	}
	return n, err
}

// Duplicate copies content and settings into a new resume titled "<title> (Copy)".
func (s *ResumeService) Duplicate(ctx context.Context, ownerID, id uint) (*Summary, error) {
	src, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	content := src.Content()
	content.Title = copyTitle(content.Title)

	clone := database.Resume{
		UserID:   ownerID,
		Version:  1,
		Status:   database.StatusActive,
		Settings: src.Settings,
	}
	clone.SetContent(content)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.insertWithFreshToken(tx, &clone); err != nil {
			return err
		}
		return adjustResumeCount(tx, ownerID, 1)
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveResumeEvent(metrics.EventDuplicated)
	return newSummary(&clone), nil
}

// GetAnalytics returns counters and the view history, oldest first.
func (s *ResumeService) GetAnalytics(ctx context.Context, ownerID, id uint) (*AnalyticsView, error) {
	r, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	var views []database.ResumeView
	if err := s.db.WithContext(ctx).
		Where("resume_id = ?", r.ID).
		Order("id ASC").
		Find(&views).Error; err != nil {
		return nil, fmt.Errorf("load view history: %w", err)
	}

	history := make([]ViewEntry, 0, len(views))
	for _, v := range views {
		history = append(history, ViewEntry{ViewedAt: v.ViewedAt, IP: v.IP, UserAgent: v.UserAgent})
	}
	return &AnalyticsView{Counters: newCounters(r.Analytics), ViewHistory: history}, nil
}

func (s *ResumeService) loadOwned(ctx context.Context, ownerID, id uint) (*database.Resume, error) {
	var r database.Resume
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", id, ownerID, database.StatusActive).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load resume %d: %w", id, err)
	}
	return &r, nil
}

func (s *ResumeService) loadPublic(ctx context.Context, token string, viewer Viewer) (*database.Resume, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotFound
	}

	var r database.Resume
	err := s.db.WithContext(ctx).
		Where("share_token = ? AND settings_is_public = ? AND status = ?", token, true, database.StatusActive).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.ObservePublicAccessDenied("not_found")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load shared resume: %w", err)
	}

	if r.Settings.ExpiresAt != nil && s.now().After(*r.Settings.ExpiresAt) {
		metrics.ObservePublicAccessDenied("expired")
		return nil, ErrExpired
	}
	if r.Settings.PasswordHash != "" && !auth.CheckPasswordHash(viewer.Password, r.Settings.PasswordHash) {
		metrics.ObservePublicAccessDenied("password")
		return nil, ErrPasswordRequired
	}
	return &r, nil
}

// compareAndUpdate writes cols only if the row still carries the version that was read.
func (s *ResumeService) compareAndUpdate(ctx context.Context, current *database.Resume, cols map[string]any) error {
	cols["version"] = gorm.Expr("version + 1")
	res := s.db.WithContext(ctx).Model(&database.Resume{}).
		Where("id = ? AND status = ? AND version = ?", current.ID, database.StatusActive, current.Version).
		Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("update resume %d: %w", current.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		metrics.ObserveVersionConflict()
		return ErrVersionConflict
	}
	return nil
}

func (s *ResumeService) incrementOwned(ctx context.Context, ownerID, id uint, column string) (int64, error) {
	if _, err := s.loadOwned(ctx, ownerID, id); err != nil {
		return 0, err
	}
	return s.increment(ctx, id, column)
}

func (s *ResumeService) increment(ctx context.Context, id uint, column string) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Resume{}).Where("id = ?", id).
			UpdateColumn(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return fmt.Errorf("increment %s: %w", column, err)
		}
		return tx.Model(&database.Resume{}).Select(column).Where("id = ?", id).Scan(&value).Error
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (s *ResumeService) insertWithFreshToken(tx *gorm.DB, model *database.Resume) error {
	const savepoint = "share_token"
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		model.ShareToken = s.newToken()
		if err := tx.SavePoint(savepoint).Error; err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}
		err := tx.Create(model).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("insert resume: %w", err)
		}
		if err := tx.RollbackTo(savepoint).Error; err != nil {
			return fmt.Errorf("rollback savepoint: %w", err)
		}
		model.ID = 0
	}
	return errShareTokenExhausted
}

func (s *ResumeService) notifyView(ctx context.Context, r *database.Resume, views int64, at time.Time) {
	if s.notifier == nil {
		return
	}
	event := notify.Event{
		Type:       notify.TypeResumeViewed,
		ResumeID:   r.ID,
		Views:      views,
		OccurredAt: at,
	}
	if err := s.notifier.Notify(ctx, r.UserID, event); err != nil {
		s.logger.Warn("notify resume owner failed",
			slog.Uint64("resume_id", uint64(r.ID)),
			slog.Any("error", err),
		)
	}
}

func requireUser(tx *gorm.DB, userID uint) error {
	var user database.User
	err := tx.Select("id").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOwnerNotFound
	}
	if err != nil {
		return fmt.Errorf("load owner %d: %w", userID, err)
	}
	return nil
}

// adjustResumeCount shifts the owner's counter by delta without going below zero.
func adjustResumeCount(tx *gorm.DB, userID uint, delta int) error {
	expr := gorm.Expr("resume_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN resume_count + ? < 0 THEN 0 ELSE resume_count + ? END", delta, delta)
	}
	if err := tx.Model(&database.User{}).Where("id = ?", userID).
		UpdateColumn("resume_count", expr).Error; err != nil {
		return fmt.Errorf("adjust resume count of user %d: %w", userID, err)
	}
	return nil
}

func patchVersion(patch []byte) (*int, error) {
	var meta struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(patch, &meta); err != nil {
		return nil, resume.NewValidationError("version", "must be an integer")
	}
	return meta.Version, nil
}

func copyTitle(title string) string {
	limit := maxTitleLength - utf8.RuneCountInString(copySuffix)
	if utf8.RuneCountInString(title) > limit {
		title = strings.TrimSpace(string([]rune(title)[:limit]))
	}
	return title + copySuffix
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return strings.ToValidUTF8(value[:limit], "")
}
