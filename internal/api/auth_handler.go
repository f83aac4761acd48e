package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MohdFaizan63/Resume-Builder/internal/api/middleware"
	"github.com/MohdFaizan63/Resume-Builder/internal/auth"
	"github.com/MohdFaizan63/Resume-Builder/internal/config"
	"github.com/MohdFaizan63/Resume-Builder/internal/database"
	"github.com/MohdFaizan63/Resume-Builder/internal/errcode"
	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
)

const (
	refreshTokenCookieName         = "refresh_token"
	refreshTokenBlacklistKeyPrefix = "auth:refresh:blacklist:"
)

// AuthHandler 处理注册、登录、刷新与退出。
type AuthHandler struct {
	db           *gorm.DB
	authService  *auth.AuthService
	redis        redis.UniversalClient
	logger       *slog.Logger
	logins       *loginGuard
	cookieDomain string
	now          func() time.Time
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, redisClient redis.UniversalClient, logger *slog.Logger, authCfg config.AuthConfig, cookieDomain string) *AuthHandler {
	return &AuthHandler{
		db:          db,
		authService: authService,
		redis:       redisClient,
		logger:      logger,
		logins: &loginGuard{
			redis:         redisClient,
			perHour:       authCfg.LoginRateLimitPerHour,
			lockThreshold: authCfg.LoginLockThreshold,
			lockTTL:       authCfg.LoginLockTTL,
		},
		cookieDomain: cookieDomain,
		now:          time.Now,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        *userSummary `json:"user,omitempty"`
}

type userSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register 创建新用户账号，并直接签发令牌。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, bindError(err))
		return
	}

	email := normalizeEmail(req.Email)
	if !resume.ValidEmail(email) {
		RespondError(c, resume.NewValidationError("email", "please provide a valid email"))
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("email", email))

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	now := h.now()
	user := database.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         database.RoleUser,
		Subscription: database.Subscription{
			Plan:      database.PlanFree,
			IsActive:  true,
			StartDate: &now,
		},
		LastLogin: &now,
	}

	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Info("register conflict: email already registered")
			Conflict(c, "email already registered")
			return
		}
		logger.Error("create user failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	tokenPair, err := h.authService.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		logger.Error("generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	h.replyWithTokenPair(c, http.StatusCreated, tokenPair, &user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验口令并返回 Token。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, bindError(err))
		return
	}

	email := normalizeEmail(req.Email)
	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("email", email))

	if err := h.logins.admit(ctx, c.ClientIP(), email, h.now()); err != nil {
		logger.Info("login throttled", slog.Any("reason", err))
		Error(c, http.StatusTooManyRequests, errcode.TooManyRequests, err.Error())
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("login failed: user not found")
			h.logins.fail(ctx, email)
			Unauthorized(c)
			return
		}
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !h.authService.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		h.logins.fail(ctx, email)
		Unauthorized(c)
		return
	}

	h.logins.reset(ctx, email)

	now := h.now()
	columns := map[string]any{"last_login": now}
	if auth.NeedsRehash(user.PasswordHash) {
		if rehashed, err := auth.HashPassword(req.Password); err == nil {
			columns["password_hash"] = rehashed
		}
	}
	if err := h.db.WithContext(ctx).Model(&user).UpdateColumns(columns).Error; err != nil {
		logger.Warn("update login columns failed", slog.Any("error", err))
	}

	tokenPair, err := h.authService.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		logger.Error("generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.replyWithTokenPair(c, http.StatusOK, tokenPair, &user)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh 校验刷新令牌并颁发新的 TokenPair，旧令牌随即作废。
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := h.extractRefreshToken(c)
	if refreshToken == "" {
		Unauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	claims, ok := h.refreshClaims(c, refreshToken)
	if !ok {
		return
	}

	key := refreshTokenBlacklistKeyPrefix + claims.ID
	if err := h.redis.Get(ctx, key).Err(); err == nil {
		logger.Info("refresh token revoked", slog.String("jti", claims.ID))
		Unauthorized(c)
		return
	} else if !errors.Is(err, redis.Nil) {
		logger.Error("refresh token blacklist lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		logger.Info("refresh user not found", slog.Any("error", err))
		Unauthorized(c)
		return
	}

	tokenPair, err := h.authService.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		logger.Error("refresh generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if err := h.revokeRefreshToken(ctx, key, claims.ExpiresAt); err != nil {
		logger.Error("refresh revoke old token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.replyWithTokenPair(c, http.StatusOK, tokenPair, nil)
}

// Logout 将刷新令牌加入黑名单，防止继续使用。
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken := h.extractRefreshToken(c)
	if refreshToken == "" {
		BadRequest(c, "refresh token missing")
		return
	}

	claims, ok := h.refreshClaims(c, refreshToken)
	if !ok {
		return
	}

	key := refreshTokenBlacklistKeyPrefix + claims.ID
	if err := h.revokeRefreshToken(c.Request.Context(), key, claims.ExpiresAt); err != nil {
		h.loggerFromContext(c).Error("logout revoke token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	http.SetCookie(c.Writer, h.refreshCookie(c, "", -1))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// refreshClaims validates a refresh token and writes 401 itself when it is unusable.
func (h *AuthHandler) refreshClaims(c *gin.Context, token string) (*auth.TokenClaims, bool) {
	logger := h.loggerFromContext(c)
	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		logger.Info("refresh token invalid", slog.Any("error", err))
		Unauthorized(c)
		return nil, false
	}
	if claims.TokenType != auth.TokenTypeRefresh || claims.ID == "" {
		logger.Info("refresh token rejected", slog.String("token_type", claims.TokenType))
		Unauthorized(c)
		return nil, false
	}
	return claims, true
}

func (h *AuthHandler) replyWithTokenPair(c *gin.Context, status int, tokenPair auth.TokenPair, user *database.User) {
	maxAge := int(h.authService.RefreshTokenTTL().Seconds())
	if maxAge <= 0 {
		maxAge = int(time.Hour.Seconds())
	}
	http.SetCookie(c.Writer, h.refreshCookie(c, tokenPair.RefreshToken, maxAge))

	resp := tokenResponse{
		AccessToken: tokenPair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
	}
	if user != nil {
		resp.User = &userSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
	}
	c.JSON(status, resp)
}

func (h *AuthHandler) refreshCookie(c *gin.Context, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   isHTTPSRequest(c),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Domain:   strings.TrimSpace(h.cookieDomain),
	}
}

func (h *AuthHandler) extractRefreshToken(c *gin.Context) string {
	if token, err := c.Cookie(refreshTokenCookieName); err == nil && token != "" {
		return token
	}

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) revokeRefreshToken(ctx context.Context, key string, expiresAt *jwt.NumericDate) error {
	ttl := h.authService.RefreshTokenTTL()
	if expiresAt != nil {
		ttl = time.Until(expiresAt.Time)
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return h.redis.Set(ctx, key, "revoked", ttl).Err()
}

func (h *AuthHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if _, ok := c.Get("slogLogger"); ok || h.logger == nil {
		return middleware.LoggerFromContext(c)
	}
	return h.logger
}

func isHTTPSRequest(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.Request.Header.Get("X-Forwarded-Proto"), "https")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
