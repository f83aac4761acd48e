package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MohdFaizan63/Resume-Builder/internal/api/middleware"
	"github.com/MohdFaizan63/Resume-Builder/internal/service"
)

// AccountHandler 处理账号相关接口。
type AccountHandler struct {
	accounts *service.AccountService
	avatars  ObjectStore
}

// NewAccountHandler 构造账号处理器；avatars 为空时注销账号不清理头像。
func NewAccountHandler(accounts *service.AccountService, avatars ObjectStore) *AccountHandler {
	return &AccountHandler{accounts: accounts, avatars: avatars}
}

// Dashboard 返回账号概览。
func (h *AccountHandler) Dashboard(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	dashboard, err := h.accounts.Dashboard(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

type subscriptionRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// UpdateSubscription 切换订阅计划。
func (h *AccountHandler) UpdateSubscription(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, bindError(err))
		return
	}

	subscription, err := h.accounts.UpdateSubscription(c.Request.Context(), userID, req.Plan)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Subscription updated successfully",
		"subscription": subscription,
	})
}

// DeleteAccount 注销账号并下线其全部简历。
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), userID); err != nil {
		RespondError(c, err)
		return
	}

	logger := middleware.LoggerFromContext(c).With("user_id", userID)
	if h.avatars != nil {
		if err := h.avatars.DeletePrefix(c.Request.Context(), avatarPrefix(userID)); err != nil {
			logger.Warn("purge avatars failed", "error", err)
		}
	}
	logger.Info("account deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
