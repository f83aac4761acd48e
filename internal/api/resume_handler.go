package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MohdFaizan63/Resume-Builder/internal/api/middleware"
	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
	"github.com/MohdFaizan63/Resume-Builder/internal/service"
)

// ResumeHandler 处理当前用户的简历接口。
type ResumeHandler struct {
	resumes *service.ResumeService
}

// NewResumeHandler 构造简历处理器。
func NewResumeHandler(resumes *service.ResumeService) *ResumeHandler {
	return &ResumeHandler{resumes: resumes}
}

// CreateResume 创建简历。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var content resume.Content
	if err := c.ShouldBindJSON(&content); err != nil {
		RespondError(c, bindError(err))
		return
	}

	summary, err := h.resumes.Create(c.Request.Context(), userID, content)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Resume created successfully",
		"resume":  summary,
	})
}

// ListResumes 分页列出当前用户的简历。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	result, err := h.resumes.List(c.Request.Context(), userID, service.ListQuery{
		Page:   page,
		Limit:  limit,
		Sort:   c.Query("sort"),
		Search: c.Query("search"),
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResume 返回简历全文。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, resumeID, ok := ownedTarget(c)
	if !ok {
		return
	}

	doc, err := h.resumes.GetOwned(c.Request.Context(), userID, resumeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume": doc})
}

// UpdateResume 以合并方式更新简历内容。
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	userID, resumeID, ok := ownedTarget(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		BadRequest(c, "failed to read request body")
		return
	}

	doc, err := h.resumes.Update(c.Request.Context(), userID, resumeID, body)
	if err != nil {
		RespondError(c, err)
		return
	}

	middleware.LoggerFromContext(c).Info("resume updated", "resume_id", resumeID, "version", doc.Version)
	c.JSON(http.StatusOK, gin.H{
		"message": "Resume updated successfully",
		"resume":  doc,
	})
}

// DeleteResume 软删除简历。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, resumeID, ok := ownedTarget(c)
	if !ok {
		return
	}

	if err := h.resumes.SoftDelete(c.Request.Context(), userID, resumeID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Resume deleted successfully"})
}

// UpdateSettings 更新分享设置。
func (h *ResumeHandler) UpdateSettings(c *gin.Context) {
	userID, resumeID, ok := ownedTarget(c)
	if !ok {
		return
	}

	var patch service.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, bindError(err))
		return
	}

	settings, err := h.resumes.UpdateSettings(c.Request.Context(), userID, resumeID, patch)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated successfully",
		"settings": settings,
	})
}

// RegenerateShareLink 生成新的分享令牌，旧链接立即失效。
func (h *ResumeHandler) RegenerateShareLink(c *gin.Context) {
	userID, resumeID, ok := ownedTarget(c)
	if !ok {
		return
	}

	token, err := h.resumes.RegenerateShareToken(c.Request.Context(), userID, resumeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Share link generated successfully",
		"shareLink": token,
	})
}

// GetAnalytics 返回计数器与浏览记录。
func (h *ResumeHandler) GetAnalytics(c *gin.Context) {
	userID, resumeID, ok := ownedTarget(c)
	if !ok {
		return
	}

	analytics, err := h.resumes.GetAnalytics(c.Request.Context(), userID, resumeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": analytics})
}

// DuplicateResume 复制简历。
func (h *ResumeHandler) DuplicateResume(c *gin.Context) {
	userID, resumeID, ok := ownedTarget(c)
	if !ok {
		return
	}

	summary, err := h.resumes.Duplicate(c.Request.Context(), userID, resumeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Resume duplicated successfully",
		"resume":  summary,
	})
}

// RecordDownload 记录一次下载。
func (h *ResumeHandler) RecordDownload(c *gin.Context) {
	userID, resumeID, ok := ownedTarget(c)
	if !ok {
		return
	}

	downloads, err := h.resumes.RecordDownload(c.Request.Context(), userID, resumeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloads": downloads})
}

// RecordShare 记录一次分享。
func (h *ResumeHandler) RecordShare(c *gin.Context) {
	userID, resumeID, ok := ownedTarget(c)
	if !ok {
		return
	}

	shares, err := h.resumes.RecordShare(c.Request.Context(), userID, resumeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": shares})
}
