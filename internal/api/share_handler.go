package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MohdFaizan63/Resume-Builder/internal/service"
)

// ResumePasswordHeader carries the password of a protected share link.
const ResumePasswordHeader = "X-Resume-Password"

// ShareHandler 处理公开分享链接的匿名访问。
type ShareHandler struct {
	resumes *service.ResumeService
}

// NewShareHandler 构造分享处理器。
func NewShareHandler(resumes *service.ResumeService) *ShareHandler {
	return &ShareHandler{resumes: resumes}
}

// GetSharedResume 返回公开简历并记录一次浏览。
func (h *ShareHandler) GetSharedResume(c *gin.Context) {
	doc, err := h.resumes.GetPublic(c.Request.Context(), c.Param("shareLink"), viewerFromRequest(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume": doc})
}

// DownloadSharedResume 记录一次公开下载。
func (h *ShareHandler) DownloadSharedResume(c *gin.Context) {
	downloads, err := h.resumes.RecordPublicDownload(c.Request.Context(), c.Param("shareLink"), viewerFromRequest(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloads": downloads})
}

// ShareSharedResume 记录一次公开转发。
func (h *ShareHandler) ShareSharedResume(c *gin.Context) {
	shares, err := h.resumes.RecordPublicShare(c.Request.Context(), c.Param("shareLink"), viewerFromRequest(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

func viewerFromRequest(c *gin.Context) service.Viewer {
	return service.Viewer{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Password:  c.GetHeader(ResumePasswordHeader),
	}
}
