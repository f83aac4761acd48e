package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
)

// ListTemplates 返回模板目录，支持 ?category= 过滤。
func ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": resume.Templates(c.Query("category"))})
}
