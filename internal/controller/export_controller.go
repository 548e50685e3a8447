package controller

import (
	"grader_web/internal/service"
	"grader_web/internal/util"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	Service *service.ExportService
	// 本地归档，未启用时为 nil
	Local *service.LocalStorageProvider
}

func NewExportController(svc *service.ExportService, local *service.LocalStorageProvider) *ExportController {
	return &ExportController{Service: svc, Local: local}
}

// @Summary 成绩导出历史
// @Description 需要启用数据库
// @Tags 导出
// @Produce json
// @Param assignmentId query string false "作业ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /api/exports [get]
func (c *ExportController) History(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	exports, total, err := c.Service.History(ctx.Request.Context(), ctx.Query("assignmentId"), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": exports, "total": total})
}

// Archive 下载本地归档的成绩文件，只有导出它的评分者可以访问
func (c *ExportController) Archive(ctx *gin.Context) {
	key := strings.TrimPrefix(ctx.Param("filepath"), "/")
	parts := strings.Split(key, "/")
	if c.Local == nil || len(parts) != 4 || parts[1] != service.ArchiveSegment(util.GetGraderID(ctx)) {
		NotFound(ctx)
		return
	}

	path, err := c.Local.Path(key)
	if err != nil {
		NotFound(ctx)
		return
	}
	ctx.FileAttachment(path, parts[3])
}
