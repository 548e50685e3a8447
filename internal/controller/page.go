package controller

import (
	"grader_web/internal/util"
	"grader_web/pkg/logger"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TemplateFuncs 页面模板使用的函数
var TemplateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// renderError 页面请求出错时渲染一条阻塞性的错误提示
func renderError(ctx *gin.Context, err error) {
	code, msg := util.UserMessage(err)
	if code == http.StatusInternalServerError {
		logger.Log.Error("Page request failed", zap.Error(err), zap.String("path", ctx.Request.URL.Path))
	}
	ctx.HTML(code, "error.html", gin.H{
		"Title":   "Error",
		"Message": msg,
	})
}

// NotFound 未匹配的路由，API 返回 JSON，页面返回 404 页面
func NotFound(ctx *gin.Context) {
	if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
		util.NotFound(ctx)
		return
	}
	ctx.HTML(http.StatusNotFound, "not_found.html", gin.H{"Title": "Page not found"})
}

func gradingPageURL(assignmentID string) string {
	return "/assignment/?id=" + url.QueryEscape(assignmentID)
}
