package controller

import (
	"context"
	"errors"
	"grader_web/internal/model"
	"grader_web/internal/service"
	"grader_web/internal/util"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type GradingController struct {
	Service *service.GradingService
}

func NewGradingController(svc *service.GradingService) *GradingController {
	return &GradingController{Service: svc}
}

type ScoresReq struct {
	Scores map[int]float64 `json:"scores" binding:"required"`
}

type SeekReq struct {
	Index int `json:"index"`
}

// GradingPage 评分页，?id= 为作业 id（兼容旧链接的 ?forumId=）；?similar= 为要查询相似答案的问题下标
func (c *GradingController) GradingPage(ctx *gin.Context) {
	assignmentID := ctx.Query("id")
	if assignmentID == "" {
		assignmentID = ctx.Query("forumId")
	}
	if assignmentID == "" {
		renderError(ctx, util.NewValidationError("Missing assignment id"))
		return
	}

	reqCtx := ctx.Request.Context()
	graderID := util.GetGraderID(ctx)
	view, err := c.Service.Open(reqCtx, graderID, assignmentID)
	if errors.Is(err, util.ErrNoAnswers) {
		ctx.HTML(http.StatusOK, "grading.html", gin.H{
			"Title":        "Grading",
			"AssignmentID": assignmentID,
			"Empty":        true,
		})
		return
	}
	if err != nil {
		renderError(ctx, err)
		return
	}

	data := gin.H{
		"Title":        view.AssignmentName,
		"AssignmentID": assignmentID,
		"View":         view,
	}
	if raw := ctx.Query("similar"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil {
			q = -1
		}
		data["SimilarQuestion"] = q
		similar, err := c.Service.SimilarAnswers(reqCtx, graderID, assignmentID, view.AnswerID, q, 0)
		if err != nil {
			_, msg := util.UserMessage(err)
			data["SimilarError"] = msg
		} else {
			data["Similar"] = similar
		}
	}
	ctx.HTML(http.StatusOK, "grading.html", data)
}

// SaveScores 保存当前答案的分数表单，action 为 prev / next 时保存后翻页
func (c *GradingController) SaveScores(ctx *gin.Context) {
	assignmentID := ctx.Param("id")
	reqCtx := ctx.Request.Context()
	graderID := util.GetGraderID(ctx)

	scores, err := parseScoreForm(ctx)
	if err != nil {
		renderError(ctx, err)
		return
	}
	if len(scores) > 0 {
		answerID := model.AnswerID(ctx.PostForm("answerId"))
		if _, err := c.Service.SetScores(reqCtx, graderID, assignmentID, answerID, scores); err != nil {
			renderError(ctx, err)
			return
		}
	}

	switch ctx.PostForm("action") {
	case "next":
		_, err = c.Service.Next(reqCtx, graderID, assignmentID)
	case "prev":
		_, err = c.Service.Prev(reqCtx, graderID, assignmentID)
	}
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, gradingPageURL(assignmentID))
}

// parseScoreForm 读取 score_<问题下标> 字段，空值表示未填写
func parseScoreForm(ctx *gin.Context) (map[int]float64, error) {
	if err := ctx.Request.ParseForm(); err != nil {
		return nil, util.NewValidationError("Invalid form")
	}
	scores := make(map[int]float64)
	for key, values := range ctx.Request.PostForm {
		idxStr, ok := strings.CutPrefix(key, "score_")
		if !ok || len(values) == 0 {
			continue
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, util.NewValidationError("Invalid score field %q", key)
		}
		raw := strings.TrimSpace(values[0])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, util.NewValidationError("Score for question %d must be a number", idx+1)
		}
		scores[idx] = v
	}
	return scores, nil
}

func (c *GradingController) NextPage(ctx *gin.Context) {
	c.navigatePage(ctx, c.Service.Next)
}

func (c *GradingController) PrevPage(ctx *gin.Context) {
	c.navigatePage(ctx, c.Service.Prev)
}

// SeekPage 从相似答案列表跳转
func (c *GradingController) SeekPage(ctx *gin.Context) {
	index, err := strconv.Atoi(ctx.PostForm("index"))
	if err != nil {
		renderError(ctx, util.NewValidationError("Invalid answer index"))
		return
	}
	assignmentID := ctx.Param("id")
	if _, err := c.Service.Seek(ctx.Request.Context(), util.GetGraderID(ctx), assignmentID, index); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, gradingPageURL(assignmentID))
}

type navigateFunc func(ctx context.Context, graderID, assignmentID string) (*service.GradingView, error)

func (c *GradingController) navigatePage(ctx *gin.Context, fn navigateFunc) {
	assignmentID := ctx.Param("id")
	if _, err := fn(ctx.Request.Context(), util.GetGraderID(ctx), assignmentID); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, gradingPageURL(assignmentID))
}

// ExportPage 下载 ${assignmentName}-grades.json
func (c *GradingController) ExportPage(ctx *gin.Context) {
	res, err := c.Service.Export(ctx.Request.Context(), util.GetGraderID(ctx), ctx.Param("id"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	writeAttachment(ctx, res)
}

func writeAttachment(ctx *gin.Context, res *service.ExportResult) {
	ctx.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	ctx.Data(http.StatusOK, util.MimeJSON, res.Data)
}

// @Summary 打开评分会话
// @Description 已有会话时直接返回当前状态，否则从后端拉取答案和推理结果
// @Tags 评分
// @Produce json
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=service.GradingView}
// @Failure 404 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/assignments/{id}/grading [get]
func (c *GradingController) View(ctx *gin.Context) {
	view, err := c.Service.Open(ctx.Request.Context(), util.GetGraderID(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 关闭评分会话
// @Description 丢弃会话，未导出的成绩随之丢失
// @Tags 评分
// @Produce json
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response
// @Router /api/assignments/{id}/grading [delete]
func (c *GradingController) Close(ctx *gin.Context) {
	if err := c.Service.Close(ctx.Request.Context(), util.GetGraderID(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 保存分数
// @Tags 评分
// @Accept json
// @Produce json
// @Param id path string true "作业ID"
// @Param answerId path string true "答案ID"
// @Param body body ScoresReq true "问题下标到分数的映射"
// @Success 200 {object} util.Response{data=service.GradingView}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/assignments/{id}/answers/{answerId}/scores [put]
func (c *GradingController) PutScores(ctx *gin.Context) {
	var req ScoresReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.SetScores(ctx.Request.Context(), util.GetGraderID(ctx), ctx.Param("id"),
		model.AnswerID(ctx.Param("answerId")), req.Scores)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 下一个答案
// @Tags 评分
// @Produce json
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=service.GradingView}
// @Router /api/assignments/{id}/next [post]
func (c *GradingController) Next(ctx *gin.Context) {
	c.navigate(ctx, c.Service.Next)
}

// @Summary 上一个答案
// @Tags 评分
// @Produce json
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=service.GradingView}
// @Router /api/assignments/{id}/prev [post]
func (c *GradingController) Prev(ctx *gin.Context) {
	c.navigate(ctx, c.Service.Prev)
}

// @Summary 跳转到指定答案
// @Tags 评分
// @Accept json
// @Produce json
// @Param id path string true "作业ID"
// @Param body body SeekReq true "答案下标（从 0 开始）"
// @Success 200 {object} util.Response{data=service.GradingView}
// @Router /api/assignments/{id}/seek [post]
func (c *GradingController) Seek(ctx *gin.Context) {
	var req SeekReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.Service.Seek(ctx.Request.Context(), util.GetGraderID(ctx), ctx.Param("id"), req.Index)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

func (c *GradingController) navigate(ctx *gin.Context, fn navigateFunc) {
	view, err := fn(ctx.Request.Context(), util.GetGraderID(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 当前成绩
// @Description 与导出文件格式相同，未评分的答案为 null
// @Tags 评分
// @Produce json
// @Param id path string true "作业ID"
// @Param download query bool false "以附件形式下载"
// @Success 200 {object} util.Response
// @Router /api/assignments/{id}/grades [get]
func (c *GradingController) Grades(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	graderID := util.GetGraderID(ctx)
	assignmentID := ctx.Param("id")

	if download, _ := strconv.ParseBool(ctx.Query("download")); download {
		res, err := c.Service.Export(reqCtx, graderID, assignmentID)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		writeAttachment(ctx, res)
		return
	}

	report, err := c.Service.Grades(reqCtx, graderID, assignmentID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// @Summary 相似答案
// @Tags 评分
// @Produce json
// @Param id path string true "作业ID"
// @Param answerId path string true "答案ID"
// @Param question query int true "问题下标"
// @Param threshold query number false "相似度阈值，默认使用配置值"
// @Success 200 {object} util.Response{data=[]service.SimilarAnswer}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/assignments/{id}/answers/{answerId}/similar [get]
func (c *GradingController) Similar(ctx *gin.Context) {
	question, err := strconv.Atoi(ctx.Query("question"))
	if err != nil {
		util.BadRequest(ctx, "question must be an integer")
		return
	}
	var threshold float64
	if raw := ctx.Query("threshold"); raw != "" {
		if threshold, err = strconv.ParseFloat(raw, 64); err != nil || threshold < 0 || threshold > 1 {
			util.BadRequest(ctx, "threshold must be between 0 and 1")
			return
		}
	}

	similar, err := c.Service.SimilarAnswers(ctx.Request.Context(), util.GetGraderID(ctx), ctx.Param("id"),
		model.AnswerID(ctx.Param("answerId")), question, threshold)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, similar)
}

// @Summary 删除推理结果
// @Description 删除后端保存的推理结果，并丢弃当前评分会话
// @Tags 评分
// @Produce json
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/assignments/{id}/inferences [delete]
func (c *GradingController) DeleteInferences(ctx *gin.Context) {
	if err := c.Service.DeleteInferences(ctx.Request.Context(), util.GetGraderID(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
