package controller

import (
	"grader_web/internal/service"
	"grader_web/internal/util"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	Service *service.AssignmentService
}

func NewAssignmentController(svc *service.AssignmentService) *AssignmentController {
	return &AssignmentController{Service: svc}
}

// ListPage 作业列表页
func (c *AssignmentController) ListPage(ctx *gin.Context) {
	assignments, err := c.Service.List(ctx.Request.Context())
	if err != nil {
		renderError(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "list.html", gin.H{
		"Title":       "Assignments",
		"Assignments": assignments,
	})
}

func (c *AssignmentController) uploadPageData() gin.H {
	return gin.H{
		"Title":  "Upload",
		"Format": util.FormatLabel(c.Service.Format()),
		"Accept": "." + c.Service.Format(),
	}
}

// UploadPage 上传表单
func (c *AssignmentController) UploadPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "upload.html", c.uploadPageData())
}

// Upload 表单提交。成功后回到作业列表，失败时保留输入并显示错误
func (c *AssignmentController) Upload(ctx *gin.Context) {
	req, err := c.bindUpload(ctx)
	if err == nil {
		_, err = c.Service.Create(ctx.Request.Context(), req)
	}
	if err != nil {
		code, msg := util.UserMessage(err)
		if code == http.StatusInternalServerError {
			renderError(ctx, err)
			return
		}
		data := c.uploadPageData()
		data["Error"] = msg
		data["Name"] = req.Name
		data["Questions"] = strings.Join(req.Questions, "\n")
		ctx.HTML(code, "upload.html", data)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}

// bindUpload 读取 multipart 表单：file 为作业文件，name 为作业名称，questions 每行一个问题
func (c *AssignmentController) bindUpload(ctx *gin.Context) (service.UploadRequest, error) {
	var req service.UploadRequest

	form, err := ctx.MultipartForm()
	if err != nil {
		return req, util.NewValidationError("Need to upload a %s file", util.FormatLabel(c.Service.Format()))
	}

	if names := form.Value["name"]; len(names) > 0 {
		req.Name = names[0]
	}
	for _, raw := range form.Value["questions"] {
		req.Questions = append(req.Questions, service.SplitQuestions(raw)...)
	}

	for _, fh := range form.File["file"] {
		f, err := fh.Open()
		if err != nil {
			return req, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return req, err
		}
		req.Files = append(req.Files, service.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return req, nil
}

// @Summary 作业列表
// @Tags 作业
// @Produce json
// @Success 200 {object} util.Response{data=[]model.AssignmentSummary}
// @Failure 502 {object} util.Response
// @Router /api/assignments [get]
func (c *AssignmentController) List(ctx *gin.Context) {
	assignments, err := c.Service.List(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, assignments)
}

// @Summary 上传作业
// @Description 上传作业文件并为问题集创建推理
// @Tags 作业
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "作业文件（JSON 或 CSV）"
// @Param name formData string false "作业名称"
// @Param questions formData string true "问题，每行一个"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/assignments [post]
func (c *AssignmentController) Create(ctx *gin.Context) {
	req, err := c.bindUpload(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	id, err := c.Service.Create(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"id": id})
}
