package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfaceUploadController 定义附件控制器接口
type InterfaceUploadController interface {
	CreateUpload()
	GetUploadsByEntity()
	DeleteUpload()
}

// UploadController 处理附件相关的请求
type UploadController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUploadController 创建一个新的附件控制器
func NewUploadController(ctx *gin.Context, container *container.ServiceContainer) *UploadController {
	return &UploadController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleUploadFunc 返回一个处理附件请求的Gin处理函数
func HandleUploadFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUploadController(ctx, container)

		switch method {
		case "createUpload":
			controller.CreateUpload()
		case "getUploadsByEntity":
			controller.GetUploadsByEntity()
		case "deleteUpload":
			controller.DeleteUpload()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *UploadController) service() services.InterfaceUploadService {
	return c.Container.GetService("upload").(services.InterfaceUploadService)
}

// 1. CreateUpload 上传文件并挂载到实体
// @Summary 上传附件
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "文件"
// @Param entity_type formData string true "实体类型" Enums(company, property, unit, tenant, tenancy, maintenance_request, invoice, calendar_event)
// @Param entity_id formData string true "实体ID"
// @Success 201 {object} response.Response{data=models.Upload}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /uploads [post]
func (c *UploadController) CreateUpload() {
	fileHeader, err := c.Ctx.FormFile("file")
	if err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	upload, err := c.service().CreateUpload(c.Ctx.Request.Context(), currentUserID(c.Ctx), services.UploadInput{
		EntityType:   models.EntityType(c.Ctx.PostForm("entity_type")),
		EntityID:     c.Ctx.PostForm("entity_id"),
		OriginalName: fileHeader.Filename,
		ContentType:  contentType,
		Size:         fileHeader.Size,
		Content:      file,
	})
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, upload)
}

// 2. GetUploadsByEntity 获取实体的附件
// @Summary 获取实体附件列表
// @Tags Upload
// @Produce json
// @Security BearerAuth
// @Param entityType path string true "实体类型"
// @Param entityId path string true "实体ID"
// @Success 200 {object} response.Response{data=[]models.Upload}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /uploads/{entityType}/{entityId} [get]
func (c *UploadController) GetUploadsByEntity() {
	uploads, err := c.service().GetUploadsByEntity(c.Ctx.Request.Context(), currentUserID(c.Ctx),
		models.EntityType(c.Ctx.Param("entityType")), c.Ctx.Param("entityId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, uploads)
}

// 3. DeleteUpload 删除附件
// @Summary 删除附件
// @Tags Upload
// @Produce json
// @Security BearerAuth
// @Param id path string true "附件ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} ErrorResponse
// @Router /uploads/{id} [delete]
func (c *UploadController) DeleteUpload() {
	if err := c.service().DeleteUpload(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id")); err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
