package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/auth"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfaceAssistantController 定义助手控制器接口
type InterfaceAssistantController interface {
	Ask()
	GetLogs()
}

// AssistantController 处理助手问答请求
type AssistantController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAssistantController 创建一个新的助手控制器
func NewAssistantController(ctx *gin.Context, container *container.ServiceContainer) *AssistantController {
	return &AssistantController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAssistantFunc 返回一个处理助手请求的Gin处理函数
func HandleAssistantFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAssistantController(ctx, container)

		switch method {
		case "ask":
			controller.Ask()
		case "getLogs":
			controller.GetLogs()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *AssistantController) service() services.InterfaceAssistantService {
	return c.Container.GetService("assistant").(services.InterfaceAssistantService)
}

// 1. Ask 助手问答
// @Summary 助手问答
// @Description 总是返回文本；模型不可用时返回固定致歉。会话ID依次取 X-Session-ID 请求头、令牌 sid
// @Tags Assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Session-ID header string false "会话ID"
// @Param request body services.AssistantRequest true "问题"
// @Success 200 {object} response.Response{data=services.AssistantReply}
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /assistant [post]
func (c *AssistantController) Ask() {
	var req services.AssistantRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	principal, _ := auth.FromContext(c.Ctx.Request.Context())
	reply, err := c.service().Ask(c.Ctx.Request.Context(), principal.UserID, principal.SessionID, req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, reply)
}

// 2. GetLogs 获取当前用户的问答记录
// @Summary 助手问答记录
// @Tags Assistant
// @Produce json
// @Security BearerAuth
// @Param limit query int false "条数，默认50，最多200"
// @Success 200 {object} response.Response{data=[]models.AssistantLog}
// @Router /assistant/logs [get]
func (c *AssistantController) GetLogs() {
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "0"))

	logs, err := c.service().Logs(c.Ctx.Request.Context(), currentUserID(c.Ctx), limit)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, logs)
}
