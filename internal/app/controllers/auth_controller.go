package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/auth"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfaceAuthController 定义认证控制器接口
type InterfaceAuthController interface {
	GetUser()
	Login()
}

// AuthController 处理身份验证请求
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController 创建一个新的认证控制器
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"100003"`
	Kind    string      `json:"kind" example:"validation"`
	Message string      `json:"message" example:"name is required"`
	Data    interface{} `json:"data"`
}

// HandleAuthFunc 返回一个处理认证请求的Gin处理函数
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "getUser":
			controller.GetUser()
		case "login":
			controller.Login()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// currentUserID 认证中间件保证 principal 存在
func currentUserID(c *gin.Context) string {
	p, _ := auth.FromContext(c.Request.Context())
	return p.UserID
}

// 1. GetUser 获取当前登录用户
// @Summary 获取当前用户
// @Description 返回当前认证用户的资料
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.User}
// @Failure 401 {object} ErrorResponse
// @Router /auth/user [get]
func (c *AuthController) GetUser() {
	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.GetUser(c.Ctx.Request.Context(), currentUserID(c.Ctx))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, user)
}

// 2. Login 开发环境登录，按邮箱创建或查找用户并签发令牌
// @Summary 开发登录
// @Description 按邮箱创建或查找用户并签发JWT，仅在 AUTH_DEV_LOGIN 开启时可用
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.DevLoginRequest true "登录请求"
// @Success 200 {object} response.Response{data=services.LoginResult}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /auth/login [post]
func (c *AuthController) Login() {
	if !c.Container.GetConfig().AuthDevLogin {
		response.NotFound(c.Ctx, "")
		return
	}

	var req services.DevLoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	result, err := userService.DevLogin(c.Ctx.Request.Context(), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, result)
}
