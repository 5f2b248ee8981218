package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfacePropertyController 定义物业控制器接口
type InterfacePropertyController interface {
	GetPropertiesByCompany()
	GetProperty()
	CreateProperty()
	UpdateProperty()
	DeleteProperty()
}

// PropertyController 处理物业相关的请求
type PropertyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPropertyController 创建一个新的物业控制器
func NewPropertyController(ctx *gin.Context, container *container.ServiceContainer) *PropertyController {
	return &PropertyController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandlePropertyFunc 返回一个处理物业请求的Gin处理函数
func HandlePropertyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPropertyController(ctx, container)

		switch method {
		case "getPropertiesByCompany":
			controller.GetPropertiesByCompany()
		case "getProperty":
			controller.GetProperty()
		case "createProperty":
			controller.CreateProperty()
		case "updateProperty":
			controller.UpdateProperty()
		case "deleteProperty":
			controller.DeleteProperty()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *PropertyController) service() services.InterfacePropertyService {
	return c.Container.GetService("property").(services.InterfacePropertyService)
}

// 1. GetPropertiesByCompany 获取公司下的物业
// @Summary 获取公司物业列表
// @Tags Property
// @Produce json
// @Security BearerAuth
// @Param companyId path string true "公司ID"
// @Success 200 {object} response.Response{data=[]models.Property}
// @Failure 404 {object} ErrorResponse
// @Router /properties/company/{companyId} [get]
func (c *PropertyController) GetPropertiesByCompany() {
	properties, err := c.service().GetPropertiesByCompany(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("companyId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, properties)
}

// 2. GetProperty 获取物业详情
// @Summary 获取物业详情
// @Tags Property
// @Produce json
// @Security BearerAuth
// @Param id path string true "物业ID"
// @Success 200 {object} response.Response{data=models.Property}
// @Failure 404 {object} ErrorResponse
// @Router /properties/{id} [get]
func (c *PropertyController) GetProperty() {
	property, err := c.service().GetProperty(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, property)
}

// 3. CreateProperty 创建物业
// @Summary 创建物业
// @Tags Property
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param property body services.PropertyInput true "物业信息"
// @Success 201 {object} response.Response{data=models.Property}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /properties [post]
func (c *PropertyController) CreateProperty() {
	var req services.PropertyInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	property, err := c.service().CreateProperty(c.Ctx.Request.Context(), currentUserID(c.Ctx), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, property)
}

// 4. UpdateProperty 更新物业
// @Summary 更新物业
// @Tags Property
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "物业ID"
// @Param property body services.PropertyPatch true "需要更新的字段"
// @Success 200 {object} response.Response{data=models.Property}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /properties/{id} [put]
func (c *PropertyController) UpdateProperty() {
	var req services.PropertyPatch
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	property, err := c.service().UpdateProperty(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, property)
}

// 5. DeleteProperty 删除物业，仍有单元时拒绝
// @Summary 删除物业
// @Tags Property
// @Produce json
// @Security BearerAuth
// @Param id path string true "物业ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /properties/{id} [delete]
func (c *PropertyController) DeleteProperty() {
	if err := c.service().DeleteProperty(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id")); err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
