package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfaceUnitController 定义单元控制器接口
type InterfaceUnitController interface {
	GetUnitsByProperty()
	GetUnit()
	CreateUnit()
	UpdateUnit()
	DeleteUnit()
}

// UnitController 处理单元相关的请求
type UnitController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUnitController 创建一个新的单元控制器
func NewUnitController(ctx *gin.Context, container *container.ServiceContainer) *UnitController {
	return &UnitController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleUnitFunc 返回一个处理单元请求的Gin处理函数
func HandleUnitFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUnitController(ctx, container)

		switch method {
		case "getUnitsByProperty":
			controller.GetUnitsByProperty()
		case "getUnit":
			controller.GetUnit()
		case "createUnit":
			controller.CreateUnit()
		case "updateUnit":
			controller.UpdateUnit()
		case "deleteUnit":
			controller.DeleteUnit()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *UnitController) service() services.InterfaceUnitService {
	return c.Container.GetService("unit").(services.InterfaceUnitService)
}

// 1. GetUnitsByProperty 获取物业下的单元
// @Summary 获取物业单元列表
// @Tags Unit
// @Produce json
// @Security BearerAuth
// @Param propertyId path string true "物业ID"
// @Success 200 {object} response.Response{data=[]models.Unit}
// @Failure 404 {object} ErrorResponse
// @Router /units/property/{propertyId} [get]
func (c *UnitController) GetUnitsByProperty() {
	units, err := c.service().GetUnitsByProperty(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("propertyId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, units)
}

// 2. GetUnit 获取单元详情
// @Summary 获取单元详情
// @Tags Unit
// @Produce json
// @Security BearerAuth
// @Param id path string true "单元ID"
// @Success 200 {object} response.Response{data=models.Unit}
// @Failure 404 {object} ErrorResponse
// @Router /units/{id} [get]
func (c *UnitController) GetUnit() {
	unit, err := c.service().GetUnit(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, unit)
}

// 3. CreateUnit 创建单元
// @Summary 创建单元
// @Tags Unit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param unit body services.UnitInput true "单元信息"
// @Success 201 {object} response.Response{data=models.Unit}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /units [post]
func (c *UnitController) CreateUnit() {
	var req services.UnitInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	unit, err := c.service().CreateUnit(c.Ctx.Request.Context(), currentUserID(c.Ctx), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, unit)
}

// 4. UpdateUnit 更新单元
// @Summary 更新单元
// @Tags Unit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "单元ID"
// @Param unit body services.UnitPatch true "需要更新的字段"
// @Success 200 {object} response.Response{data=models.Unit}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /units/{id} [put]
func (c *UnitController) UpdateUnit() {
	var req services.UnitPatch
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	unit, err := c.service().UpdateUnit(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, unit)
}

// 5. DeleteUnit 删除单元，仍有租约、维修、账单或日历事件引用时拒绝
// @Summary 删除单元
// @Tags Unit
// @Produce json
// @Security BearerAuth
// @Param id path string true "单元ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /units/{id} [delete]
func (c *UnitController) DeleteUnit() {
	if err := c.service().DeleteUnit(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id")); err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
