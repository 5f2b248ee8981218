package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfaceMaintenanceController 定义维修控制器接口
type InterfaceMaintenanceController interface {
	CreateMaintenanceRequest()
	GetMaintenanceRequestsByUnit()
	GetMaintenanceRequest()
	UpdateMaintenanceRequest()
	DeleteMaintenanceRequest()
}

// MaintenanceController 处理维修工单相关的请求
type MaintenanceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewMaintenanceController 创建一个新的维修控制器
func NewMaintenanceController(ctx *gin.Context, container *container.ServiceContainer) *MaintenanceController {
	return &MaintenanceController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleMaintenanceFunc 返回一个处理维修请求的Gin处理函数
func HandleMaintenanceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewMaintenanceController(ctx, container)

		switch method {
		case "createMaintenanceRequest":
			controller.CreateMaintenanceRequest()
		case "getMaintenanceRequestsByUnit":
			controller.GetMaintenanceRequestsByUnit()
		case "getMaintenanceRequest":
			controller.GetMaintenanceRequest()
		case "updateMaintenanceRequest":
			controller.UpdateMaintenanceRequest()
		case "deleteMaintenanceRequest":
			controller.DeleteMaintenanceRequest()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *MaintenanceController) service() services.InterfaceMaintenanceService {
	return c.Container.GetService("maintenance").(services.InterfaceMaintenanceService)
}

// 1. CreateMaintenanceRequest 创建维修工单
// @Summary 创建维修工单
// @Description 缺少 category、priority 或 estimated_cost 时调用语言模型分诊，失败时使用 General/medium/0
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.MaintenanceInput true "工单信息"
// @Success 201 {object} response.Response{data=models.MaintenanceRequest}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /maintenance-requests [post]
func (c *MaintenanceController) CreateMaintenanceRequest() {
	var req services.MaintenanceInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	request, err := c.service().CreateMaintenanceRequest(c.Ctx.Request.Context(), currentUserID(c.Ctx), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, request)
}

// 2. GetMaintenanceRequestsByUnit 获取单元的维修工单，最新的在前
// @Summary 获取单元维修工单
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param unitId path string true "单元ID"
// @Success 200 {object} response.Response{data=[]models.MaintenanceRequest}
// @Failure 404 {object} ErrorResponse
// @Router /maintenance-requests/unit/{unitId} [get]
func (c *MaintenanceController) GetMaintenanceRequestsByUnit() {
	requests, err := c.service().GetMaintenanceRequestsByUnit(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("unitId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, requests)
}

// 3. GetMaintenanceRequest 获取维修工单详情
// @Summary 获取维修工单详情
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param id path string true "工单ID"
// @Success 200 {object} response.Response{data=models.MaintenanceRequest}
// @Failure 404 {object} ErrorResponse
// @Router /maintenance-requests/{id} [get]
func (c *MaintenanceController) GetMaintenanceRequest() {
	request, err := c.service().GetMaintenanceRequest(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, request)
}

// 4. UpdateMaintenanceRequest 更新维修工单
// @Summary 更新维修工单
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "工单ID"
// @Param request body services.MaintenancePatch true "需要更新的字段"
// @Success 200 {object} response.Response{data=models.MaintenanceRequest}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /maintenance-requests/{id} [put]
func (c *MaintenanceController) UpdateMaintenanceRequest() {
	var req services.MaintenancePatch
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	request, err := c.service().UpdateMaintenanceRequest(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, request)
}

// 5. DeleteMaintenanceRequest 删除维修工单
// @Summary 删除维修工单
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param id path string true "工单ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /maintenance-requests/{id} [delete]
func (c *MaintenanceController) DeleteMaintenanceRequest() {
	if err := c.service().DeleteMaintenanceRequest(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id")); err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
