package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfaceTenancyController 定义租约控制器接口
type InterfaceTenancyController interface {
	CreateTenancy()
	GetTenanciesByUnit()
	GetActiveTenancy()
	GetTenancy()
	UpdateTenancy()
	DeleteTenancy()
}

// TenancyController 处理租约相关的请求
type TenancyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewTenancyController 创建一个新的租约控制器
func NewTenancyController(ctx *gin.Context, container *container.ServiceContainer) *TenancyController {
	return &TenancyController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleTenancyFunc 返回一个处理租约请求的Gin处理函数
func HandleTenancyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewTenancyController(ctx, container)

		switch method {
		case "createTenancy":
			controller.CreateTenancy()
		case "getTenanciesByUnit":
			controller.GetTenanciesByUnit()
		case "getActiveTenancy":
			controller.GetActiveTenancy()
		case "getTenancy":
			controller.GetTenancy()
		case "updateTenancy":
			controller.UpdateTenancy()
		case "deleteTenancy":
			controller.DeleteTenancy()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *TenancyController) service() services.InterfaceTenancyService {
	return c.Container.GetService("tenancy").(services.InterfaceTenancyService)
}

// 1. CreateTenancy 签订租约
// @Summary 创建租约
// @Description 同一单元最多一条有效租约；提供 lease_end 时自动生成到期提醒
// @Tags Tenancy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenancy body services.TenancyInput true "租约信息"
// @Success 201 {object} response.Response{data=models.Tenancy}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tenancies [post]
func (c *TenancyController) CreateTenancy() {
	var req services.TenancyInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	tenancy, err := c.service().CreateTenancy(c.Ctx.Request.Context(), currentUserID(c.Ctx), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, tenancy)
}

// 2. GetTenanciesByUnit 获取单元的租约历史
// @Summary 获取单元租约列表
// @Tags Tenancy
// @Produce json
// @Security BearerAuth
// @Param unitId path string true "单元ID"
// @Success 200 {object} response.Response{data=[]models.Tenancy}
// @Failure 404 {object} ErrorResponse
// @Router /tenancies/unit/{unitId} [get]
func (c *TenancyController) GetTenanciesByUnit() {
	tenancies, err := c.service().GetTenanciesByUnit(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("unitId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, tenancies)
}

// 3. GetActiveTenancy 获取单元当前有效租约，没有时 data 为 null
// @Summary 获取有效租约
// @Tags Tenancy
// @Produce json
// @Security BearerAuth
// @Param unitId path string true "单元ID"
// @Success 200 {object} response.Response{data=models.Tenancy}
// @Failure 404 {object} ErrorResponse
// @Router /tenancies/unit/{unitId}/active [get]
func (c *TenancyController) GetActiveTenancy() {
	tenancy, err := c.service().GetActiveTenancy(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("unitId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	if tenancy == nil {
		response.Success(c.Ctx, nil)
		return
	}
	response.Success(c.Ctx, tenancy)
}

// 4. GetTenancy 获取租约详情
// @Summary 获取租约详情
// @Tags Tenancy
// @Produce json
// @Security BearerAuth
// @Param id path string true "租约ID"
// @Success 200 {object} response.Response{data=models.Tenancy}
// @Failure 404 {object} ErrorResponse
// @Router /tenancies/{id} [get]
func (c *TenancyController) GetTenancy() {
	tenancy, err := c.service().GetTenancy(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, tenancy)
}

// 5. UpdateTenancy 更新租约，is_active=false 表示结束租约
// @Summary 更新租约
// @Tags Tenancy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "租约ID"
// @Param tenancy body services.TenancyPatch true "需要更新的字段"
// @Success 200 {object} response.Response{data=models.Tenancy}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tenancies/{id} [put]
func (c *TenancyController) UpdateTenancy() {
	var req services.TenancyPatch
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	tenancy, err := c.service().UpdateTenancy(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, tenancy)
}

// 6. DeleteTenancy 删除租约
// @Summary 删除租约
// @Tags Tenancy
// @Produce json
// @Security BearerAuth
// @Param id path string true "租约ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} ErrorResponse
// @Router /tenancies/{id} [delete]
func (c *TenancyController) DeleteTenancy() {
	if err := c.service().DeleteTenancy(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id")); err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
