package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfaceTenantController 定义租客控制器接口
type InterfaceTenantController interface {
	GetTenantsByCompany()
	GetTenant()
	CreateTenant()
	UpdateTenant()
	DeleteTenant()
}

// TenantController 处理租客相关的请求
type TenantController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewTenantController 创建一个新的租客控制器
func NewTenantController(ctx *gin.Context, container *container.ServiceContainer) *TenantController {
	return &TenantController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleTenantFunc 返回一个处理租客请求的Gin处理函数
func HandleTenantFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewTenantController(ctx, container)

		switch method {
		case "getTenantsByCompany":
			controller.GetTenantsByCompany()
		case "getTenant":
			controller.GetTenant()
		case "createTenant":
			controller.CreateTenant()
		case "updateTenant":
			controller.UpdateTenant()
		case "deleteTenant":
			controller.DeleteTenant()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *TenantController) service() services.InterfaceTenantService {
	return c.Container.GetService("tenant").(services.InterfaceTenantService)
}

// 1. GetTenantsByCompany 获取公司下的租客
// @Summary 获取公司租客列表
// @Tags Tenant
// @Produce json
// @Security BearerAuth
// @Param companyId path string true "公司ID"
// @Success 200 {object} response.Response{data=[]models.Tenant}
// @Failure 404 {object} ErrorResponse
// @Router /tenants/company/{companyId} [get]
func (c *TenantController) GetTenantsByCompany() {
	tenants, err := c.service().GetTenantsByCompany(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("companyId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, tenants)
}

// 2. GetTenant 获取租客详情
// @Summary 获取租客详情
// @Tags Tenant
// @Produce json
// @Security BearerAuth
// @Param id path string true "租客ID"
// @Success 200 {object} response.Response{data=models.Tenant}
// @Failure 404 {object} ErrorResponse
// @Router /tenants/{id} [get]
func (c *TenantController) GetTenant() {
	tenant, err := c.service().GetTenant(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, tenant)
}

// 3. CreateTenant 创建租客
// @Summary 创建租客
// @Tags Tenant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenant body services.TenantInput true "租客信息"
// @Success 201 {object} response.Response{data=models.Tenant}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tenants [post]
func (c *TenantController) CreateTenant() {
	var req services.TenantInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	tenant, err := c.service().CreateTenant(c.Ctx.Request.Context(), currentUserID(c.Ctx), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, tenant)
}

// 4. UpdateTenant 更新租客
// @Summary 更新租客
// @Tags Tenant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "租客ID"
// @Param tenant body services.TenantPatch true "需要更新的字段"
// @Success 200 {object} response.Response{data=models.Tenant}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tenants/{id} [put]
func (c *TenantController) UpdateTenant() {
	var req services.TenantPatch
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	tenant, err := c.service().UpdateTenant(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, tenant)
}

// 5. DeleteTenant 删除租客，仍有租约、账单、维修或日历事件引用时拒绝
// @Summary 删除租客
// @Tags Tenant
// @Produce json
// @Security BearerAuth
// @Param id path string true "租客ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tenants/{id} [delete]
func (c *TenantController) DeleteTenant() {
	if err := c.service().DeleteTenant(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id")); err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
