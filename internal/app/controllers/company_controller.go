package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfaceCompanyController 定义公司控制器接口
type InterfaceCompanyController interface {
	GetCompanies()
	GetCompany()
	CreateCompany()
	GetCompanyStats()
}

// CompanyController 处理公司相关的请求
type CompanyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCompanyController 创建一个新的公司控制器
func NewCompanyController(ctx *gin.Context, container *container.ServiceContainer) *CompanyController {
	return &CompanyController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleCompanyFunc 返回一个处理公司请求的Gin处理函数
func HandleCompanyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCompanyController(ctx, container)

		switch method {
		case "getCompanies":
			controller.GetCompanies()
		case "getCompany":
			controller.GetCompany()
		case "createCompany":
			controller.CreateCompany()
		case "getCompanyStats":
			controller.GetCompanyStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *CompanyController) service() services.InterfaceCompanyService {
	return c.Container.GetService("company").(services.InterfaceCompanyService)
}

// 1. GetCompanies 获取当前用户拥有的公司
// @Summary 获取公司列表
// @Description 只返回调用方拥有的公司
// @Tags Company
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Company}
// @Failure 401 {object} ErrorResponse
// @Router /companies [get]
func (c *CompanyController) GetCompanies() {
	companies, err := c.service().GetCompanies(c.Ctx.Request.Context(), currentUserID(c.Ctx))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, companies)
}

// 2. GetCompany 获取公司详情
// @Summary 获取公司详情
// @Tags Company
// @Produce json
// @Security BearerAuth
// @Param id path string true "公司ID"
// @Success 200 {object} response.Response{data=models.Company}
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id} [get]
func (c *CompanyController) GetCompany() {
	company, err := c.service().GetCompany(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, company)
}

// 3. CreateCompany 创建公司，调用方成为所有者
// @Summary 创建公司
// @Tags Company
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param company body services.CompanyInput true "公司信息"
// @Success 201 {object} response.Response{data=models.Company}
// @Failure 400 {object} ErrorResponse
// @Router /companies [post]
func (c *CompanyController) CreateCompany() {
	var req services.CompanyInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	company, err := c.service().CreateCompany(c.Ctx.Request.Context(), currentUserID(c.Ctx), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, company)
}

// 4. GetCompanyStats 获取公司仪表盘统计
// @Summary 公司统计
// @Description 物业与单元数量、按状态的单元数、未完成维修与未支付账单
// @Tags Company
// @Produce json
// @Security BearerAuth
// @Param id path string true "公司ID"
// @Success 200 {object} response.Response{data=services.CompanyStats}
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id}/stats [get]
func (c *CompanyController) GetCompanyStats() {
	stats, err := c.service().GetCompanyStats(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, stats)
}
