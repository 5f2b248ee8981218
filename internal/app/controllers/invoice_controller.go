package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InterfaceInvoiceController 定义账单控制器接口
type InterfaceInvoiceController interface {
	CreateInvoice()
	GetInvoicesByTenant()
	ExportTenantInvoices()
	GetInvoice()
	UpdateInvoice()
	PayInvoice()
	DeleteInvoice()
}

// InvoiceController 处理账单相关的请求
type InvoiceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewInvoiceController 创建一个新的账单控制器
func NewInvoiceController(ctx *gin.Context, container *container.ServiceContainer) *InvoiceController {
	return &InvoiceController{
		Ctx:       ctx,
		Container: container,
	}
}

// PayInvoiceRequest 标记支付的请求，paid_date 可选
type PayInvoiceRequest struct {
	PaidDate *services.Timestamp `json:"paid_date" swaggertype:"string" example:"2025-02-03"`
}

// HandleInvoiceFunc 返回一个处理账单请求的Gin处理函数
func HandleInvoiceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewInvoiceController(ctx, container)

		switch method {
		case "createInvoice":
			controller.CreateInvoice()
		case "getInvoicesByTenant":
			controller.GetInvoicesByTenant()
		case "exportTenantInvoices":
			controller.ExportTenantInvoices()
		case "getInvoice":
			controller.GetInvoice()
		case "updateInvoice":
			controller.UpdateInvoice()
		case "payInvoice":
			controller.PayInvoice()
		case "deleteInvoice":
			controller.DeleteInvoice()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *InvoiceController) service() services.InterfaceInvoiceService {
	return c.Container.GetService("invoice").(services.InterfaceInvoiceService)
}

// 1. CreateInvoice 创建账单
// @Summary 创建账单
// @Description invoice_number 全局唯一，重复时返回 400
// @Tags Invoice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoice body services.InvoiceInput true "账单信息"
// @Success 201 {object} response.Response{data=models.Invoice}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /invoices [post]
func (c *InvoiceController) CreateInvoice() {
	var req services.InvoiceInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	invoice, err := c.service().CreateInvoice(c.Ctx.Request.Context(), currentUserID(c.Ctx), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, invoice)
}

// 2. GetInvoicesByTenant 获取租客账单
// @Summary 获取租客账单列表
// @Description 按到期日倒序
// @Tags Invoice
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "租客ID"
// @Success 200 {object} response.Response{data=[]models.Invoice}
// @Failure 404 {object} ErrorResponse
// @Router /invoices/tenant/{tenantId} [get]
func (c *InvoiceController) GetInvoicesByTenant() {
	invoices, err := c.service().GetInvoicesByTenant(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("tenantId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, invoices)
}

// 3. ExportTenantInvoices 导出租客账单
// @Summary 导出租客账单 (XLSX)
// @Tags Invoice
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param tenantId path string true "租客ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /invoices/tenant/{tenantId}/export [get]
func (c *InvoiceController) ExportTenantInvoices() {
	export, err := c.service().ExportTenantInvoices(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("tenantId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	c.Ctx.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Ctx.Data(http.StatusOK, xlsxContentType, export.Content)
}

// 4. GetInvoice 获取账单详情
// @Summary 获取账单详情
// @Tags Invoice
// @Produce json
// @Security BearerAuth
// @Param id path string true "账单ID"
// @Success 200 {object} response.Response{data=models.Invoice}
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{id} [get]
func (c *InvoiceController) GetInvoice() {
	invoice, err := c.service().GetInvoice(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, invoice)
}

// 5. UpdateInvoice 更新账单
// @Summary 更新账单
// @Tags Invoice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "账单ID"
// @Param invoice body services.InvoicePatch true "需要更新的字段"
// @Success 200 {object} response.Response{data=models.Invoice}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{id} [put]
func (c *InvoiceController) UpdateInvoice() {
	var req services.InvoicePatch
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	invoice, err := c.service().UpdateInvoice(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, invoice)
}

// 6. PayInvoice 标记账单已支付
// @Summary 标记账单已支付
// @Tags Invoice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "账单ID"
// @Param request body PayInvoiceRequest false "支付日期，默认为当前时间"
// @Success 200 {object} response.Response{data=models.Invoice}
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{id}/pay [post]
func (c *InvoiceController) PayInvoice() {
	var req PayInvoiceRequest
	// 请求体可以为空
	if c.Ctx.Request.ContentLength > 0 {
		if err := c.Ctx.ShouldBindJSON(&req); err != nil {
			response.BindError(c.Ctx, err)
			return
		}
	}

	var paidDate *time.Time
	if req.PaidDate != nil && !req.PaidDate.IsZero() {
		paidDate = &req.PaidDate.Time
	}

	invoice, err := c.service().MarkPaid(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"), paidDate)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, invoice)
}

// 7. DeleteInvoice 删除账单
// @Summary 删除账单
// @Tags Invoice
// @Produce json
// @Security BearerAuth
// @Param id path string true "账单ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{id} [delete]
func (c *InvoiceController) DeleteInvoice() {
	if err := c.service().DeleteInvoice(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id")); err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
