package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// InterfaceCalendarController 定义日历控制器接口
type InterfaceCalendarController interface {
	CreateEvent()
	GetEventsByCompany()
	GetMonthGrid()
	GetEvent()
	UpdateEvent()
	DeleteEvent()
}

// CalendarController 处理日历事件相关的请求
type CalendarController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCalendarController 创建一个新的日历控制器
func NewCalendarController(ctx *gin.Context, container *container.ServiceContainer) *CalendarController {
	return &CalendarController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleCalendarFunc 返回一个处理日历请求的Gin处理函数
func HandleCalendarFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCalendarController(ctx, container)

		switch method {
		case "createEvent":
			controller.CreateEvent()
		case "getEventsByCompany":
			controller.GetEventsByCompany()
		case "getMonthGrid":
			controller.GetMonthGrid()
		case "getEvent":
			controller.GetEvent()
		case "updateEvent":
			controller.UpdateEvent()
		case "deleteEvent":
			controller.DeleteEvent()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *CalendarController) service() services.InterfaceCalendarService {
	return c.Container.GetService("calendar").(services.InterfaceCalendarService)
}

// 1. CreateEvent 创建日历事件
// @Summary 创建日历事件
// @Tags Calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body services.CalendarEventInput true "事件信息"
// @Success 201 {object} response.Response{data=models.CalendarEvent}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /calendar-events [post]
func (c *CalendarController) CreateEvent() {
	var req services.CalendarEventInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	event, err := c.service().CreateEvent(c.Ctx.Request.Context(), currentUserID(c.Ctx), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, event)
}

// 2. GetEventsByCompany 获取公司日历事件
// @Summary 获取公司日历事件
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param companyId path string true "公司ID"
// @Success 200 {object} response.Response{data=[]models.CalendarEvent}
// @Failure 404 {object} ErrorResponse
// @Router /calendar-events/company/{companyId} [get]
func (c *CalendarController) GetEventsByCompany() {
	events, err := c.service().GetEventsByCompany(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("companyId"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, events)
}

// 3. GetMonthGrid 获取月视图
// @Summary 日历月视图
// @Description 6 周 x 7 天，周日开始；year/month 缺省为当前月份
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param companyId path string true "公司ID"
// @Param year query int false "年份"
// @Param month query int false "月份 1-12"
// @Success 200 {object} response.Response{data=services.CalendarGrid}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /calendar-events/company/{companyId}/grid [get]
func (c *CalendarController) GetMonthGrid() {
	now := time.Now().UTC()
	year, err := strconv.Atoi(c.Ctx.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		response.ParamError(c.Ctx, "year must be a number")
		return
	}
	month, err := strconv.Atoi(c.Ctx.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		response.ParamError(c.Ctx, "month must be a number")
		return
	}

	grid, err := c.service().MonthGrid(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("companyId"), year, month)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, grid)
}

// 4. GetEvent 获取日历事件详情
// @Summary 获取日历事件详情
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param id path string true "事件ID"
// @Success 200 {object} response.Response{data=models.CalendarEvent}
// @Failure 404 {object} ErrorResponse
// @Router /calendar-events/{id} [get]
func (c *CalendarController) GetEvent() {
	event, err := c.service().GetEvent(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"))
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, event)
}

// 5. UpdateEvent 更新日历事件
// @Summary 更新日历事件
// @Tags Calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "事件ID"
// @Param event body services.CalendarEventPatch true "需要更新的字段"
// @Success 200 {object} response.Response{data=models.CalendarEvent}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /calendar-events/{id} [put]
func (c *CalendarController) UpdateEvent() {
	var req services.CalendarEventPatch
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	event, err := c.service().UpdateEvent(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id"), req)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, event)
}

// 6. DeleteEvent 删除日历事件
// @Summary 删除日历事件
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param id path string true "事件ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} ErrorResponse
// @Router /calendar-events/{id} [delete]
func (c *CalendarController) DeleteEvent() {
	if err := c.service().DeleteEvent(c.Ctx.Request.Context(), currentUserID(c.Ctx), c.Ctx.Param("id")); err != nil {
		response.Error(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
