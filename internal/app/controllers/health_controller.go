package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/blob"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(ctx *gin.Context, container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{Ctx: ctx, Container: container}
}

// HandleHealthFunc 返回一个处理健康检查的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthCheckController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "health":
			controller.Health()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Ping 健康检查端点
// @Summary Liveness
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router /ping [get]
func (h *HealthCheckController) Ping() {
	response.Success(h.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Health 检查数据库与缓存
// @Summary Readiness
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} ErrorResponse
// @Router /health [get]
func (h *HealthCheckController) Health() {
	ctx, cancel := context.WithTimeout(h.Ctx.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{"database": "ok", "cache": "disabled"}
	if store, ok := h.Container.GetService("blob").(blob.Store); ok && store != nil {
		status["blob_driver"] = store.Driver()
	}

	sqlDB, err := h.Container.GetDB().DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status["database"] = err.Error()
		response.FailWithMessage(h.Ctx, code.ErrDatabase, "database unavailable", status)
		return
	}

	if cache, ok := h.Container.GetService("redis").(services.InterfaceRedisService); ok && cache != nil {
		status["cache"] = "ok"
		if err := cache.Ping(ctx); err != nil {
			status["cache"] = err.Error()
		}
	}

	response.Success(h.Ctx, status)
}
