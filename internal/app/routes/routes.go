package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Shefo-AMI/PropertyPro-UAE/docs"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/app/controllers"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/app/middleware"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/blob"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/metrics"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(container *container.ServiceContainer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(container.GetConfig().CORSAllowOrigin))

	// Swagger 文档与 Prometheus 指标
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 本地文件存储时直接提供已上传文件
	if store, ok := container.GetService("blob").(blob.Store); ok && store.Driver() == blob.DriverFilesystem {
		r.Static("/uploads", container.GetConfig().BlobFSRoot)
	}

	registerRoutes(r, container)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	api := r.Group("/api")
	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	public := api.Group("")
	// 每秒10个请求，最多突发20个
	public.Use(middleware.IPRateLimiter(10, 20))

	public.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(container, "health"))
	public.POST("/auth/login", controllers.HandleAuthFunc(container, "login"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	jwtService := container.GetService("jwt").(services.InterfaceJWTService)
	userService := container.GetService("user").(services.InterfaceUserService)

	auth := api.Group("")
	auth.Use(middleware.Authentication(jwtService, userService))
	// 按用户限流 - 每秒30个请求，最多突发50个
	auth.Use(middleware.CustomRateLimiter(30, 50, middleware.PrincipalKey))

	auth.GET("/auth/user", controllers.HandleAuthFunc(container, "getUser"))

	// 公司路由
	companyGroup := auth.Group("/companies")
	companyGroup.GET("", controllers.HandleCompanyFunc(container, "getCompanies"))
	companyGroup.POST("", controllers.HandleCompanyFunc(container, "createCompany"))
	companyGroup.GET("/:id", controllers.HandleCompanyFunc(container, "getCompany"))
	companyGroup.GET("/:id/stats", controllers.HandleCompanyFunc(container, "getCompanyStats"))

	// 物业路由
	propertyGroup := auth.Group("/properties")
	propertyGroup.POST("", controllers.HandlePropertyFunc(container, "createProperty"))
	propertyGroup.GET("/company/:companyId", controllers.HandlePropertyFunc(container, "getPropertiesByCompany"))
	propertyGroup.GET("/:id", controllers.HandlePropertyFunc(container, "getProperty"))
	propertyGroup.PUT("/:id", controllers.HandlePropertyFunc(container, "updateProperty"))
	propertyGroup.DELETE("/:id", controllers.HandlePropertyFunc(container, "deleteProperty"))

	// 单元路由
	unitGroup := auth.Group("/units")
	unitGroup.POST("", controllers.HandleUnitFunc(container, "createUnit"))
	unitGroup.GET("/property/:propertyId", controllers.HandleUnitFunc(container, "getUnitsByProperty"))
	unitGroup.GET("/:id", controllers.HandleUnitFunc(container, "getUnit"))
	unitGroup.PUT("/:id", controllers.HandleUnitFunc(container, "updateUnit"))
	unitGroup.DELETE("/:id", controllers.HandleUnitFunc(container, "deleteUnit"))

	// 租客路由
	tenantGroup := auth.Group("/tenants")
	tenantGroup.POST("", controllers.HandleTenantFunc(container, "createTenant"))
	tenantGroup.GET("/company/:companyId", controllers.HandleTenantFunc(container, "getTenantsByCompany"))
	tenantGroup.GET("/:id", controllers.HandleTenantFunc(container, "getTenant"))
	tenantGroup.PUT("/:id", controllers.HandleTenantFunc(container, "updateTenant"))
	tenantGroup.DELETE("/:id", controllers.HandleTenantFunc(container, "deleteTenant"))

	// 租约路由
	tenancyGroup := auth.Group("/tenancies")
	tenancyGroup.POST("", controllers.HandleTenancyFunc(container, "createTenancy"))
	tenancyGroup.GET("/unit/:unitId", controllers.HandleTenancyFunc(container, "getTenanciesByUnit"))
	tenancyGroup.GET("/unit/:unitId/active", controllers.HandleTenancyFunc(container, "getActiveTenancy"))
	tenancyGroup.GET("/:id", controllers.HandleTenancyFunc(container, "getTenancy"))
	tenancyGroup.PUT("/:id", controllers.HandleTenancyFunc(container, "updateTenancy"))
	tenancyGroup.DELETE("/:id", controllers.HandleTenancyFunc(container, "deleteTenancy"))

	// 维修工单路由
	maintenanceGroup := auth.Group("/maintenance-requests")
	maintenanceGroup.POST("", controllers.HandleMaintenanceFunc(container, "createMaintenanceRequest"))
	maintenanceGroup.GET("/unit/:unitId", controllers.HandleMaintenanceFunc(container, "getMaintenanceRequestsByUnit"))
	maintenanceGroup.GET("/:id", controllers.HandleMaintenanceFunc(container, "getMaintenanceRequest"))
	maintenanceGroup.PUT("/:id", controllers.HandleMaintenanceFunc(container, "updateMaintenanceRequest"))
	maintenanceGroup.DELETE("/:id", controllers.HandleMaintenanceFunc(container, "deleteMaintenanceRequest"))

	// 账单路由
	invoiceGroup := auth.Group("/invoices")
	invoiceGroup.POST("", controllers.HandleInvoiceFunc(container, "createInvoice"))
	invoiceGroup.GET("/tenant/:tenantId", controllers.HandleInvoiceFunc(container, "getInvoicesByTenant"))
	invoiceGroup.GET("/tenant/:tenantId/export", controllers.HandleInvoiceFunc(container, "exportTenantInvoices"))
	invoiceGroup.GET("/:id", controllers.HandleInvoiceFunc(container, "getInvoice"))
	invoiceGroup.PUT("/:id", controllers.HandleInvoiceFunc(container, "updateInvoice"))
	invoiceGroup.POST("/:id/pay", controllers.HandleInvoiceFunc(container, "payInvoice"))
	invoiceGroup.DELETE("/:id", controllers.HandleInvoiceFunc(container, "deleteInvoice"))

	// 日历路由
	calendarGroup := auth.Group("/calendar-events")
	calendarGroup.POST("", controllers.HandleCalendarFunc(container, "createEvent"))
	calendarGroup.GET("/company/:companyId", controllers.HandleCalendarFunc(container, "getEventsByCompany"))
	calendarGroup.GET("/company/:companyId/grid", controllers.HandleCalendarFunc(container, "getMonthGrid"))
	calendarGroup.GET("/:id", controllers.HandleCalendarFunc(container, "getEvent"))
	calendarGroup.PUT("/:id", controllers.HandleCalendarFunc(container, "updateEvent"))
	calendarGroup.DELETE("/:id", controllers.HandleCalendarFunc(container, "deleteEvent"))

	// 附件路由
	uploadGroup := auth.Group("/uploads")
	uploadGroup.POST("", controllers.HandleUploadFunc(container, "createUpload"))
	uploadGroup.GET("/:entityType/:entityId", controllers.HandleUploadFunc(container, "getUploadsByEntity"))
	uploadGroup.DELETE("/:id", controllers.HandleUploadFunc(container, "deleteUpload"))

	// 助手路由，问答调用语言模型，单独限流
	assistantGroup := auth.Group("/assistant")
	assistantGroup.POST("", middleware.CustomRateLimiter(1, 5, middleware.PrincipalKey), controllers.HandleAssistantFunc(container, "ask"))
	assistantGroup.GET("/logs", controllers.HandleAssistantFunc(container, "getLogs"))
}
