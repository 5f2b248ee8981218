package container

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/blob"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/events"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

// Dependencies 外部资源，由 main 或测试构造后注入
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config
	Redis  *redis.Client                   // 为空时不缓存
	Blobs  blob.Store                      // 为空时使用内存存储
	Events events.Publisher                // 为空时不发布
	LLM    services.InterfaceLanguageModel // 为空时使用 OpenAI 客户端
}

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	blobs  blob.Store
	events events.Publisher

	// 基础服务
	jwtService   services.InterfaceJWTService
	redisService services.InterfaceRedisService
	scopeService services.InterfaceScopeService
	llm          services.InterfaceLanguageModel

	// 业务服务
	userService        services.InterfaceUserService
	companyService     services.InterfaceCompanyService
	propertyService    services.InterfacePropertyService
	unitService        services.InterfaceUnitService
	tenantService      services.InterfaceTenantService
	tenancyService     services.InterfaceTenancyService
	maintenanceService services.InterfaceMaintenanceService
	invoiceService     services.InterfaceInvoiceService
	calendarService    services.InterfaceCalendarService
	uploadService      services.InterfaceUploadService
	assistantService   services.InterfaceAssistantService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(deps Dependencies) *ServiceContainer {
	if deps.DB == nil {
		panic("数据库连接为空")
	}
	if deps.Config == nil {
		panic("配置为空")
	}

	c := &ServiceContainer{
		db:     deps.DB,
		config: deps.Config,
		blobs:  deps.Blobs,
		events: deps.Events,
		llm:    deps.LLM,
	}
	if c.blobs == nil {
		c.blobs = blob.NewMemory()
	}
	if c.events == nil {
		c.events = events.Noop{}
	}
	if c.llm == nil {
		c.llm = services.NewOpenAIClient(deps.Config)
	}

	// 测试Redis连接，失败时不使用缓存
	if deps.Redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			logger.Warning("Redis连接测试失败: %v，将不使用Redis缓存", err)
		} else {
			c.redisService = services.NewRedisServiceWithClient(deps.Redis)
		}
	}

	c.initializeServices()
	return c
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.config)
	c.scopeService = services.NewScopeService(c.db, c.redisService)

	c.userService = services.NewUserService(c.db, c.config, c.jwtService)
	c.companyService = services.NewCompanyService(c.db, c.config, c.scopeService)
	c.propertyService = services.NewPropertyService(c.db, c.config, c.scopeService)
	c.unitService = services.NewUnitService(c.db, c.config, c.scopeService)
	c.tenantService = services.NewTenantService(c.db, c.config, c.scopeService)
	c.tenancyService = services.NewTenancyService(c.db, c.config, c.scopeService, c.events)
	c.maintenanceService = services.NewMaintenanceService(c.db, c.config, c.scopeService, c.llm, c.events)
	c.invoiceService = services.NewInvoiceService(c.db, c.config, c.scopeService, c.events)
	c.calendarService = services.NewCalendarService(c.db, c.config, c.scopeService)
	c.uploadService = services.NewUploadService(c.db, c.config, c.scopeService, c.blobs)
	c.assistantService = services.NewAssistantService(c.db, c.config, c.llm)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "blob":
		return c.blobs
	case "events":
		return c.events
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "scope":
		return c.scopeService
	case "user":
		return c.userService
	case "company":
		return c.companyService
	case "property":
		return c.propertyService
	case "unit":
		return c.unitService
	case "tenant":
		return c.tenantService
	case "tenancy":
		return c.tenancyService
	case "maintenance":
		return c.maintenanceService
	case "invoice":
		return c.invoiceService
	case "calendar":
		return c.calendarService
	case "upload":
		return c.uploadService
	case "assistant":
		return c.assistantService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}
