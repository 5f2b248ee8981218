package services

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/events"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/metrics"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

// 分诊失败时的默认值
const (
	DefaultCategory      = "General"
	DefaultPriority      = models.PriorityMedium
	DefaultEstimatedCost = 0.0
)

// MaintenanceInput 创建维修工单的请求数据；category/priority/estimated_cost 缺省时由分诊补全
type MaintenanceInput struct {
	Title         string   `json:"title" binding:"required" example:"Leaking kitchen tap"`
	Description   string   `json:"description" binding:"required" example:"Water drips constantly under the sink"`
	Category      *string  `json:"category" example:"Plumbing"`
	Priority      *string  `json:"priority" example:"high"`
	EstimatedCost *float64 `json:"estimated_cost" example:"250"`
	Status        string   `json:"status" example:"open"`
	UnitID        string   `json:"unit_id" binding:"required"`
	TenantID      *string  `json:"tenant_id"`
	AssignedTo    string   `json:"assigned_to"`
}

// Validate 校验必填字段；显式给出的优先级与费用必须合法
func (in MaintenanceInput) Validate() error {
	if err := firstErr(
		required("title", in.Title),
		required("description", in.Description),
		required("unit_id", in.UnitID),
		moneyPtr("estimated_cost", in.EstimatedCost),
	); err != nil {
		return err
	}
	if in.Priority != nil && *in.Priority != "" && !models.Priority(*in.Priority).Valid() {
		return apperr.Validation("priority must be one of low, medium, high, urgent")
	}
	if in.Status != "" && !models.MaintenanceStatus(in.Status).Valid() {
		return apperr.Validation("status must be one of open, in_progress, completed, cancelled")
	}
	return nil
}

// needsTriage 三个字段中任一缺省即需要分诊
func (in MaintenanceInput) needsTriage() bool {
	return in.Category == nil || strings.TrimSpace(*in.Category) == "" ||
		in.Priority == nil || *in.Priority == "" ||
		in.EstimatedCost == nil
}

// MaintenancePatch 更新维修工单的请求数据
type MaintenancePatch struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Priority      *string  `json:"priority"`
	Status        *string  `json:"status"`
	EstimatedCost *float64 `json:"estimated_cost"`
	ActualCost    *float64 `json:"actual_cost"`
	AssignedTo    *string  `json:"assigned_to"`
	TenantID      *string  `json:"tenant_id"`
}

func (p MaintenancePatch) updates() (map[string]interface{}, error) {
	if err := firstErr(moneyPtr("estimated_cost", p.EstimatedCost), moneyPtr("actual_cost", p.ActualCost)); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if p.Title != nil {
		if err := required("title", *p.Title); err != nil {
			return nil, err
		}
		updates["title"] = *p.Title
	}
	if p.Description != nil {
		if err := required("description", *p.Description); err != nil {
			return nil, err
		}
		updates["description"] = *p.Description
	}
	if p.Category != nil {
		updates["category"] = *p.Category
	}
	if p.Priority != nil {
		if !models.Priority(*p.Priority).Valid() {
			return nil, apperr.Validation("priority must be one of low, medium, high, urgent")
		}
		updates["priority"] = *p.Priority
	}
	if p.Status != nil {
		if !models.MaintenanceStatus(*p.Status).Valid() {
			return nil, apperr.Validation("status must be one of open, in_progress, completed, cancelled")
		}
		updates["status"] = *p.Status
	}
	if p.EstimatedCost != nil {
		updates["estimated_cost"] = *p.EstimatedCost
	}
	if p.ActualCost != nil {
		updates["actual_cost"] = *p.ActualCost
	}
	if p.AssignedTo != nil {
		updates["assigned_to"] = *p.AssignedTo
	}
	if p.TenantID != nil {
		updates["tenant_id"] = emptyToNil(p.TenantID)
	}
	return updates, nil
}

// Triage 合并后的分诊结果
type Triage struct {
	Category      string          `json:"category"`
	Priority      models.Priority `json:"priority"`
	EstimatedCost float64         `json:"estimated_cost"`
}

// InterfaceMaintenanceService 定义维修服务接口
type InterfaceMaintenanceService interface {
	CreateMaintenanceRequest(ctx context.Context, userID string, in MaintenanceInput) (*models.MaintenanceRequest, error)
	GetMaintenanceRequest(ctx context.Context, userID, id string) (*models.MaintenanceRequest, error)
	GetMaintenanceRequestsByUnit(ctx context.Context, userID, unitID string) ([]models.MaintenanceRequest, error)
	UpdateMaintenanceRequest(ctx context.Context, userID, id string, patch MaintenancePatch) (*models.MaintenanceRequest, error)
	DeleteMaintenanceRequest(ctx context.Context, userID, id string) error
	Triage(ctx context.Context, description string) Triage
}

// MaintenanceService 提供维修工单相关的服务
type MaintenanceService struct {
	DB     *gorm.DB
	Config *config.Config
	Scope  InterfaceScopeService
	LLM    InterfaceLanguageModel
	Events events.Publisher
}

// NewMaintenanceService 创建一个新的维修服务
func NewMaintenanceService(db *gorm.DB, cfg *config.Config, scope InterfaceScopeService, llm InterfaceLanguageModel, publisher events.Publisher) InterfaceMaintenanceService {
	return &MaintenanceService{DB: db, Config: cfg, Scope: scope, LLM: llm, Events: publisher}
}

// Triage 调用语言模型分诊，失败、超时或输出不合法时逐字段回退到默认值
// 调用不随请求取消，只受 TRIAGE_TIMEOUT 约束
func (s *MaintenanceService) Triage(ctx context.Context, description string) Triage {
	result := Triage{Category: DefaultCategory, Priority: DefaultPriority, EstimatedCost: DefaultEstimatedCost}
	if s.LLM == nil {
		metrics.TriageFallbacks.Inc()
		return result
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.Config.TriageTimeout)
	defer cancel()

	suggestion, err := s.LLM.AnalyzeMaintenance(callCtx, description)
	if err != nil || suggestion == nil {
		metrics.TriageFallbacks.Inc()
		logger.L().Warn("maintenance triage fell back to defaults", zap.Error(err))
		return result
	}

	if suggestion.Category != nil && strings.TrimSpace(*suggestion.Category) != "" {
		result.Category = strings.TrimSpace(*suggestion.Category)
	}
	if suggestion.Priority != nil {
		if p := models.Priority(strings.ToLower(strings.TrimSpace(*suggestion.Priority))); p.Valid() {
			result.Priority = p
		}
	}
	if c := suggestion.EstimatedCost; c != nil && !math.IsNaN(*c) && !math.IsInf(*c, 0) && *c > 0 {
		result.EstimatedCost = math.Round(*c*100) / 100
	}
	return result
}

// 1. CreateMaintenanceRequest 创建维修工单，分诊在写事务之前完成
func (s *MaintenanceService) CreateMaintenanceRequest(ctx context.Context, userID string, in MaintenanceInput) (*models.MaintenanceRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.TenantID = emptyToNil(in.TenantID)

	// 先确认单元可见，避免为越权请求调用语言模型
	if err := s.Scope.Authorize(ctx, userID, models.EntityUnit, in.UnitID); err != nil {
		return nil, err
	}

	request := &models.MaintenanceRequest{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.MaintenanceStatus(in.Status),
		UnitID:      in.UnitID,
		TenantID:    in.TenantID,
		AssignedTo:  in.AssignedTo,
	}
	if request.Status == "" {
		request.Status = models.MaintenanceOpen
	}
	if request.Status == models.MaintenanceCompleted {
		now := time.Now().UTC()
		request.CompletedAt = &now
	}

	// 显式字段优先于分诊建议
	var triage Triage
	if in.needsTriage() {
		triage = s.Triage(ctx, in.Description)
	}
	request.Category = triage.Category
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		request.Category = *in.Category
	}
	request.Priority = triage.Priority
	if in.Priority != nil && *in.Priority != "" {
		request.Priority = models.Priority(*in.Priority)
	}
	request.EstimatedCost = triage.EstimatedCost
	if in.EstimatedCost != nil {
		request.EstimatedCost = *in.EstimatedCost
	}

	var companyID string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		refs := []entityRef{{models.EntityUnit, in.UnitID}}
		if in.TenantID != nil {
			refs = append(refs, entityRef{models.EntityTenant, *in.TenantID})
		}
		var err error
		if companyID, err = requireSameCompany(tx, s.Scope, userID, refs...); err != nil {
			return err
		}
		if err := tx.Create(request).Error; err != nil {
			return storageErr("create", models.EntityMaintenanceRequest, "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.NewEvent(events.MaintenanceCreated, companyID, request.ID, request))
	return request, nil
}

// 2. GetMaintenanceRequest 获取维修工单详情
func (s *MaintenanceService) GetMaintenanceRequest(ctx context.Context, userID, id string) (*models.MaintenanceRequest, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityMaintenanceRequest, id); err != nil {
		return nil, err
	}

	var request models.MaintenanceRequest
	if err := firstOrNotFound(db, &request, models.EntityMaintenanceRequest, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// 3. GetMaintenanceRequestsByUnit 获取单元的维修工单，最新的在前
func (s *MaintenanceService) GetMaintenanceRequestsByUnit(ctx context.Context, userID, unitID string) ([]models.MaintenanceRequest, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityUnit, unitID); err != nil {
		return nil, err
	}

	requests := []models.MaintenanceRequest{}
	if err := db.Where("unit_id = ?", unitID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, storageErr("list", models.EntityMaintenanceRequest, unitID, err)
	}
	return requests, nil
}

// 4. UpdateMaintenanceRequest 更新维修工单；状态变为 completed 时记录完成时间
func (s *MaintenanceService) UpdateMaintenanceRequest(ctx context.Context, userID, id string, patch MaintenancePatch) (*models.MaintenanceRequest, error) {
	updates, err := patch.updates()
	if err != nil {
		return nil, err
	}

	var request models.MaintenanceRequest
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityMaintenanceRequest, id); err != nil {
			return err
		}
		if err := firstOrNotFound(tx, &request, models.EntityMaintenanceRequest, id); err != nil {
			return err
		}
		if tenantID, ok := updates["tenant_id"].(*string); ok && tenantID != nil {
			if _, err := requireSameCompany(tx, s.Scope, userID,
				entityRef{models.EntityUnit, request.UnitID},
				entityRef{models.EntityTenant, *tenantID},
			); err != nil {
				return err
			}
		}
		if status, ok := updates["status"].(string); ok && status == string(models.MaintenanceCompleted) && request.CompletedAt == nil {
			updates["completed_at"] = time.Now().UTC()
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&models.MaintenanceRequest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return storageErr("update", models.EntityMaintenanceRequest, id, err)
		}
		return firstOrNotFound(tx, &request, models.EntityMaintenanceRequest, id)
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// 5. DeleteMaintenanceRequest 删除维修工单，仍被日历事件引用时拒绝
func (s *MaintenanceService) DeleteMaintenanceRequest(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityMaintenanceRequest, id); err != nil {
			return err
		}

		referenced, err := exists(tx, &models.CalendarEvent{}, "maintenance_request_id = ?", id)
		if err != nil {
			return storageErr("delete", models.EntityMaintenanceRequest, id, err)
		}
		if referenced {
			return apperr.Validation("maintenance request is referenced by calendar events; delete them first")
		}

		if err := rejectIfUploads(tx, models.EntityMaintenanceRequest, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.MaintenanceRequest{}).Error; err != nil {
			return storageErr("delete", models.EntityMaintenanceRequest, id, err)
		}
		return nil
	})
}
