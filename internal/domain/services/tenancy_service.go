package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/events"
)

// TenancyInput 创建租约的请求数据
type TenancyInput struct {
	UnitID          string     `json:"unit_id" binding:"required"`
	TenantID        string     `json:"tenant_id" binding:"required"`
	LeaseStart      *Timestamp `json:"lease_start" swaggertype:"string" example:"2025-01-01"`
	LeaseEnd        *Timestamp `json:"lease_end" swaggertype:"string" example:"2025-12-31"`
	MonthlyRent     *float64   `json:"monthly_rent" example:"8500"`
	SecurityDeposit float64    `json:"security_deposit" example:"8500"`
	IsActive        *bool      `json:"is_active"`
}

// Validate 校验必填字段、金额与租期
func (in TenancyInput) Validate() error {
	if err := firstErr(
		required("unit_id", in.UnitID),
		required("tenant_id", in.TenantID),
		money("security_deposit", in.SecurityDeposit),
	); err != nil {
		return err
	}
	if in.LeaseStart == nil || in.LeaseStart.IsZero() {
		return apperr.Validation("lease_start is required")
	}
	if in.MonthlyRent == nil {
		return apperr.Validation("monthly_rent is required")
	}
	if err := money("monthly_rent", *in.MonthlyRent); err != nil {
		return err
	}
	if end := timePtr(in.LeaseEnd); end != nil && end.Before(in.LeaseStart.Time) {
		return apperr.Validation("lease_end must not be before lease_start")
	}
	return nil
}

// TenancyPatch 更新租约的请求数据，结束租约时设置 is_active=false
type TenancyPatch struct {
	LeaseEnd        *Timestamp `json:"lease_end" swaggertype:"string"`
	MonthlyRent     *float64   `json:"monthly_rent"`
	SecurityDeposit *float64   `json:"security_deposit"`
	IsActive        *bool      `json:"is_active"`
}

// InterfaceTenancyService 定义租约服务接口
type InterfaceTenancyService interface {
	CreateTenancy(ctx context.Context, userID string, in TenancyInput) (*models.Tenancy, error)
	GetTenancy(ctx context.Context, userID, id string) (*models.Tenancy, error)
	GetTenanciesByUnit(ctx context.Context, userID, unitID string) ([]models.Tenancy, error)
	GetActiveTenancy(ctx context.Context, userID, unitID string) (*models.Tenancy, error)
	UpdateTenancy(ctx context.Context, userID, id string, patch TenancyPatch) (*models.Tenancy, error)
	DeleteTenancy(ctx context.Context, userID, id string) error
}

// TenancyService 提供租约相关的服务
type TenancyService struct {
	DB     *gorm.DB
	Config *config.Config
	Scope  InterfaceScopeService
	Events events.Publisher
}

// NewTenancyService 创建一个新的租约服务
func NewTenancyService(db *gorm.DB, cfg *config.Config, scope InterfaceScopeService, publisher events.Publisher) InterfaceTenancyService {
	return &TenancyService{DB: db, Config: cfg, Scope: scope, Events: publisher}
}

var errActiveTenancyExists = apperr.Validation("unit already has an active tenancy")

// ensureNoActiveTenancy 锁定单元并检查是否已有有效租约
func ensureNoActiveTenancy(tx *gorm.DB, unitID, exceptID string) error {
	if err := lockUnit(tx, unitID); err != nil {
		return storageErr("lock", models.EntityUnit, unitID, err)
	}
	query := "unit_id = ? AND is_active = ?"
	args := []interface{}{unitID, true}
	if exceptID != "" {
		query += " AND id <> ?"
		args = append(args, exceptID)
	}
	found, err := exists(tx, &models.Tenancy{}, query, args...)
	if err != nil {
		return storageErr("create", models.EntityTenancy, "", err)
	}
	if found {
		return errActiveTenancyExists
	}
	return nil
}

// 1. CreateTenancy 签订租约；有 lease_end 时同一事务内生成到期提醒
func (s *TenancyService) CreateTenancy(ctx context.Context, userID string, in TenancyInput) (*models.Tenancy, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tenancy := &models.Tenancy{
		UnitID:          in.UnitID,
		TenantID:        in.TenantID,
		LeaseStart:      in.LeaseStart.Time,
		LeaseEnd:        timePtr(in.LeaseEnd),
		MonthlyRent:     *in.MonthlyRent,
		SecurityDeposit: in.SecurityDeposit,
		IsActive:        in.IsActive == nil || *in.IsActive,
	}

	var companyID string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		companyID, err = requireSameCompany(tx, s.Scope, userID,
			entityRef{models.EntityUnit, in.UnitID},
			entityRef{models.EntityTenant, in.TenantID},
		)
		if err != nil {
			return err
		}

		if tenancy.IsActive {
			if err := ensureNoActiveTenancy(tx, in.UnitID, ""); err != nil {
				return err
			}
		}
		if err := tx.Create(tenancy).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errActiveTenancyExists
			}
			return storageErr("create", models.EntityTenancy, "", err)
		}

		if tenancy.LeaseEnd != nil {
			return s.createLeaseEndReminder(tx, companyID, tenancy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.NewEvent(events.TenancyCreated, companyID, tenancy.ID, tenancy))
	return tenancy, nil
}

func (s *TenancyService) createLeaseEndReminder(tx *gorm.DB, companyID string, tenancy *models.Tenancy) error {
	var tenant models.Tenant
	if err := firstOrNotFound(tx, &tenant, models.EntityTenant, tenancy.TenantID); err != nil {
		return err
	}
	var unit models.Unit
	if err := firstOrNotFound(tx, &unit, models.EntityUnit, tenancy.UnitID); err != nil {
		return err
	}

	unitID, tenantID := tenancy.UnitID, tenancy.TenantID
	reminder := &models.CalendarEvent{
		Title:       fmt.Sprintf("Lease ends: %s %s (unit %s)", tenant.FirstName, tenant.LastName, unit.UnitNumber),
		Description: "Automatically generated when the tenancy was created.",
		EventDate:   *tenancy.LeaseEnd,
		EventType:   models.EventTypeLeaseEnd,
		CompanyID:   companyID,
		UnitID:      &unitID,
		TenantID:    &tenantID,
	}
	if err := tx.Create(reminder).Error; err != nil {
		return storageErr("create", models.EntityCalendarEvent, "", err)
	}
	return nil
}

// 2. GetTenancy 获取租约详情
func (s *TenancyService) GetTenancy(ctx context.Context, userID, id string) (*models.Tenancy, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityTenancy, id); err != nil {
		return nil, err
	}

	var tenancy models.Tenancy
	if err := firstOrNotFound(db, &tenancy, models.EntityTenancy, id); err != nil {
		return nil, err
	}
	return &tenancy, nil
}

// 3. GetTenanciesByUnit 获取单元的全部租约，最新的在前
func (s *TenancyService) GetTenanciesByUnit(ctx context.Context, userID, unitID string) ([]models.Tenancy, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityUnit, unitID); err != nil {
		return nil, err
	}

	tenancies := []models.Tenancy{}
	if err := db.Where("unit_id = ?", unitID).Order("lease_start DESC").Find(&tenancies).Error; err != nil {
		return nil, storageErr("list", models.EntityTenancy, unitID, err)
	}
	return tenancies, nil
}

// 4. GetActiveTenancy 获取单元的有效租约，没有时返回 nil
func (s *TenancyService) GetActiveTenancy(ctx context.Context, userID, unitID string) (*models.Tenancy, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityUnit, unitID); err != nil {
		return nil, err
	}

	var tenancy models.Tenancy
	err := db.Where("unit_id = ? AND is_active = ?", unitID, true).Take(&tenancy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("active", models.EntityTenancy, unitID, err)
	}
	return &tenancy, nil
}

// 5. UpdateTenancy 更新或结束租约
func (s *TenancyService) UpdateTenancy(ctx context.Context, userID, id string, patch TenancyPatch) (*models.Tenancy, error) {
	if err := firstErr(moneyPtr("monthly_rent", patch.MonthlyRent), moneyPtr("security_deposit", patch.SecurityDeposit)); err != nil {
		return nil, err
	}

	var tenancy models.Tenancy
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityTenancy, id); err != nil {
			return err
		}
		if err := firstOrNotFound(tx, &tenancy, models.EntityTenancy, id); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if end := timePtr(patch.LeaseEnd); end != nil {
			if end.Before(tenancy.LeaseStart) {
				return apperr.Validation("lease_end must not be before lease_start")
			}
			updates["lease_end"] = *end
		}
		if patch.MonthlyRent != nil {
			updates["monthly_rent"] = *patch.MonthlyRent
		}
		if patch.SecurityDeposit != nil {
			updates["security_deposit"] = *patch.SecurityDeposit
		}
		if patch.IsActive != nil {
			if *patch.IsActive && !tenancy.IsActive {
				if err := ensureNoActiveTenancy(tx, tenancy.UnitID, id); err != nil {
					return err
				}
			}
			updates["is_active"] = *patch.IsActive
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&models.Tenancy{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errActiveTenancyExists
			}
			return storageErr("update", models.EntityTenancy, id, err)
		}
		return firstOrNotFound(tx, &tenancy, models.EntityTenancy, id)
	})
	if err != nil {
		return nil, err
	}
	return &tenancy, nil
}

// 6. DeleteTenancy 删除租约记录
func (s *TenancyService) DeleteTenancy(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityTenancy, id); err != nil {
			return err
		}
		if err := rejectIfUploads(tx, models.EntityTenancy, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Tenancy{}).Error; err != nil {
			return storageErr("delete", models.EntityTenancy, id, err)
		}
		return nil
	})
}
