package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

// TenantInput 创建租客的请求数据
type TenantInput struct {
	FirstName        string `json:"first_name" binding:"required" example:"Omar"`
	LastName         string `json:"last_name" binding:"required" example:"Khalil"`
	Email            string `json:"email" example:"omar@example.com"`
	Phone            string `json:"phone" example:"+971 50 000 0000"`
	EmergencyContact string `json:"emergency_contact"`
	CompanyID        string `json:"company_id" binding:"required"`
}

// Validate 校验必填字段
func (in TenantInput) Validate() error {
	return firstErr(
		required("first_name", in.FirstName),
		required("last_name", in.LastName),
		required("company_id", in.CompanyID),
	)
}

// TenantPatch 更新租客的请求数据
type TenantPatch struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	EmergencyContact *string `json:"emergency_contact"`
}

func (p TenantPatch) updates() (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	if p.FirstName != nil {
		if err := required("first_name", *p.FirstName); err != nil {
			return nil, err
		}
		updates["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		if err := required("last_name", *p.LastName); err != nil {
			return nil, err
		}
		updates["last_name"] = *p.LastName
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.EmergencyContact != nil {
		updates["emergency_contact"] = *p.EmergencyContact
	}
	return updates, nil
}

// InterfaceTenantService 定义租客服务接口
type InterfaceTenantService interface {
	CreateTenant(ctx context.Context, userID string, in TenantInput) (*models.Tenant, error)
	GetTenant(ctx context.Context, userID, id string) (*models.Tenant, error)
	GetTenantsByCompany(ctx context.Context, userID, companyID string) ([]models.Tenant, error)
	UpdateTenant(ctx context.Context, userID, id string, patch TenantPatch) (*models.Tenant, error)
	DeleteTenant(ctx context.Context, userID, id string) error
}

// TenantService 提供租客相关的服务
type TenantService struct {
	DB     *gorm.DB
	Config *config.Config
	Scope  InterfaceScopeService
}

// NewTenantService 创建一个新的租客服务
func NewTenantService(db *gorm.DB, cfg *config.Config, scope InterfaceScopeService) InterfaceTenantService {
	return &TenantService{DB: db, Config: cfg, Scope: scope}
}

// 1. CreateTenant 在公司下登记租客
func (s *TenantService) CreateTenant(ctx context.Context, userID string, in TenantInput) (*models.Tenant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		EmergencyContact: in.EmergencyContact,
		CompanyID:        in.CompanyID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityCompany, in.CompanyID); err != nil {
			return err
		}
		if err := tx.Create(tenant).Error; err != nil {
			return storageErr("create", models.EntityTenant, "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// 2. GetTenant 获取租客详情
func (s *TenantService) GetTenant(ctx context.Context, userID, id string) (*models.Tenant, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityTenant, id); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	if err := firstOrNotFound(db, &tenant, models.EntityTenant, id); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// 3. GetTenantsByCompany 获取公司下的租客
func (s *TenantService) GetTenantsByCompany(ctx context.Context, userID, companyID string) ([]models.Tenant, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityCompany, companyID); err != nil {
		return nil, err
	}

	tenants := []models.Tenant{}
	if err := db.Where("company_id = ?", companyID).Order("created_at ASC").Find(&tenants).Error; err != nil {
		return nil, storageErr("list", models.EntityTenant, companyID, err)
	}
	return tenants, nil
}

// 4. UpdateTenant 更新租客信息
func (s *TenantService) UpdateTenant(ctx context.Context, userID, id string, patch TenantPatch) (*models.Tenant, error) {
	updates, err := patch.updates()
	if err != nil {
		return nil, err
	}

	var tenant models.Tenant
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityTenant, id); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Tenant{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return storageErr("update", models.EntityTenant, id, err)
			}
		}
		return firstOrNotFound(tx, &tenant, models.EntityTenant, id)
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// 5. DeleteTenant 删除租客，仍被租约、账单、维修或日历引用时拒绝
func (s *TenantService) DeleteTenant(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityTenant, id); err != nil {
			return err
		}

		children := []struct {
			model interface{}
			name  string
		}{
			{&models.Tenancy{}, "tenancies"},
			{&models.Invoice{}, "invoices"},
			{&models.MaintenanceRequest{}, "maintenance requests"},
			{&models.CalendarEvent{}, "calendar events"},
		}
		for _, child := range children {
			found, err := exists(tx, child.model, "tenant_id = ?", id)
			if err != nil {
				return storageErr("delete", models.EntityTenant, id, err)
			}
			if found {
				return apperr.Validation("tenant still has %s; delete them first", child.name)
			}
		}

		if err := rejectIfUploads(tx, models.EntityTenant, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Tenant{}).Error; err != nil {
			return storageErr("delete", models.EntityTenant, id, err)
		}
		return nil
	})
}
