package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

// PropertyInput 创建物业的请求数据
type PropertyInput struct {
	Name        string `json:"name" binding:"required" example:"Marina Heights"`
	Address     string `json:"address" binding:"required" example:"Al Marsa St, Dubai Marina"`
	Type        string `json:"type" example:"apartment"`
	Description string `json:"description"`
	TotalUnits  int    `json:"total_units" example:"24"`
	ImageURL    string `json:"image_url"`
	CompanyID   string `json:"company_id" binding:"required"`
}

// Validate 校验必填字段
func (in PropertyInput) Validate() error {
	return firstErr(
		required("name", in.Name),
		required("address", in.Address),
		required("company_id", in.CompanyID),
		nonNegative("total_units", &in.TotalUnits),
	)
}

// PropertyPatch 更新物业的请求数据，nil 字段保持不变
type PropertyPatch struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	TotalUnits  *int    `json:"total_units"`
	ImageURL    *string `json:"image_url"`
}

// updates 校验并转换为更新映射
func (p PropertyPatch) updates() (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	if p.Name != nil {
		if err := required("name", *p.Name); err != nil {
			return nil, err
		}
		updates["name"] = *p.Name
	}
	if p.Address != nil {
		if err := required("address", *p.Address); err != nil {
			return nil, err
		}
		updates["address"] = *p.Address
	}
	if p.Type != nil {
		updates["type"] = *p.Type
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.TotalUnits != nil {
		if err := nonNegative("total_units", p.TotalUnits); err != nil {
			return nil, err
		}
		updates["total_units"] = *p.TotalUnits
	}
	if p.ImageURL != nil {
		updates["image_url"] = *p.ImageURL
	}
	return updates, nil
}

// InterfacePropertyService 定义物业服务接口
type InterfacePropertyService interface {
	CreateProperty(ctx context.Context, userID string, in PropertyInput) (*models.Property, error)
	GetProperty(ctx context.Context, userID, id string) (*models.Property, error)
	GetPropertiesByCompany(ctx context.Context, userID, companyID string) ([]models.Property, error)
	UpdateProperty(ctx context.Context, userID, id string, patch PropertyPatch) (*models.Property, error)
	DeleteProperty(ctx context.Context, userID, id string) error
}

// PropertyService 提供物业相关的服务
type PropertyService struct {
	DB     *gorm.DB
	Config *config.Config
	Scope  InterfaceScopeService
}

// NewPropertyService 创建一个新的物业服务
func NewPropertyService(db *gorm.DB, cfg *config.Config, scope InterfaceScopeService) InterfacePropertyService {
	return &PropertyService{DB: db, Config: cfg, Scope: scope}
}

// 1. CreateProperty 在调用方的公司下创建物业
func (s *PropertyService) CreateProperty(ctx context.Context, userID string, in PropertyInput) (*models.Property, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	property := &models.Property{
		Name:        in.Name,
		Address:     in.Address,
		Type:        in.Type,
		Description: in.Description,
		TotalUnits:  in.TotalUnits,
		ImageURL:    in.ImageURL,
		CompanyID:   in.CompanyID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityCompany, in.CompanyID); err != nil {
			return err
		}
		if err := tx.Create(property).Error; err != nil {
			return storageErr("create", models.EntityProperty, "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

// 2. GetProperty 获取物业详情
func (s *PropertyService) GetProperty(ctx context.Context, userID, id string) (*models.Property, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityProperty, id); err != nil {
		return nil, err
	}

	var property models.Property
	if err := firstOrNotFound(db, &property, models.EntityProperty, id); err != nil {
		return nil, err
	}
	return &property, nil
}

// 3. GetPropertiesByCompany 获取公司下的物业
func (s *PropertyService) GetPropertiesByCompany(ctx context.Context, userID, companyID string) ([]models.Property, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityCompany, companyID); err != nil {
		return nil, err
	}

	properties := []models.Property{}
	if err := db.Where("company_id = ?", companyID).Order("created_at ASC").Find(&properties).Error; err != nil {
		return nil, storageErr("list", models.EntityProperty, companyID, err)
	}
	return properties, nil
}

// 4. UpdateProperty 更新物业信息
func (s *PropertyService) UpdateProperty(ctx context.Context, userID, id string, patch PropertyPatch) (*models.Property, error) {
	updates, err := patch.updates()
	if err != nil {
		return nil, err
	}

	var property models.Property
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityProperty, id); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Property{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return storageErr("update", models.EntityProperty, id, err)
			}
		}
		return firstOrNotFound(tx, &property, models.EntityProperty, id)
	})
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// 5. DeleteProperty 删除物业，存在单元时拒绝
func (s *PropertyService) DeleteProperty(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityProperty, id); err != nil {
			return err
		}

		// 检查是否有关联的单元
		hasUnits, err := exists(tx, &models.Unit{}, "property_id = ?", id)
		if err != nil {
			return storageErr("delete", models.EntityProperty, id, err)
		}
		if hasUnits {
			return apperr.Validation("property still has units; delete them first")
		}

		if err := rejectIfUploads(tx, models.EntityProperty, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Property{}).Error; err != nil {
			return storageErr("delete", models.EntityProperty, id, err)
		}
		return nil
	})
}
