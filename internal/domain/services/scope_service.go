package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

const ownedCompaniesTTL = 5 * time.Minute

// InterfaceScopeService 解析调用方可见的公司范围
type InterfaceScopeService interface {
	CompaniesOwnedBy(ctx context.Context, userID string) ([]string, error)
	Authorize(ctx context.Context, userID string, entity models.EntityType, id string) error
	AuthorizeIn(tx *gorm.DB, userID string, entity models.EntityType, id string) error
	OwningCompany(tx *gorm.DB, entity models.EntityType, id string) (string, error)
	Forget(ctx context.Context, userID string)
}

// ScopeService 沿实体链 (Unit→Property→Company …) 判断归属
type ScopeService struct {
	DB    *gorm.DB
	Cache InterfaceRedisService // 可为空
}

// NewScopeService 创建范围服务，cache 为空时直接查库
func NewScopeService(db *gorm.DB, cache InterfaceRedisService) InterfaceScopeService {
	return &ScopeService{DB: db, Cache: cache}
}

func ownedCompaniesKey(userID string) string {
	return "scope:companies:" + userID
}

// 1. CompaniesOwnedBy 返回用户拥有的公司ID
func (s *ScopeService) CompaniesOwnedBy(ctx context.Context, userID string) ([]string, error) {
	if s.Cache != nil {
		var cached []string
		if err := s.Cache.Get(ctx, ownedCompaniesKey(userID), &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, ErrCacheMiss) {
			logger.Warning("读取公司范围缓存失败: %v", err)
		}
	}

	ids := []string{}
	if err := s.DB.WithContext(ctx).Model(&models.Company{}).
		Where("owner_id = ?", userID).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, storageErr("companiesOwnedBy", models.EntityCompany, userID, err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, ownedCompaniesKey(userID), ids, ownedCompaniesTTL); err != nil {
			logger.Warning("写入公司范围缓存失败: %v", err)
		}
	}
	return ids, nil
}

// 2. Authorize 检查实体是否属于调用方
func (s *ScopeService) Authorize(ctx context.Context, userID string, entity models.EntityType, id string) error {
	return s.AuthorizeIn(s.DB.WithContext(ctx), userID, entity, id)
}

// 3. AuthorizeIn 同 Authorize，使用调用方的事务
func (s *ScopeService) AuthorizeIn(tx *gorm.DB, userID string, entity models.EntityType, id string) error {
	companyID, err := s.OwningCompany(tx, entity, id)
	if err != nil {
		return err
	}

	var owners []string
	if err := tx.Model(&models.Company{}).Where("id = ?", companyID).Pluck("owner_id", &owners).Error; err != nil {
		return storageErr("authorize", entity, id, err)
	}
	if len(owners) == 0 {
		return apperr.NotFound(string(entity), id)
	}
	if owners[0] != userID {
		return apperr.Forbidden(string(entity), id)
	}
	return nil
}

// 4. OwningCompany 沿引用链解析实体所属公司
func (s *ScopeService) OwningCompany(tx *gorm.DB, entity models.EntityType, id string) (string, error) {
	switch entity {
	case models.EntityCompany:
		return s.parent(tx, entity, &models.Company{}, "id", id)
	case models.EntityProperty:
		return s.parent(tx, entity, &models.Property{}, "company_id", id)
	case models.EntityTenant:
		return s.parent(tx, entity, &models.Tenant{}, "company_id", id)
	case models.EntityCalendarEvent:
		return s.parent(tx, entity, &models.CalendarEvent{}, "company_id", id)
	case models.EntityUnit:
		propertyID, err := s.parent(tx, entity, &models.Unit{}, "property_id", id)
		if err != nil {
			return "", err
		}
		return s.chained(tx, entity, id, models.EntityProperty, propertyID)
	case models.EntityTenancy:
		unitID, err := s.parent(tx, entity, &models.Tenancy{}, "unit_id", id)
		if err != nil {
			return "", err
		}
		return s.chained(tx, entity, id, models.EntityUnit, unitID)
	case models.EntityMaintenanceRequest:
		unitID, err := s.parent(tx, entity, &models.MaintenanceRequest{}, "unit_id", id)
		if err != nil {
			return "", err
		}
		return s.chained(tx, entity, id, models.EntityUnit, unitID)
	case models.EntityInvoice:
		unitID, err := s.parent(tx, entity, &models.Invoice{}, "unit_id", id)
		if err != nil {
			return "", err
		}
		return s.chained(tx, entity, id, models.EntityUnit, unitID)
	case models.EntityUpload:
		var upload models.Upload
		if err := firstOrNotFound(tx, &upload, entity, id); err != nil {
			return "", err
		}
		if !upload.EntityType.Attachable() {
			return "", apperr.NotFound(string(entity), id)
		}
		return s.chained(tx, entity, id, upload.EntityType, upload.EntityID)
	default:
		return "", apperr.Validation("unknown entity type %q", entity)
	}
}

// Forget 清除用户的公司范围缓存
func (s *ScopeService) Forget(ctx context.Context, userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, ownedCompaniesKey(userID)); err != nil {
		logger.Warning("清除公司范围缓存失败: %v", err)
	}
}

// parent 读取实体上的父引用列
func (s *ScopeService) parent(tx *gorm.DB, entity models.EntityType, model interface{}, column, id string) (string, error) {
	var values []string
	if err := tx.Model(model).Where("id = ?", id).Limit(1).Pluck(column, &values).Error; err != nil {
		return "", storageErr("resolve", entity, id, err)
	}
	if len(values) == 0 {
		return "", apperr.NotFound(string(entity), id)
	}
	return values[0], nil
}

// chained 继续解析父实体；父实体缺失时报告原实体不存在
func (s *ScopeService) chained(tx *gorm.DB, entity models.EntityType, id string, parent models.EntityType, parentID string) (string, error) {
	companyID, err := s.OwningCompany(tx, parent, parentID)
	if apperr.Is(err, apperr.KindNotFound) {
		return "", apperr.NotFound(string(entity), id)
	}
	return companyID, err
}

// entityRef 引用的实体
type entityRef struct {
	Type models.EntityType
	ID   string
}

// requireSameCompany 授权全部引用并要求它们属于同一公司，返回该公司ID
func requireSameCompany(tx *gorm.DB, scope InterfaceScopeService, userID string, refs ...entityRef) (string, error) {
	companyID := ""
	var first entityRef
	for _, ref := range refs {
		if ref.ID == "" {
			continue
		}
		if err := scope.AuthorizeIn(tx, userID, ref.Type, ref.ID); err != nil {
			return "", err
		}
		owner, err := scope.OwningCompany(tx, ref.Type, ref.ID)
		if err != nil {
			return "", err
		}
		if companyID == "" {
			companyID, first = owner, ref
			continue
		}
		if owner != companyID {
			return "", apperr.Validation("%s %s and %s %s belong to different companies", first.Type, first.ID, ref.Type, ref.ID)
		}
	}
	return companyID, nil
}
