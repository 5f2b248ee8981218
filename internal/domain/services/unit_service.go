package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

// UnitInput 创建单元的请求数据
type UnitInput struct {
	UnitNumber string  `json:"unit_number" binding:"required" example:"1204"`
	Bedrooms   int     `json:"bedrooms" example:"2"`
	Bathrooms  int     `json:"bathrooms" example:"2"`
	SquareFeet int     `json:"square_feet" example:"1150"`
	Rent       float64 `json:"rent" example:"8500"`
	Deposit    float64 `json:"deposit" example:"8500"`
	Status     string  `json:"status" example:"vacant"` // vacant, occupied, maintenance
	PropertyID string  `json:"property_id" binding:"required"`
}

// Validate 校验必填字段与取值
func (in UnitInput) Validate() error {
	return firstErr(
		required("unit_number", in.UnitNumber),
		required("property_id", in.PropertyID),
		nonNegative("bedrooms", &in.Bedrooms),
		nonNegative("bathrooms", &in.Bathrooms),
		nonNegative("square_feet", &in.SquareFeet),
		money("rent", in.Rent),
		money("deposit", in.Deposit),
		validUnitStatus(in.Status),
	)
}

// UnitPatch 更新单元的请求数据
type UnitPatch struct {
	UnitNumber *string  `json:"unit_number"`
	Bedrooms   *int     `json:"bedrooms"`
	Bathrooms  *int     `json:"bathrooms"`
	SquareFeet *int     `json:"square_feet"`
	Rent       *float64 `json:"rent"`
	Deposit    *float64 `json:"deposit"`
	Status     *string  `json:"status"`
}

func (p UnitPatch) updates() (map[string]interface{}, error) {
	err := firstErr(
		nonNegative("bedrooms", p.Bedrooms),
		nonNegative("bathrooms", p.Bathrooms),
		nonNegative("square_feet", p.SquareFeet),
		moneyPtr("rent", p.Rent),
		moneyPtr("deposit", p.Deposit),
	)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if p.UnitNumber != nil {
		if err := required("unit_number", *p.UnitNumber); err != nil {
			return nil, err
		}
		updates["unit_number"] = *p.UnitNumber
	}
	if p.Bedrooms != nil {
		updates["bedrooms"] = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		updates["bathrooms"] = *p.Bathrooms
	}
	if p.SquareFeet != nil {
		updates["square_feet"] = *p.SquareFeet
	}
	if p.Rent != nil {
		updates["rent"] = *p.Rent
	}
	if p.Deposit != nil {
		updates["deposit"] = *p.Deposit
	}
	if p.Status != nil {
		if *p.Status == "" {
			return nil, apperr.Validation("status must not be empty")
		}
		if err := validUnitStatus(*p.Status); err != nil {
			return nil, err
		}
		updates["status"] = *p.Status
	}
	return updates, nil
}

func validUnitStatus(status string) error {
	if status != "" && !models.UnitStatus(status).Valid() {
		return apperr.Validation("status must be one of vacant, occupied, maintenance")
	}
	return nil
}

// deriveUnitStatus 读取时推导状态: maintenance 优先，其次有效租约为 occupied
func deriveUnitStatus(tx *gorm.DB, units []models.Unit) error {
	if len(units) == 0 {
		return nil
	}
	ids := make([]string, len(units))
	for i := range units {
		ids[i] = units[i].ID
	}

	var occupied []string
	if err := tx.Model(&models.Tenancy{}).
		Where("unit_id IN ? AND is_active = ?", ids, true).
		Pluck("unit_id", &occupied).Error; err != nil {
		return err
	}
	active := make(map[string]bool, len(occupied))
	for _, id := range occupied {
		active[id] = true
	}

	for i := range units {
		switch {
		case units[i].Status == models.UnitStatusMaintenance:
		case active[units[i].ID]:
			units[i].Status = models.UnitStatusOccupied
		default:
			units[i].Status = models.UnitStatusVacant
		}
	}
	return nil
}

// InterfaceUnitService 定义单元服务接口
type InterfaceUnitService interface {
	CreateUnit(ctx context.Context, userID string, in UnitInput) (*models.Unit, error)
	GetUnit(ctx context.Context, userID, id string) (*models.Unit, error)
	GetUnitsByProperty(ctx context.Context, userID, propertyID string) ([]models.Unit, error)
	UpdateUnit(ctx context.Context, userID, id string, patch UnitPatch) (*models.Unit, error)
	DeleteUnit(ctx context.Context, userID, id string) error
}

// UnitService 提供单元相关的服务
type UnitService struct {
	DB     *gorm.DB
	Config *config.Config
	Scope  InterfaceScopeService
}

// NewUnitService 创建一个新的单元服务
func NewUnitService(db *gorm.DB, cfg *config.Config, scope InterfaceScopeService) InterfaceUnitService {
	return &UnitService{DB: db, Config: cfg, Scope: scope}
}

// 1. CreateUnit 在物业下创建单元
func (s *UnitService) CreateUnit(ctx context.Context, userID string, in UnitInput) (*models.Unit, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	unit := &models.Unit{
		UnitNumber: in.UnitNumber,
		Bedrooms:   in.Bedrooms,
		Bathrooms:  in.Bathrooms,
		SquareFeet: in.SquareFeet,
		Rent:       in.Rent,
		Deposit:    in.Deposit,
		Status:     models.UnitStatus(in.Status),
		PropertyID: in.PropertyID,
	}
	if unit.Status == "" {
		unit.Status = models.UnitStatusVacant
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityProperty, in.PropertyID); err != nil {
			return err
		}
		if err := tx.Create(unit).Error; err != nil {
			return storageErr("create", models.EntityUnit, "", err)
		}
		units := []models.Unit{*unit}
		if err := deriveUnitStatus(tx, units); err != nil {
			return storageErr("create", models.EntityUnit, unit.ID, err)
		}
		*unit = units[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// 2. GetUnit 获取单元详情，状态为推导值
func (s *UnitService) GetUnit(ctx context.Context, userID, id string) (*models.Unit, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityUnit, id); err != nil {
		return nil, err
	}
	return loadUnit(db, id)
}

func loadUnit(tx *gorm.DB, id string) (*models.Unit, error) {
	var unit models.Unit
	if err := firstOrNotFound(tx, &unit, models.EntityUnit, id); err != nil {
		return nil, err
	}
	units := []models.Unit{unit}
	if err := deriveUnitStatus(tx, units); err != nil {
		return nil, storageErr("get", models.EntityUnit, id, err)
	}
	return &units[0], nil
}

// 3. GetUnitsByProperty 获取物业下的单元
func (s *UnitService) GetUnitsByProperty(ctx context.Context, userID, propertyID string) ([]models.Unit, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityProperty, propertyID); err != nil {
		return nil, err
	}

	units := []models.Unit{}
	if err := db.Where("property_id = ?", propertyID).Order("created_at ASC").Find(&units).Error; err != nil {
		return nil, storageErr("list", models.EntityUnit, propertyID, err)
	}
	if err := deriveUnitStatus(db, units); err != nil {
		return nil, storageErr("list", models.EntityUnit, propertyID, err)
	}
	return units, nil
}

// 4. UpdateUnit 更新单元信息
func (s *UnitService) UpdateUnit(ctx context.Context, userID, id string, patch UnitPatch) (*models.Unit, error) {
	updates, err := patch.updates()
	if err != nil {
		return nil, err
	}

	var unit *models.Unit
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityUnit, id); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Unit{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return storageErr("update", models.EntityUnit, id, err)
			}
		}
		var err error
		unit, err = loadUnit(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// 5. DeleteUnit 删除单元，仍被其他记录引用时拒绝
func (s *UnitService) DeleteUnit(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityUnit, id); err != nil {
			return err
		}

		children := []struct {
			model interface{}
			name  string
		}{
			{&models.Tenancy{}, "tenancies"},
			{&models.MaintenanceRequest{}, "maintenance requests"},
			{&models.Invoice{}, "invoices"},
			{&models.CalendarEvent{}, "calendar events"},
		}
		for _, child := range children {
			found, err := exists(tx, child.model, "unit_id = ?", id)
			if err != nil {
				return storageErr("delete", models.EntityUnit, id, err)
			}
			if found {
				return apperr.Validation("unit still has %s; delete them first", child.name)
			}
		}

		if err := rejectIfUploads(tx, models.EntityUnit, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Unit{}).Error; err != nil {
			return storageErr("delete", models.EntityUnit, id, err)
		}
		return nil
	})
}
