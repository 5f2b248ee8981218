package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

// CompanyInput 创建公司的请求数据
type CompanyInput struct {
	Name    string `json:"name" binding:"required" example:"Marina Holdings"`
	Email   string `json:"email" example:"ops@marina.ae"`
	Phone   string `json:"phone" example:"+971 4 000 0000"`
	Address string `json:"address" example:"Dubai Marina, Dubai"`
}

// Validate 校验必填字段
func (in CompanyInput) Validate() error {
	return required("name", in.Name)
}

// CompanyStats 公司仪表盘统计
type CompanyStats struct {
	Properties         int64            `json:"properties"`
	Units              int64            `json:"units"`
	UnitsByStatus      map[string]int64 `json:"units_by_status"`
	Tenants            int64            `json:"tenants"`
	ActiveTenancies    int64            `json:"active_tenancies"`
	OpenMaintenance    int64            `json:"open_maintenance"`
	UnpaidInvoices     int64            `json:"unpaid_invoices"`
	OutstandingBalance float64          `json:"outstanding_balance"`
}

// InterfaceCompanyService 定义公司服务接口
type InterfaceCompanyService interface {
	CreateCompany(ctx context.Context, userID string, in CompanyInput) (*models.Company, error)
	GetCompanies(ctx context.Context, userID string) ([]models.Company, error)
	GetCompany(ctx context.Context, userID, id string) (*models.Company, error)
	GetCompanyStats(ctx context.Context, userID, id string) (*CompanyStats, error)
}

// CompanyService 提供公司相关的服务
type CompanyService struct {
	DB     *gorm.DB
	Config *config.Config
	Scope  InterfaceScopeService
}

// NewCompanyService 创建一个新的公司服务
func NewCompanyService(db *gorm.DB, cfg *config.Config, scope InterfaceScopeService) InterfaceCompanyService {
	return &CompanyService{DB: db, Config: cfg, Scope: scope}
}

// 1. CreateCompany 创建公司，所有者为调用方
func (s *CompanyService) CreateCompany(ctx context.Context, userID string, in CompanyInput) (*models.Company, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	company := &models.Company{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		OwnerID: userID,
	}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		return nil, storageErr("create", models.EntityCompany, "", err)
	}

	s.Scope.Forget(ctx, userID)
	return company, nil
}

// 2. GetCompanies 获取调用方拥有的公司
func (s *CompanyService) GetCompanies(ctx context.Context, userID string) ([]models.Company, error) {
	companies := []models.Company{}
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at ASC").
		Find(&companies).Error; err != nil {
		return nil, storageErr("list", models.EntityCompany, userID, err)
	}
	return companies, nil
}

// 3. GetCompany 获取单个公司
func (s *CompanyService) GetCompany(ctx context.Context, userID, id string) (*models.Company, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityCompany, id); err != nil {
		return nil, err
	}

	var company models.Company
	if err := firstOrNotFound(db, &company, models.EntityCompany, id); err != nil {
		return nil, err
	}
	return &company, nil
}

// 4. GetCompanyStats 统计公司下的物业、单元、维修与账单
func (s *CompanyService) GetCompanyStats(ctx context.Context, userID, id string) (*CompanyStats, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityCompany, id); err != nil {
		return nil, err
	}

	stats := &CompanyStats{UnitsByStatus: map[string]int64{
		string(models.UnitStatusVacant):      0,
		string(models.UnitStatusOccupied):    0,
		string(models.UnitStatusMaintenance): 0,
	}}
	fail := func(err error) (*CompanyStats, error) {
		return nil, storageErr("stats", models.EntityCompany, id, err)
	}

	propertyIDs := db.Model(&models.Property{}).Select("id").Where("company_id = ?", id)
	unitIDs := db.Model(&models.Unit{}).Select("id").Where("property_id IN (?)", propertyIDs)

	if err := db.Model(&models.Property{}).Where("company_id = ?", id).Count(&stats.Properties).Error; err != nil {
		return fail(err)
	}
	if err := db.Model(&models.Tenant{}).Where("company_id = ?", id).Count(&stats.Tenants).Error; err != nil {
		return fail(err)
	}

	var units []models.Unit
	if err := db.Where("property_id IN (?)", propertyIDs).Find(&units).Error; err != nil {
		return fail(err)
	}
	if err := deriveUnitStatus(db, units); err != nil {
		return fail(err)
	}
	stats.Units = int64(len(units))
	for _, u := range units {
		stats.UnitsByStatus[string(u.Status)]++
	}

	if err := db.Model(&models.Tenancy{}).
		Where("unit_id IN (?) AND is_active = ?", unitIDs, true).
		Count(&stats.ActiveTenancies).Error; err != nil {
		return fail(err)
	}
	if err := db.Model(&models.MaintenanceRequest{}).
		Where("unit_id IN (?) AND status IN ?", unitIDs, []models.MaintenanceStatus{models.MaintenanceOpen, models.MaintenanceInProgress}).
		Count(&stats.OpenMaintenance).Error; err != nil {
		return fail(err)
	}

	var unpaid struct {
		Count int64
		Total float64
	}
	if err := db.Model(&models.Invoice{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("unit_id IN (?) AND is_paid = ?", unitIDs, false).
		Scan(&unpaid).Error; err != nil {
		return fail(err)
	}
	stats.UnpaidInvoices = unpaid.Count
	stats.OutstandingBalance = unpaid.Total

	return stats, nil
}
