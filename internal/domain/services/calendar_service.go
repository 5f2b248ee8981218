package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

// CalendarEventInput 创建日历事件的请求数据
type CalendarEventInput struct {
	Title                string     `json:"title" binding:"required" example:"Annual inspection"`
	Description          string     `json:"description"`
	EventDate            *Timestamp `json:"event_date" swaggertype:"string" example:"2025-03-15T10:00:00Z"`
	EventType            string     `json:"event_type" example:"inspection"`
	CompanyID            string     `json:"company_id" binding:"required"`
	UnitID               *string    `json:"unit_id"`
	TenantID             *string    `json:"tenant_id"`
	MaintenanceRequestID *string    `json:"maintenance_request_id"`
}

// Validate 校验必填字段
func (in CalendarEventInput) Validate() error {
	if err := firstErr(required("title", in.Title), required("company_id", in.CompanyID)); err != nil {
		return err
	}
	if in.EventDate == nil || in.EventDate.IsZero() {
		return apperr.Validation("event_date is required")
	}
	return nil
}

// CalendarEventPatch 更新日历事件的请求数据
type CalendarEventPatch struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	EventDate            *Timestamp `json:"event_date" swaggertype:"string"`
	EventType            *string    `json:"event_type"`
	UnitID               *string    `json:"unit_id"`
	TenantID             *string    `json:"tenant_id"`
	MaintenanceRequestID *string    `json:"maintenance_request_id"`
}

// CalendarDay 月视图中的一天
type CalendarDay struct {
	Date    string                 `json:"date"` // YYYY-MM-DD
	InMonth bool                   `json:"in_month"`
	IsToday bool                   `json:"is_today"`
	Events  []models.CalendarEvent `json:"events"`
}

// CalendarGrid 6 周 x 7 天的月视图，周日为一周第一天
type CalendarGrid struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Weeks [][]CalendarDay `json:"weeks"`
}

// InterfaceCalendarService 定义日历服务接口
type InterfaceCalendarService interface {
	CreateEvent(ctx context.Context, userID string, in CalendarEventInput) (*models.CalendarEvent, error)
	GetEvent(ctx context.Context, userID, id string) (*models.CalendarEvent, error)
	GetEventsByCompany(ctx context.Context, userID, companyID string) ([]models.CalendarEvent, error)
	UpdateEvent(ctx context.Context, userID, id string, patch CalendarEventPatch) (*models.CalendarEvent, error)
	DeleteEvent(ctx context.Context, userID, id string) error
	MonthGrid(ctx context.Context, userID, companyID string, year, month int) (*CalendarGrid, error)
}

// CalendarService 提供日历事件相关的服务
type CalendarService struct {
	DB     *gorm.DB
	Config *config.Config
	Scope  InterfaceScopeService
	Now    func() time.Time
}

// NewCalendarService 创建一个新的日历服务
func NewCalendarService(db *gorm.DB, cfg *config.Config, scope InterfaceScopeService) InterfaceCalendarService {
	return &CalendarService{DB: db, Config: cfg, Scope: scope, Now: time.Now}
}

// eventRefs 事件引用的实体都必须属于事件所在公司
func eventRefs(companyID string, unitID, tenantID, maintenanceID *string) []entityRef {
	refs := []entityRef{{models.EntityCompany, companyID}}
	if unitID != nil {
		refs = append(refs, entityRef{models.EntityUnit, *unitID})
	}
	if tenantID != nil {
		refs = append(refs, entityRef{models.EntityTenant, *tenantID})
	}
	if maintenanceID != nil {
		refs = append(refs, entityRef{models.EntityMaintenanceRequest, *maintenanceID})
	}
	return refs
}

// 1. CreateEvent 创建日历事件
func (s *CalendarService) CreateEvent(ctx context.Context, userID string, in CalendarEventInput) (*models.CalendarEvent, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	event := &models.CalendarEvent{
		Title:                in.Title,
		Description:          in.Description,
		EventDate:            in.EventDate.Time,
		EventType:            strings.TrimSpace(in.EventType),
		CompanyID:            in.CompanyID,
		UnitID:               emptyToNil(in.UnitID),
		TenantID:             emptyToNil(in.TenantID),
		MaintenanceRequestID: emptyToNil(in.MaintenanceRequestID),
	}
	if event.EventType == "" {
		event.EventType = models.EventTypeOther
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := requireSameCompany(tx, s.Scope, userID,
			eventRefs(event.CompanyID, event.UnitID, event.TenantID, event.MaintenanceRequestID)...,
		); err != nil {
			return err
		}
		if err := tx.Create(event).Error; err != nil {
			return storageErr("create", models.EntityCalendarEvent, "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// 2. GetEvent 获取日历事件详情
func (s *CalendarService) GetEvent(ctx context.Context, userID, id string) (*models.CalendarEvent, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityCalendarEvent, id); err != nil {
		return nil, err
	}

	var event models.CalendarEvent
	if err := firstOrNotFound(db, &event, models.EntityCalendarEvent, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// 3. GetEventsByCompany 获取公司的日历事件，按日期升序
func (s *CalendarService) GetEventsByCompany(ctx context.Context, userID, companyID string) ([]models.CalendarEvent, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityCompany, companyID); err != nil {
		return nil, err
	}

	events := []models.CalendarEvent{}
	if err := db.Where("company_id = ?", companyID).Order("event_date ASC").Find(&events).Error; err != nil {
		return nil, storageErr("list", models.EntityCalendarEvent, companyID, err)
	}
	return events, nil
}

// 4. UpdateEvent 更新日历事件；关联字段传空字符串表示解除关联
func (s *CalendarService) UpdateEvent(ctx context.Context, userID, id string, patch CalendarEventPatch) (*models.CalendarEvent, error) {
	updates := make(map[string]interface{})
	if patch.Title != nil {
		if err := required("title", *patch.Title); err != nil {
			return nil, err
		}
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if t := timePtr(patch.EventDate); t != nil {
		updates["event_date"] = *t
	}
	if patch.EventType != nil {
		eventType := strings.TrimSpace(*patch.EventType)
		if eventType == "" {
			eventType = models.EventTypeOther
		}
		updates["event_type"] = eventType
	}

	var event models.CalendarEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityCalendarEvent, id); err != nil {
			return err
		}
		if err := firstOrNotFound(tx, &event, models.EntityCalendarEvent, id); err != nil {
			return err
		}

		unitID, tenantID, maintenanceID := event.UnitID, event.TenantID, event.MaintenanceRequestID
		if patch.UnitID != nil {
			unitID = emptyToNil(patch.UnitID)
			updates["unit_id"] = unitID
		}
		if patch.TenantID != nil {
			tenantID = emptyToNil(patch.TenantID)
			updates["tenant_id"] = tenantID
		}
		if patch.MaintenanceRequestID != nil {
			maintenanceID = emptyToNil(patch.MaintenanceRequestID)
			updates["maintenance_request_id"] = maintenanceID
		}
		if len(updates) == 0 {
			return nil
		}

		if _, err := requireSameCompany(tx, s.Scope, userID,
			eventRefs(event.CompanyID, unitID, tenantID, maintenanceID)...,
		); err != nil {
			return err
		}
		if err := tx.Model(&models.CalendarEvent{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return storageErr("update", models.EntityCalendarEvent, id, err)
		}
		return firstOrNotFound(tx, &event, models.EntityCalendarEvent, id)
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// 5. DeleteEvent 删除日历事件
func (s *CalendarService) DeleteEvent(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityCalendarEvent, id); err != nil {
			return err
		}
		if err := rejectIfUploads(tx, models.EntityCalendarEvent, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.CalendarEvent{}).Error; err != nil {
			return storageErr("delete", models.EntityCalendarEvent, id, err)
		}
		return nil
	})
}

// 6. MonthGrid 构建月视图，事件按 UTC 日期归入对应格子
func (s *CalendarService) MonthGrid(ctx context.Context, userID, companyID string, year, month int) (*CalendarGrid, error) {
	if month < 1 || month > 12 {
		return nil, apperr.Validation("month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return nil, apperr.Validation("year is out of range")
	}

	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityCompany, companyID); err != nil {
		return nil, err
	}

	start, end := gridBounds(year, time.Month(month))
	events := []models.CalendarEvent{}
	if err := db.Where("company_id = ? AND event_date >= ? AND event_date < ?", companyID, start, end).
		Order("event_date ASC").Find(&events).Error; err != nil {
		return nil, storageErr("grid", models.EntityCalendarEvent, companyID, err)
	}

	return buildGrid(year, time.Month(month), events, s.Now().UTC()), nil
}

// gridBounds 返回月视图覆盖的 [start, end) 区间
func gridBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	return start, start.AddDate(0, 0, 42)
}

func buildGrid(year int, month time.Month, events []models.CalendarEvent, now time.Time) *CalendarGrid {
	byDay := make(map[string][]models.CalendarEvent)
	for _, e := range events {
		key := e.EventDate.UTC().Format("2006-01-02")
		byDay[key] = append(byDay[key], e)
	}

	today := now.Format("2006-01-02")
	start, _ := gridBounds(year, month)
	grid := &CalendarGrid{Year: year, Month: int(month), Weeks: make([][]CalendarDay, 6)}
	for w := 0; w < 6; w++ {
		week := make([]CalendarDay, 7)
		for d := 0; d < 7; d++ {
			day := start.AddDate(0, 0, w*7+d)
			key := day.Format("2006-01-02")
			dayEvents := byDay[key]
			if dayEvents == nil {
				dayEvents = []models.CalendarEvent{}
			}
			week[d] = CalendarDay{
				Date:    key,
				InMonth: day.Month() == month,
				IsToday: key == today,
				Events:  dayEvents,
			}
		}
		grid.Weeks[w] = week
	}
	return grid
}
