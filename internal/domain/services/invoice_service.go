package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/events"
)

// InvoiceInput 创建账单的请求数据
type InvoiceInput struct {
	InvoiceNumber string     `json:"invoice_number" binding:"required" example:"INV-2025-0001"`
	Amount        *float64   `json:"amount" example:"8500"`
	DueDate       *Timestamp `json:"due_date" swaggertype:"string" example:"2025-02-01"`
	Description   string     `json:"description" example:"February rent"`
	TenantID      string     `json:"tenant_id" binding:"required"`
	UnitID        string     `json:"unit_id" binding:"required"`
	IsPaid        bool       `json:"is_paid"`
	PaidDate      *Timestamp `json:"paid_date" swaggertype:"string"`
}

// Validate 校验必填字段与金额
func (in InvoiceInput) Validate() error {
	if err := firstErr(
		required("invoice_number", in.InvoiceNumber),
		required("tenant_id", in.TenantID),
		required("unit_id", in.UnitID),
	); err != nil {
		return err
	}
	if in.Amount == nil {
		return apperr.Validation("amount is required")
	}
	if err := money("amount", *in.Amount); err != nil {
		return err
	}
	if in.DueDate == nil || in.DueDate.IsZero() {
		return apperr.Validation("due_date is required")
	}
	return nil
}

// InvoicePatch 更新账单的请求数据
type InvoicePatch struct {
	Amount      *float64   `json:"amount"`
	DueDate     *Timestamp `json:"due_date" swaggertype:"string"`
	Description *string    `json:"description"`
	IsPaid      *bool      `json:"is_paid"`
	PaidDate    *Timestamp `json:"paid_date" swaggertype:"string"`
}

// InvoiceExport 导出的文件
type InvoiceExport struct {
	FileName string
	Content  []byte
}

// InterfaceInvoiceService 定义账单服务接口
type InterfaceInvoiceService interface {
	CreateInvoice(ctx context.Context, userID string, in InvoiceInput) (*models.Invoice, error)
	GetInvoice(ctx context.Context, userID, id string) (*models.Invoice, error)
	GetInvoicesByTenant(ctx context.Context, userID, tenantID string) ([]models.Invoice, error)
	UpdateInvoice(ctx context.Context, userID, id string, patch InvoicePatch) (*models.Invoice, error)
	MarkPaid(ctx context.Context, userID, id string, paidDate *time.Time) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, userID, id string) error
	ExportTenantInvoices(ctx context.Context, userID, tenantID string) (*InvoiceExport, error)
}

// InvoiceService 提供账单相关的服务
type InvoiceService struct {
	DB     *gorm.DB
	Config *config.Config
	Scope  InterfaceScopeService
	Events events.Publisher
}

// NewInvoiceService 创建一个新的账单服务
func NewInvoiceService(db *gorm.DB, cfg *config.Config, scope InterfaceScopeService, publisher events.Publisher) InterfaceInvoiceService {
	return &InvoiceService{DB: db, Config: cfg, Scope: scope, Events: publisher}
}

func duplicateInvoiceNumber(number string) error {
	return apperr.Validation("invoice number %s already exists", number)
}

// 1. CreateInvoice 创建账单，账单号全局唯一
func (s *InvoiceService) CreateInvoice(ctx context.Context, userID string, in InvoiceInput) (*models.Invoice, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		Amount:        *in.Amount,
		DueDate:       in.DueDate.Time,
		Description:   in.Description,
		TenantID:      in.TenantID,
		UnitID:        in.UnitID,
		IsPaid:        in.IsPaid,
	}
	if invoice.IsPaid {
		paid := time.Now().UTC()
		if t := timePtr(in.PaidDate); t != nil {
			paid = *t
		}
		invoice.PaidDate = &paid
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := requireSameCompany(tx, s.Scope, userID,
			entityRef{models.EntityUnit, in.UnitID},
			entityRef{models.EntityTenant, in.TenantID},
		); err != nil {
			return err
		}

		taken, err := exists(tx, &models.Invoice{}, "invoice_number = ?", invoice.InvoiceNumber)
		if err != nil {
			return storageErr("create", models.EntityInvoice, "", err)
		}
		if taken {
			return duplicateInvoiceNumber(invoice.InvoiceNumber)
		}

		if err := tx.Create(invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicateInvoiceNumber(invoice.InvoiceNumber)
			}
			return storageErr("create", models.EntityInvoice, "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// 2. GetInvoice 获取账单详情
func (s *InvoiceService) GetInvoice(ctx context.Context, userID, id string) (*models.Invoice, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityInvoice, id); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := firstOrNotFound(db, &invoice, models.EntityInvoice, id); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// 3. GetInvoicesByTenant 获取租客的账单，到期日最晚的在前
func (s *InvoiceService) GetInvoicesByTenant(ctx context.Context, userID, tenantID string) ([]models.Invoice, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityTenant, tenantID); err != nil {
		return nil, err
	}
	return s.listByTenant(db, tenantID)
}

func (s *InvoiceService) listByTenant(db *gorm.DB, tenantID string) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	if err := db.Where("tenant_id = ?", tenantID).Order("due_date DESC").Find(&invoices).Error; err != nil {
		return nil, storageErr("list", models.EntityInvoice, tenantID, err)
	}
	return invoices, nil
}

// 4. UpdateInvoice 更新账单
func (s *InvoiceService) UpdateInvoice(ctx context.Context, userID, id string, patch InvoicePatch) (*models.Invoice, error) {
	if err := moneyPtr("amount", patch.Amount); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Amount != nil {
		updates["amount"] = *patch.Amount
	}
	if t := timePtr(patch.DueDate); t != nil {
		updates["due_date"] = *t
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.IsPaid != nil {
		updates["is_paid"] = *patch.IsPaid
		if *patch.IsPaid {
			paid := time.Now().UTC()
			if t := timePtr(patch.PaidDate); t != nil {
				paid = *t
			}
			updates["paid_date"] = paid
		} else {
			updates["paid_date"] = nil
		}
	}

	var invoice models.Invoice
	var becamePaid bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityInvoice, id); err != nil {
			return err
		}
		if err := firstOrNotFound(tx, &invoice, models.EntityInvoice, id); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		becamePaid = !invoice.IsPaid && patch.IsPaid != nil && *patch.IsPaid
		// 已支付的账单重复标记时保留原支付日期
		if invoice.IsPaid && patch.IsPaid != nil && *patch.IsPaid && patch.PaidDate == nil {
			delete(updates, "paid_date")
		}

		if err := tx.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return storageErr("update", models.EntityInvoice, id, err)
		}
		return firstOrNotFound(tx, &invoice, models.EntityInvoice, id)
	})
	if err != nil {
		return nil, err
	}

	if becamePaid {
		s.publishPaid(ctx, &invoice)
	}
	return &invoice, nil
}

// 5. MarkPaid 标记账单已支付，paidDate 为空时使用当前时间
func (s *InvoiceService) MarkPaid(ctx context.Context, userID, id string, paidDate *time.Time) (*models.Invoice, error) {
	patch := InvoicePatch{IsPaid: boolPtr(true)}
	if paidDate != nil {
		patch.PaidDate = &Timestamp{Time: paidDate.UTC()}
	}
	return s.UpdateInvoice(ctx, userID, id, patch)
}

func (s *InvoiceService) publishPaid(ctx context.Context, invoice *models.Invoice) {
	companyID, err := s.Scope.OwningCompany(s.DB.WithContext(ctx), models.EntityInvoice, invoice.ID)
	if err != nil {
		return
	}
	publish(ctx, s.Events, events.NewEvent(events.InvoicePaid, companyID, invoice.ID, invoice))
}

// 6. DeleteInvoice 删除账单
func (s *InvoiceService) DeleteInvoice(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityInvoice, id); err != nil {
			return err
		}
		if err := rejectIfUploads(tx, models.EntityInvoice, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
			return storageErr("delete", models.EntityInvoice, id, err)
		}
		return nil
	})
}

var invoiceExportHeaders = []string{"Invoice Number", "Description", "Amount", "Due Date", "Paid", "Paid Date"}

// 7. ExportTenantInvoices 导出租客账单为 XLSX
func (s *InvoiceService) ExportTenantInvoices(ctx context.Context, userID, tenantID string) (*InvoiceExport, error) {
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, models.EntityTenant, tenantID); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	if err := firstOrNotFound(db, &tenant, models.EntityTenant, tenantID); err != nil {
		return nil, err
	}
	invoices, err := s.listByTenant(db, tenantID)
	if err != nil {
		return nil, err
	}

	content, err := renderInvoiceSheet(invoices)
	if err != nil {
		return nil, storageErr("export", models.EntityInvoice, tenantID, err)
	}

	return &InvoiceExport{
		FileName: fmt.Sprintf("invoices-%s-%s.xlsx", strings.ToLower(tenant.LastName), time.Now().UTC().Format("20060102")),
		Content:  content,
	}, nil
}

func renderInvoiceSheet(invoices []models.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range invoiceExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	var total float64
	for i, inv := range invoices {
		row := i + 2
		paidDate := ""
		if inv.PaidDate != nil {
			paidDate = inv.PaidDate.Format("2006-01-02")
		}
		values := []interface{}{
			inv.InvoiceNumber,
			inv.Description,
			inv.Amount,
			inv.DueDate.Format("2006-01-02"),
			inv.IsPaid,
			paidDate,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		if !inv.IsPaid {
			total += inv.Amount
		}
	}

	// 末行汇总未支付金额
	summaryRow := len(invoices) + 3
	if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), "Outstanding"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("C%d", summaryRow), total); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func boolPtr(b bool) *bool { return &b }
