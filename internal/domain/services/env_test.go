package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/blob"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/database"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/events"
)

// fakeLLM 可控的语言模型
type fakeLLM struct {
	suggestion *TriageSuggestion
	answer     string
	err        error
	delay      time.Duration
	calls      int32
}

func (f *fakeLLM) wait(ctx context.Context) error {
	atomic.AddInt32(&f.calls, 1)
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeLLM) AnalyzeMaintenance(ctx context.Context, _ string) (*TriageSuggestion, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.suggestion, f.err
}

func (f *fakeLLM) Ask(ctx context.Context, _, _ string) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	return f.answer, f.err
}

func (f *fakeLLM) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

type testEnv struct {
	db     *gorm.DB
	cfg    *config.Config
	llm    *fakeLLM
	events *events.Recorder
	blobs  *blob.Memory

	scope       InterfaceScopeService
	companies   InterfaceCompanyService
	properties  InterfacePropertyService
	units       InterfaceUnitService
	tenants     InterfaceTenantService
	tenancies   InterfaceTenancyService
	maintenance InterfaceMaintenanceService
	invoices    InterfaceInvoiceService
	calendar    InterfaceCalendarService
	uploads     InterfaceUploadService
	assistant   InterfaceAssistantService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pool := database.NewTestPool(t)
	cfg := &config.Config{
		TriageTimeout:    200 * time.Millisecond,
		AssistantTimeout: 200 * time.Millisecond,
		UploadMaxBytes:   1 << 10,
	}
	env := &testEnv{
		db:     pool.GetDB(),
		cfg:    cfg,
		llm:    &fakeLLM{},
		events: &events.Recorder{},
		blobs:  blob.NewMemory(),
	}
	env.scope = NewScopeService(env.db, nil)
	env.companies = NewCompanyService(env.db, cfg, env.scope)
	env.properties = NewPropertyService(env.db, cfg, env.scope)
	env.units = NewUnitService(env.db, cfg, env.scope)
	env.tenants = NewTenantService(env.db, cfg, env.scope)
	env.tenancies = NewTenancyService(env.db, cfg, env.scope, env.events)
	env.maintenance = NewMaintenanceService(env.db, cfg, env.scope, env.llm, env.events)
	env.invoices = NewInvoiceService(env.db, cfg, env.scope, env.events)
	env.calendar = NewCalendarService(env.db, cfg, env.scope)
	env.uploads = NewUploadService(env.db, cfg, env.scope, env.blobs)
	env.assistant = NewAssistantService(env.db, cfg, env.llm)
	return env
}

// portfolio 一个用户名下的公司、物业、单元与租客
type portfolio struct {
	company  *models.Company
	property *models.Property
	unit     *models.Unit
	tenant   *models.Tenant
}

func (e *testEnv) seed(t *testing.T, userID string) portfolio {
	t.Helper()
	ctx := context.Background()

	company, err := e.companies.CreateCompany(ctx, userID, CompanyInput{Name: "Marina Holdings"})
	require.NoError(t, err)
	property, err := e.properties.CreateProperty(ctx, userID, PropertyInput{
		Name: "Marina Heights", Address: "Dubai Marina", CompanyID: company.ID,
	})
	require.NoError(t, err)
	unit, err := e.units.CreateUnit(ctx, userID, UnitInput{UnitNumber: "1204", Rent: 8500, PropertyID: property.ID})
	require.NoError(t, err)
	tenant, err := e.tenants.CreateTenant(ctx, userID, TenantInput{FirstName: "Omar", LastName: "Khalil", CompanyID: company.ID})
	require.NoError(t, err)

	return portfolio{company: company, property: property, unit: unit, tenant: tenant}
}

func ptr[T any](v T) *T { return &v }

func day(s string) *Timestamp {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return &ts
}
