package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/events"
)

func TestCreateTenancyValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	cases := map[string]TenancyInput{
		"missing lease start": {UnitID: p.unit.ID, TenantID: p.tenant.ID, MonthlyRent: ptr(100.0)},
		"missing rent":        {UnitID: p.unit.ID, TenantID: p.tenant.ID, LeaseStart: day("2025-01-01")},
		"negative rent":       {UnitID: p.unit.ID, TenantID: p.tenant.ID, LeaseStart: day("2025-01-01"), MonthlyRent: ptr(-1.0)},
		"end before start": {
			UnitID: p.unit.ID, TenantID: p.tenant.ID, MonthlyRent: ptr(100.0),
			LeaseStart: day("2025-06-01"), LeaseEnd: day("2025-01-01"),
		},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.tenancies.CreateTenancy(ctx, "user-a", in)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", err)
		})
	}
}

func TestOnlyOneActiveTenancyPerUnit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	second, err := env.tenants.CreateTenant(ctx, "user-a", TenantInput{FirstName: "Layla", LastName: "Haddad", CompanyID: p.company.ID})
	require.NoError(t, err)

	first, err := env.tenancies.CreateTenancy(ctx, "user-a", TenancyInput{
		UnitID: p.unit.ID, TenantID: p.tenant.ID, LeaseStart: day("2025-01-01"), MonthlyRent: ptr(8500.0),
	})
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	_, err = env.tenancies.CreateTenancy(ctx, "user-a", TenancyInput{
		UnitID: p.unit.ID, TenantID: second.ID, LeaseStart: day("2025-02-01"), MonthlyRent: ptr(9000.0),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", err)

	// 历史租约不受限制
	_, err = env.tenancies.CreateTenancy(ctx, "user-a", TenancyInput{
		UnitID: p.unit.ID, TenantID: second.ID, LeaseStart: day("2024-01-01"), MonthlyRent: ptr(7000.0), IsActive: ptr(false),
	})
	require.NoError(t, err)

	active, err := env.tenancies.GetActiveTenancy(ctx, "user-a", p.unit.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	// 结束当前租约后可以签新约
	_, err = env.tenancies.UpdateTenancy(ctx, "user-a", first.ID, TenancyPatch{IsActive: ptr(false)})
	require.NoError(t, err)

	active, err = env.tenancies.GetActiveTenancy(ctx, "user-a", p.unit.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = env.tenancies.CreateTenancy(ctx, "user-a", TenancyInput{
		UnitID: p.unit.ID, TenantID: second.ID, LeaseStart: day("2025-02-01"), MonthlyRent: ptr(9000.0),
	})
	require.NoError(t, err)

	list, err := env.tenancies.GetTenanciesByUnit(ctx, "user-a", p.unit.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2025-02-01", list[0].LeaseStart.Format("2006-01-02"))
	assert.Equal(t, "2024-01-01", list[2].LeaseStart.Format("2006-01-02"))
}

func TestCreateTenancyAddsLeaseEndReminder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	tenancy, err := env.tenancies.CreateTenancy(ctx, "user-a", TenancyInput{
		UnitID: p.unit.ID, TenantID: p.tenant.ID, MonthlyRent: ptr(8500.0), SecurityDeposit: 8500,
		LeaseStart: day("2025-01-01"), LeaseEnd: day("2025-12-31"),
	})
	require.NoError(t, err)

	evts, err := env.calendar.GetEventsByCompany(ctx, "user-a", p.company.ID)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, models.EventTypeLeaseEnd, evts[0].EventType)
	assert.Equal(t, "2025-12-31", evts[0].EventDate.UTC().Format("2006-01-02"))
	assert.Contains(t, evts[0].Title, "Omar Khalil")
	require.NotNil(t, evts[0].UnitID)
	assert.Equal(t, p.unit.ID, *evts[0].UnitID)

	published := env.events.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.TenancyCreated, published[0].Type)
	assert.Equal(t, p.company.ID, published[0].CompanyID)
	assert.Equal(t, tenancy.ID, published[0].EntityID)
}

func TestTenancyHiddenFromOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	tenancy, err := env.tenancies.CreateTenancy(ctx, "user-a", TenancyInput{
		UnitID: p.unit.ID, TenantID: p.tenant.ID, LeaseStart: day("2025-01-01"), MonthlyRent: ptr(8500.0),
	})
	require.NoError(t, err)

	_, err = env.tenancies.GetTenancy(ctx, "user-b", tenancy.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = env.tenancies.GetActiveTenancy(ctx, "user-b", p.unit.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Error(t, env.tenancies.DeleteTenancy(ctx, "user-b", tenancy.ID))

	require.NoError(t, env.tenancies.DeleteTenancy(ctx, "user-a", tenancy.ID))
	_, err = env.tenancies.GetTenancy(ctx, "user-a", tenancy.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
