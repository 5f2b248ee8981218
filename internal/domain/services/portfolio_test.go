package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
)

func TestCompanyRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.companies.CreateCompany(ctx, "user-a", CompanyInput{Name: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	created, err := env.companies.CreateCompany(ctx, "user-a", CompanyInput{Name: "Marina Holdings", Email: "ops@marina.ae"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-a", created.OwnerID)

	got, err := env.companies.GetCompany(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marina Holdings", got.Name)
	assert.Equal(t, "ops@marina.ae", got.Email)

	list, err := env.companies.GetCompanies(ctx, "user-b")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListsAreScopedToParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seed(t, "user-a")
	b := env.seed(t, "user-b")

	props, err := env.properties.GetPropertiesByCompany(ctx, "user-a", a.company.ID)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, a.property.ID, props[0].ID)

	_, err = env.properties.GetPropertiesByCompany(ctx, "user-a", b.company.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	units, err := env.units.GetUnitsByProperty(ctx, "user-b", b.property.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, b.unit.ID, units[0].ID)

	tenants, err := env.tenants.GetTenantsByCompany(ctx, "user-a", a.company.ID)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "Omar", tenants[0].FirstName)

	_, err = env.units.GetUnit(ctx, "user-a", b.unit.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestDeleteRejectedWhileChildrenExist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	err := env.properties.DeleteProperty(ctx, "user-a", p.property.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = env.tenancies.CreateTenancy(ctx, "user-a", TenancyInput{
		UnitID: p.unit.ID, TenantID: p.tenant.ID, LeaseStart: day("2025-01-01"), MonthlyRent: ptr(8500.0),
	})
	require.NoError(t, err)

	err = env.units.DeleteUnit(ctx, "user-a", p.unit.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	err = env.tenants.DeleteTenant(ctx, "user-a", p.tenant.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	// 无关联时可以删除
	spare, err := env.units.CreateUnit(ctx, "user-a", UnitInput{UnitNumber: "1205", PropertyID: p.property.ID})
	require.NoError(t, err)
	require.NoError(t, env.units.DeleteUnit(ctx, "user-a", spare.ID))

	_, err = env.units.GetUnit(ctx, "user-a", spare.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUnitStatusDerivedFromTenancy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	unit, err := env.units.GetUnit(ctx, "user-a", p.unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusVacant, unit.Status)

	_, err = env.tenancies.CreateTenancy(ctx, "user-a", TenancyInput{
		UnitID: p.unit.ID, TenantID: p.tenant.ID, LeaseStart: day("2025-01-01"), MonthlyRent: ptr(8500.0),
	})
	require.NoError(t, err)

	unit, err = env.units.GetUnit(ctx, "user-a", p.unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusOccupied, unit.Status)

	stats, err := env.companies.GetCompanyStats(ctx, "user-a", p.company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Properties)
	assert.Equal(t, int64(1), stats.Units)
	assert.Equal(t, int64(1), stats.ActiveTenancies)
	assert.Equal(t, int64(1), stats.UnitsByStatus[string(models.UnitStatusOccupied)])
}

func TestUpdatePropertyAppliesOnlyGivenFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	updated, err := env.properties.UpdateProperty(ctx, "user-a", p.property.ID, PropertyPatch{Name: ptr("Marina Heights II")})
	require.NoError(t, err)
	assert.Equal(t, "Marina Heights II", updated.Name)
	assert.Equal(t, "Dubai Marina", updated.Address)

	_, err = env.properties.UpdateProperty(ctx, "user-b", p.property.ID, PropertyPatch{Name: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
