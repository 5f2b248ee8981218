package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
)

func TestMonthGridShape(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")
	env.calendar.(*CalendarService).Now = func() time.Time {
		return time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	}

	_, err := env.calendar.CreateEvent(ctx, "user-a", CalendarEventInput{
		Title: "Inspection", EventDate: day("2025-03-15T10:00:00Z"), EventType: models.EventTypeInspection,
		CompanyID: p.company.ID, UnitID: &p.unit.ID,
	})
	require.NoError(t, err)
	// 不在该月视图范围内
	_, err = env.calendar.CreateEvent(ctx, "user-a", CalendarEventInput{
		Title: "Later", EventDate: day("2025-05-01"), CompanyID: p.company.ID,
	})
	require.NoError(t, err)

	grid, err := env.calendar.MonthGrid(ctx, "user-a", p.company.ID, 2025, 3)
	require.NoError(t, err)
	require.Len(t, grid.Weeks, 6)
	for _, week := range grid.Weeks {
		require.Len(t, week, 7)
	}

	// 2025-03-01 是周六，视图从 2 月 23 日(周日)开始
	assert.Equal(t, "2025-02-23", grid.Weeks[0][0].Date)
	assert.False(t, grid.Weeks[0][0].InMonth)
	assert.Equal(t, "2025-03-01", grid.Weeks[0][6].Date)
	assert.True(t, grid.Weeks[0][6].InMonth)
	assert.Equal(t, "2025-04-05", grid.Weeks[5][6].Date)

	saturday := grid.Weeks[2][6]
	assert.Equal(t, "2025-03-15", saturday.Date)
	assert.True(t, saturday.IsToday)
	require.Len(t, saturday.Events, 1)
	assert.Equal(t, "Inspection", saturday.Events[0].Title)

	total := 0
	for _, week := range grid.Weeks {
		for _, d := range week {
			total += len(d.Events)
			assert.NotNil(t, d.Events)
		}
	}
	assert.Equal(t, 1, total)
}

func TestMonthGridRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	_, err := env.calendar.MonthGrid(ctx, "user-a", p.company.ID, 2025, 13)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = env.calendar.MonthGrid(ctx, "user-b", p.company.ID, 2025, 3)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestCalendarEventReferencesMustShareCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seed(t, "user-a")
	b := env.seed(t, "user-b")

	_, err := env.calendar.CreateEvent(ctx, "user-a", CalendarEventInput{
		Title: "Viewing", EventDate: day("2025-03-02"), CompanyID: a.company.ID, UnitID: &b.unit.ID,
	})
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "%v", err)

	event, err := env.calendar.CreateEvent(ctx, "user-a", CalendarEventInput{
		Title: "Viewing", EventDate: day("2025-03-02"), CompanyID: a.company.ID, TenantID: &a.tenant.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeOther, event.EventType)

	// 空字符串解除关联
	updated, err := env.calendar.UpdateEvent(ctx, "user-a", event.ID, CalendarEventPatch{TenantID: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.TenantID)
}
