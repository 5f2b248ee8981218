package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

func TestTopic(t *testing.T) {
	e := NewEvent(InvoicePaid, "c-1", "i-1", nil)
	assert.Equal(t, "propertypro/companies/c-1/invoice.paid", Topic("propertypro", e))
	assert.NotZero(t, e.Timestamp)
}

func TestOpen_WithoutBrokerIsNoop(t *testing.T) {
	p := Open(&config.Config{})
	_, ok := p.(Noop)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), NewEvent(TenancyCreated, "c", "t", nil)))
	p.Close()
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), NewEvent(MaintenanceCreated, "c-1", "m-1", map[string]string{"priority": "high"})))

	got := r.Events()
	require.Len(t, got, 1)
	assert.Equal(t, MaintenanceCreated, got[0].Type)
	assert.Equal(t, "m-1", got[0].EntityID)
}
