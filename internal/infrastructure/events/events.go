// Package events publishes domain events to subscribers outside the API.
package events

import (
	"context"
	"sync"
	"time"
)

// 领域事件类型
const (
	MaintenanceCreated = "maintenance.created"
	TenancyCreated     = "tenancy.created"
	InvoicePaid        = "invoice.paid"
)

// Event 是发布到外部的领域事件
type Event struct {
	Type      string      `json:"type"`
	CompanyID string      `json:"company_id"`
	EntityID  string      `json:"entity_id"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewEvent 创建带时间戳的事件
func NewEvent(eventType, companyID, entityID string, data interface{}) Event {
	return Event{
		Type:      eventType,
		CompanyID: companyID,
		EntityID:  entityID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Publisher 发布领域事件，失败不影响业务写入
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Noop 未配置消息代理时使用
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close()                              {}

// Recorder 在内存中记录事件
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() {}

// Events 返回已记录事件的副本
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
