package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

const publishTimeout = 3 * time.Second

// MQTTPublisher 通过MQTT发布领域事件
type MQTTPublisher struct {
	client    mqtt.Client
	qos       byte
	topicRoot string
}

// NewMQTTPublisher 创建并连接MQTT客户端
func NewMQTTPublisher(cfg *config.Config) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免同一服务多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.MQTTClientID, uuid.NewString()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(true)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warning("[MQTT] 连接丢失: %v", err)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("[MQTT] 成功连接到 %s", cfg.MQTTBrokerURL)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("[MQTT] 连接 %s 超时", cfg.MQTTBrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("[MQTT] 连接失败: %w", err)
	}

	qos := cfg.MQTTQoS
	if qos < 0 || qos > 2 {
		qos = 1
	}
	return &MQTTPublisher{client: client, qos: byte(qos), topicRoot: cfg.MQTTTopicRoot}, nil
}

// Topic 事件主题: <root>/companies/<companyID>/<type>
func Topic(root string, event Event) string {
	return strings.Join([]string{root, "companies", event.CompanyID, event.Type}, "/")
}

// Publish 发布事件，等待代理确认或超时
func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	token := p.client.Publish(Topic(p.topicRoot, event), p.qos, false, payload)
	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("[MQTT] 发布 %s 超时", event.Type)
	}
	return token.Error()
}

// Close 断开与MQTT服务器的连接
func (p *MQTTPublisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// Open 配置了代理地址时返回MQTT发布器，否则返回 Noop
func Open(cfg *config.Config) Publisher {
	if cfg.MQTTBrokerURL == "" {
		return Noop{}
	}
	p, err := NewMQTTPublisher(cfg)
	if err != nil {
		logger.Error("MQTT发布器初始化失败，领域事件将不会发布: %v", err)
		return Noop{}
	}
	return p
}
