package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/metrics"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

// ErrLanguageModelDisabled 未配置 OPENAI_API_KEY
var ErrLanguageModelDisabled = errors.New("language model is not configured")

const triageSystemPrompt = `You are an expert property maintenance analyzer. Analyze maintenance requests and categorize them. Respond with JSON in this format: { "category": "category_name", "priority": "low|medium|high|urgent", "estimatedCost": number }`

const assistantSystemPrompt = `You are a helpful property management assistant. You help landlords and property managers with questions about their properties, tenants, maintenance, finances, and general property management best practices.`

const assistantClosingPrompt = `Please provide helpful, accurate, and professional responses. If you don't know something specific about their data, explain what information you would need or suggest how they can find it in their system.`

// TriageSuggestion 语言模型给出的分诊建议，字段缺失时为 nil
type TriageSuggestion struct {
	Category      *string  `json:"category"`
	Priority      *string  `json:"priority"`
	EstimatedCost *float64 `json:"estimatedCost"`
}

// InterfaceLanguageModel 维修分诊与助手问答的外部协作方
type InterfaceLanguageModel interface {
	AnalyzeMaintenance(ctx context.Context, description string) (*TriageSuggestion, error)
	Ask(ctx context.Context, question, context string) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIClient OpenAI 兼容的 chat completions 客户端
type OpenAIClient struct {
	httpClient *resty.Client
	model      string
	enabled    bool
}

// NewOpenAIClient 创建语言模型客户端，超时由调用方的 context 控制
func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.OpenAIBaseURL, "/")).
		SetTimeout(cfg.AssistantTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.OpenAIAPIKey != "" {
		client.SetAuthToken(cfg.OpenAIAPIKey)
	}

	return &OpenAIClient{
		httpClient: client,
		model:      cfg.OpenAIModel,
		enabled:    cfg.OpenAIAPIKey != "",
	}
}

// 1. AnalyzeMaintenance 请求分诊建议，返回值未经校验
func (c *OpenAIClient) AnalyzeMaintenance(ctx context.Context, description string) (*TriageSuggestion, error) {
	content, err := c.complete(ctx, "triage", chatCompletionRequest{
		Messages: []chatMessage{
			{Role: "system", Content: triageSystemPrompt},
			{Role: "user", Content: "Analyze this maintenance request: " + description},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var suggestion TriageSuggestion
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		metrics.CollaboratorCalls.WithLabelValues("triage", "malformed").Inc()
		return nil, apperr.Collaborator("triage", fmt.Errorf("malformed triage output: %w", err))
	}
	return &suggestion, nil
}

// 2. Ask 助手问答，context 为可选的系统上下文
func (c *OpenAIClient) Ask(ctx context.Context, question, extra string) (string, error) {
	prompt := assistantSystemPrompt + "\n\n"
	if extra != "" {
		prompt += "Here is some context about the user's property management system: " + extra + "\n\n"
	}
	prompt += assistantClosingPrompt

	return c.complete(ctx, "assistant", chatCompletionRequest{
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: question},
		},
	})
}

func (c *OpenAIClient) complete(ctx context.Context, op string, body chatCompletionRequest) (string, error) {
	if !c.enabled {
		metrics.CollaboratorCalls.WithLabelValues(op, "disabled").Inc()
		return "", apperr.Collaborator(op, ErrLanguageModelDisabled)
	}
	body.Model = c.model

	var result chatCompletionResponse
	var apiErr apiErrorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		metrics.CollaboratorCalls.WithLabelValues(op, "error").Inc()
		logger.L().Warn("language model call failed", zap.String("operation", op), zap.Error(err))
		return "", apperr.Collaborator(op, err)
	}
	if resp.IsError() {
		metrics.CollaboratorCalls.WithLabelValues(op, "error").Inc()
		logger.L().Warn("language model returned error",
			zap.String("operation", op),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", apiErr.Error.Message),
		)
		return "", apperr.Collaborator(op, fmt.Errorf("status %d: %s", resp.StatusCode(), apiErr.Error.Message))
	}

	metrics.CollaboratorCalls.WithLabelValues(op, "ok").Inc()
	if len(result.Choices) == 0 {
		return "", nil
	}
	return result.Choices[0].Message.Content, nil
}
