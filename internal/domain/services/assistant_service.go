package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

// 助手的固定回复
const (
	AssistantApology       = "I'm currently experiencing technical difficulties. Please try your question again in a moment."
	AssistantEmptyResponse = "I'm sorry, I couldn't process your request. Please try again."
)

// 助手日志分页
const (
	DefaultAssistantLogLimit = 50
	MaxAssistantLogLimit     = 200
)

// AssistantRequest 助手问答请求
type AssistantRequest struct {
	Question string `json:"question" binding:"required" example:"Which units have leases ending next month?"`
	Context  string `json:"context" example:"Company: Marina Heights"`
}

// AssistantReply 助手问答结果
type AssistantReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// InterfaceAssistantService 定义助手服务接口
type InterfaceAssistantService interface {
	Ask(ctx context.Context, userID, sessionID string, req AssistantRequest) (*AssistantReply, error)
	Logs(ctx context.Context, userID string, limit int) ([]models.AssistantLog, error)
}

// AssistantService 提供助手问答服务，每次问答追加一条日志
type AssistantService struct {
	DB     *gorm.DB
	Config *config.Config
	LLM    InterfaceLanguageModel
}

// NewAssistantService 创建一个新的助手服务
func NewAssistantService(db *gorm.DB, cfg *config.Config, llm InterfaceLanguageModel) InterfaceAssistantService {
	return &AssistantService{DB: db, Config: cfg, LLM: llm}
}

// 1. Ask 问答总是返回文本；模型失败或超时返回固定致歉，只有日志写入失败才返回错误
func (s *AssistantService) Ask(ctx context.Context, userID, sessionID string, req AssistantRequest) (*AssistantReply, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, apperr.Validation("question is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	answer := s.answer(ctx, req)

	entry := &models.AssistantLog{
		UserID:    userID,
		Query:     req.Question,
		Response:  answer,
		SessionID: sessionID,
	}
	// 日志与请求解耦，客户端断开也要落库
	if err := s.DB.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
		return nil, storageErr("create", "assistant_log", "", err)
	}

	return &AssistantReply{Response: answer, SessionID: sessionID}, nil
}

func (s *AssistantService) answer(ctx context.Context, req AssistantRequest) string {
	if s.LLM == nil {
		return AssistantApology
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.Config.AssistantTimeout)
	defer cancel()

	text, err := s.LLM.Ask(callCtx, req.Question, strings.TrimSpace(req.Context))
	if err != nil {
		logger.L().Warn("assistant answered with apology", zap.Error(err))
		return AssistantApology
	}
	if strings.TrimSpace(text) == "" {
		return AssistantEmptyResponse
	}
	return text
}

// 2. Logs 获取当前用户的问答记录，最新的在前
func (s *AssistantService) Logs(ctx context.Context, userID string, limit int) ([]models.AssistantLog, error) {
	if limit <= 0 {
		limit = DefaultAssistantLogLimit
	}
	if limit > MaxAssistantLogLimit {
		limit = MaxAssistantLogLimit
	}

	logs := []models.AssistantLog{}
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, storageErr("list", "assistant_log", userID, err)
	}
	return logs, nil
}
