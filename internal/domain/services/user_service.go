package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

const entityUser models.EntityType = "user"

// UserProfile 身份提供方给出的用户资料
type UserProfile struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// DevLoginRequest 开发环境登录请求
type DevLoginRequest struct {
	Email     string `json:"email" binding:"required" example:"owner@example.com"`
	FirstName string `json:"first_name" example:"Layla"`
	LastName  string `json:"last_name" example:"Haddad"`
}

// LoginResult 表示登录结果
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt interface{}  `json:"expires_at"`
	User      *models.User `json:"user"`
}

// InterfaceUserService 定义用户服务接口
type InterfaceUserService interface {
	EnsureUser(ctx context.Context, profile UserProfile) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	DevLogin(ctx context.Context, req DevLoginRequest) (*LoginResult, error)
}

// UserService 提供用户相关的服务
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
	JWT    InterfaceJWTService
}

// NewUserService 创建一个新的用户服务
func NewUserService(db *gorm.DB, cfg *config.Config, jwtService InterfaceJWTService) InterfaceUserService {
	return &UserService{DB: db, Config: cfg, JWT: jwtService}
}

// 1. EnsureUser 首次登录时创建用户，之后刷新资料
func (s *UserService) EnsureUser(ctx context.Context, profile UserProfile) (*models.User, error) {
	if err := required("id", profile.ID); err != nil {
		return nil, err
	}
	if len(profile.ID) > 36 {
		return nil, apperr.Validation("id must be at most 36 characters")
	}

	user := &models.User{
		BaseModel:       models.BaseModel{ID: profile.ID},
		Email:           normalizeEmail(profile.Email),
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		ProfileImageURL: profile.ProfileImageURL,
	}

	// 只在令牌携带资料时覆盖已有字段
	var updates []string
	if user.Email != nil {
		updates = append(updates, "email")
	}
	if profile.FirstName != "" {
		updates = append(updates, "first_name")
	}
	if profile.LastName != "" {
		updates = append(updates, "last_name")
	}
	if profile.ProfileImageURL != "" {
		updates = append(updates, "profile_image_url")
	}
	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}
	if len(updates) > 0 {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(append(updates, "updated_at")),
		}
	}

	err := s.DB.WithContext(ctx).Clauses(onConflict).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Validation("email %s is already used by another account", profile.Email)
	}
	if err != nil {
		return nil, storageErr("ensure", entityUser, profile.ID, err)
	}
	return s.GetUser(ctx, profile.ID)
}

// 2. GetUser 根据ID获取用户
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := firstOrNotFound(s.DB.WithContext(ctx), &user, entityUser, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// 3. DevLogin 按邮箱查找或创建用户并签发令牌
func (s *UserService) DevLogin(ctx context.Context, req DevLoginRequest) (*LoginResult, error) {
	email := normalizeEmail(req.Email)
	if email == nil || !strings.Contains(*email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", *email).Take(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, err := s.EnsureUser(ctx, UserProfile{
			ID:        uuid.NewString(),
			Email:     *email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			return nil, err
		}
		user = *created
	case err != nil:
		return nil, storageErr("login", entityUser, *email, err)
	}

	token, expiresAt, err := s.JWT.GenerateToken(user.ID, *email, uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: &user}, nil
}

func normalizeEmail(email string) *string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return &email
}
