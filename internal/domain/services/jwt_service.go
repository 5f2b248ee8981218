package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(userID, email, sessionID string) (string, time.Time, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
}

// JWTService 提供JWT相关服务
type JWTService struct {
	secretKey string
	issuer    string
	lifetime  time.Duration
}

// JWTClaims 定义JWT令牌的声明结构，sub 为用户ID
type JWTClaims struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"given_name,omitempty"`
	LastName  string `json:"family_name,omitempty"`
	Picture   string `json:"picture,omitempty"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config) InterfaceJWTService {
	lifetime := cfg.TokenLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    cfg.JWTIssuer,
		lifetime:  lifetime,
	}
}

// GenerateToken 生成JWT令牌
func (s *JWTService) GenerateToken(userID, email, sessionID string) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(s.lifetime)

	claims := &JWTClaims{
		Email:     email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secretKey))
	return signed, expirationTime, err
}

// ExtractClaims 验证令牌并提取声明
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
