package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/auth"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// SessionHeader 客户端显式指定的助手会话ID
const SessionHeader = "X-Session-ID"

// extractToken 从授权头中提取 Bearer token
func extractToken(authHeader string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Authentication 校验 JWT，确保用户存在并将 principal 放入请求上下文
func Authentication(jwtService services.InterfaceJWTService, users services.InterfaceUserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		tokenString, ok := extractToken(authHeader)
		if !ok {
			response.Unauthorized(c, "Authorization header format must be Bearer {token}")
			c.Abort()
			return
		}

		claims, err := jwtService.ExtractClaims(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		// users.id 为 varchar(36)
		if len(claims.Subject) > maxUserIDLength {
			response.Unauthorized(c, "Invalid token subject")
			c.Abort()
			return
		}

		// 首次见到的用户在这里落库
		if _, err := users.EnsureUser(c.Request.Context(), services.UserProfile{
			ID:              claims.Subject,
			Email:           claims.Email,
			FirstName:       claims.FirstName,
			LastName:        claims.LastName,
			ProfileImageURL: claims.Picture,
		}); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		principal := auth.Principal{
			UserID:    claims.Subject,
			Email:     claims.Email,
			SessionID: resolveSessionID(c.GetHeader(SessionHeader), claims.SessionID),
		}
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Set("userID", principal.UserID)
		c.Next()
	}
}

const (
	maxUserIDLength    = 36
	maxSessionIDLength = 64 // assistant_logs.session_id
)

// resolveSessionID 请求头优先，其次令牌中的 sid，都没有或超长时生成新的
func resolveSessionID(header, claim string) string {
	if h := strings.TrimSpace(header); h != "" && len(h) <= maxSessionIDLength {
		return h
	}
	if claim != "" && len(claim) <= maxSessionIDLength {
		return claim
	}
	return uuid.NewString()
}

// PrincipalKey 按用户限流的键，未认证时退回到客户端IP
func PrincipalKey(c *gin.Context) string {
	if p, ok := auth.FromContext(c.Request.Context()); ok {
		return "user:" + p.UserID
	}
	return "ip:" + c.ClientIP()
}
