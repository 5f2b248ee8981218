package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/auth"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

type stubUsers struct {
	seen []services.UserProfile
}

func (s *stubUsers) EnsureUser(_ context.Context, p services.UserProfile) (*models.User, error) {
	s.seen = append(s.seen, p)
	return &models.User{BaseModel: models.BaseModel{ID: p.ID}}, nil
}

func (s *stubUsers) GetUser(context.Context, string) (*models.User, error) { return nil, nil }

func (s *stubUsers) DevLogin(context.Context, services.DevLoginRequest) (*services.LoginResult, error) {
	return nil, nil
}

func authRouter(t *testing.T) (*gin.Engine, services.InterfaceJWTService, *stubUsers) {
	t.Helper()
	jwtService := services.NewJWTService(&config.Config{JWTSecretKey: "secret", TokenLifetime: time.Hour})
	users := &stubUsers{}

	r := gin.New()
	r.Use(Authentication(jwtService, users))
	r.GET("/me", func(c *gin.Context) {
		p, ok := auth.FromContext(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user": p.UserID, "session": p.SessionID, "key": PrincipalKey(c)})
	})
	return r, jwtService, users
}

func TestAuthenticationRejects(t *testing.T) {
	r, _, users := authRouter(t)

	for name, header := range map[string]string{
		"missing":   "",
		"malformed": "Token abc",
		"invalid":   "Bearer not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
	assert.Empty(t, users.seen)
}

func TestAuthenticationRejectsOversizedSubject(t *testing.T) {
	r, jwtService, users := authRouter(t)
	token, _, err := jwtService.GenerateToken(strings.Repeat("u", 37), "owner@example.com", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, users.seen)
}

func TestAuthenticationSetsPrincipal(t *testing.T) {
	r, jwtService, users := authRouter(t)
	token, _, err := jwtService.GenerateToken("user-a", "owner@example.com", "sid-from-token")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"user":"user-a"`)
	assert.Contains(t, body, `"session":"sid-from-token"`)
	assert.Contains(t, body, `"key":"user:user-a"`)
	require.Len(t, users.seen, 1)
	assert.Equal(t, "owner@example.com", users.seen[0].Email)

	// 请求头中的会话ID优先
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(SessionHeader, "sess-header")
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"session":"sess-header"`)
}

func TestResolveSessionID(t *testing.T) {
	assert.Equal(t, "h", resolveSessionID(" h ", "c"))
	assert.Equal(t, "c", resolveSessionID("", "c"))
	assert.Equal(t, "c", resolveSessionID(strings.Repeat("x", 65), "c"))
	assert.Len(t, resolveSessionID("", ""), 36)

	long := strings.Repeat("s", 65)
	sid := resolveSessionID("", long)
	assert.NotEqual(t, long, sid)
	assert.Len(t, sid, 36)
}
