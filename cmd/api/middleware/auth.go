package middleware

import (
	"github.com/gin-gonic/gin"

	"cgm-ai-eval/cmd/api/auth"
	"cgm-ai-eval/internal/logger"
)

// TokenParser 는 Bearer 토큰을 (sub, role) 로 검증한다. *auth.JWTManager 가 구현한다.
type TokenParser interface {
	Parse(token string) (string, string, error)
}

// RequireRole 은 JWT 를 검증하고 role 이 required 권한을 가지는지 확인한다.
// parser 가 nil 이면(auth.enabled=false) 검사 없이 통과시킨다.
func RequireRole(parser TokenParser, required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if parser == nil {
			c.Next()
			return
		}

		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}

		sub, role, err := parser.Parse(token)
		if err != nil {
			logger.WarnWithFields("token parse error", logger.Fields{"path": c.FullPath(), "error": err.Error()})
			auth.AbortWithUnauthorized(c, err)
			return
		}

		if !auth.Allows(role, required) {
			logger.WarnWithFields("access denied", logger.Fields{
				"sub":      sub,
				"role":     role,
				"required": required,
				"path":     c.FullPath(),
			})
			auth.AbortWithForbidden(c)
			return
		}

		c.Set("sub", sub)
		c.Set("role", role)
		c.Next()
	}
}
