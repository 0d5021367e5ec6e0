package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/s-dudhiya/EduNexus/api"
	"github.com/s-dudhiya/EduNexus/pkg/jwt"
	"go.uber.org/zap"
)

const (
	tokenPrefix = "Bearer "

	CtxKeyPrincipal = "principal" // 调用方身份上下文 key
)

// Principal 已认证的调用方，角色只在此处确定一次
type Principal struct {
	UserID int64
	Role   jwt.Role
}

// TokenParser 校验访问令牌，*jwt.JWT 满足该接口
type TokenParser interface {
	ParseToken(tokenString string) (*jwt.CustomClaims, error)
}

func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从请求头中获取 token
		authorizationValue := c.GetHeader("Authorization")
		if len(authorizationValue) == 0 || !strings.HasPrefix(authorizationValue, tokenPrefix) {
			api.ResponseError(c, api.CodeNeedLogin)
			c.Abort()
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authorizationValue, tokenPrefix))
		if tokenString == "" {
			api.ResponseError(c, api.CodeInvalidToken)
			c.Abort()
			return
		}
		// 解析token，获取claims
		claims, err := parser.ParseToken(tokenString)
		if err != nil {
			zap.L().Sugar().Debugf("parse access token error: %v", err)
			api.ResponseError(c, api.CodeInvalidToken)
			c.Abort()
			return
		}
		c.Set(CtxKeyPrincipal, Principal{UserID: claims.UserId, Role: claims.Role})
		c.Next()
	}
}

// RequireRole 只放行指定角色，必须挂在 Auth 之后
func RequireRole(roles ...jwt.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			api.ResponseError(c, api.CodeNeedLogin)
			c.Abort()
			return
		}
		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		zap.L().Info("角色无权访问",
			zap.Int64("user_id", p.UserID),
			zap.String("role", string(p.Role)),
			zap.String("path", c.FullPath()),
		)
		api.ResponseError(c, api.CodeNoPermission)
		c.Abort()
	}
}

// GetPrincipal 取出当前请求的调用方
func GetPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(CtxKeyPrincipal)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
