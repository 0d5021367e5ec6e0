package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidRole  = errors.New("invalid role in token")
)

// JWT 访问令牌的签发与校验。令牌由登录服务签发，本服务只校验
type JWT struct {
	secret        []byte // 访问令牌密钥
	expireSeconds int64  // 访问令牌过期时间
	issuer        string
}

func NewJWT(cfg *viper.Viper) *JWT {
	return &JWT{
		secret:        []byte(cfg.GetString("jwt.access_secret")),
		expireSeconds: cfg.GetInt64("jwt.access_expire_seconds"),
		issuer:        cfg.GetString("server.name"),
	}
}

// GenToken 生成token（联调工具与测试使用）
func (j *JWT) GenToken(userId int64, role Role) (string, error) {
	if !role.Valid() {
		return "", ErrInvalidRole
	}
	expiresAt := time.Now().Add(time.Duration(j.expireSeconds) * time.Second)
	zap.L().Sugar().Debugf("-->生成 %s token，过期时间：%v", role, expiresAt)
	claims := &CustomClaims{
		UserId: userId,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// ParseToken 解析 token，并校验 id 与 role 均存在
func (j *JWT) ParseToken(tokenString string) (*CustomClaims, error) {
	var claim CustomClaims
	token, err := jwt.ParseWithClaims(tokenString, &claim,
		func(token *jwt.Token) (interface{}, error) {
			return j.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claim.UserId == 0 {
		return nil, ErrInvalidToken
	}
	if !claim.Role.Valid() {
		return nil, ErrInvalidRole
	}
	return &claim, nil
}
