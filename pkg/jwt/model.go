package jwt

import "github.com/golang-jwt/jwt/v5"

// Role 调用方角色，签发时写入 token，鉴权时只检查一次
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

// Valid 角色是否为已知取值
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleFaculty
}

// CustomClaims 自定义声明结构体并内嵌 jwt.RegisteredClaims
// 学生的 UserId 为学号（enrollment_no），教师的 UserId 为工号（fac_id）
type CustomClaims struct {
	UserId int64 `json:"id"`
	Role   Role  `json:"role"`
	jwt.RegisteredClaims
}
