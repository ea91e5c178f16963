// Package domain 访问凭证：存储键与管理员角色
package domain

import storage "github.com/wyfcoding/storefront/internal/storage/domain"

const (
	// KeyToken 不透明的 bearer 令牌
	KeyToken = storage.KeyToken
	// KeyRole 角色字符串
	KeyRole = storage.KeyRole
	// RoleAdmin 管理员角色，大小写敏感
	RoleAdmin = "ADMIN"
)

// Credential 远端登录成功后返回的凭证
type Credential struct {
	Token string
	Role  string
}

// Authenticated 令牌非空即视为已登录，令牌内容不做校验
func Authenticated(token string) bool {
	return token != ""
}

// Admin 角色必须与 ADMIN 完全相等
func Admin(role string) bool {
	return role == RoleAdmin
}
