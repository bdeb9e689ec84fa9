// Package domain 定义了群聊服务的核心领域模型。
package domain

import (
	"strings"
	"time"
)

// User 表示应用程序中的用户。
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null"`
	Password  string    `gorm:"type:text;not null"` // 存储的是哈希后的密码
	Email     string    `gorm:"type:varchar(191);uniqueIndex:idx_email;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// PublicUser 是用户对外可见的资料视图，不包含密码和刷新令牌等凭据字段。
type PublicUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public 返回用户的公开资料投影。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeEmail 返回邮箱的规范形式 (去除首尾空白并转为小写)。
// 注册、登录和接受邀请都必须经过它，邮箱才能匹配到同一条用户记录。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserGroup 记录用户所属的群组 (用户侧的成员反向引用)。
// 该表只由用户仓库维护，群组生命周期只通过 add/remove 命令修改它。
type UserGroup struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_group,priority:1;not null"`
	GroupID   uint      `gorm:"uniqueIndex:idx_user_group,priority:2;index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
