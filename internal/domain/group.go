package domain

import (
	"errors"
	"time"
)

// GroupType 表示群组的加入方式，创建后不可变更。
type GroupType string

const (
	GroupTypePublic  GroupType = "public"
	GroupTypePrivate GroupType = "private"
)

// Valid 判断群组类型是否合法。
func (t GroupType) Valid() bool {
	return t == GroupTypePublic || t == GroupTypePrivate
}

var (
	// ErrAlreadyMember 表示用户已经在群组中
	ErrAlreadyMember = errors.New("user is already a member of the group")
	// ErrAdminNotMember 表示群组违反了 "管理员必须是成员" 的不变量
	ErrAdminNotMember = errors.New("group admin is not a member")
	// ErrRemoveAdmin 表示试图把管理员移出群组
	ErrRemoveAdmin = errors.New("group admin cannot be removed from the group")
)

// Group 表示一个聊天群组。
// 不变量: AdminID 始终在 Members 中，Members 不含重复元素。
type Group struct {
	ID          uint             `gorm:"primaryKey"`
	Name        string           `gorm:"type:varchar(191);not null"`
	Type        GroupType        `gorm:"type:varchar(16);index;not null"`
	AdminID     uint             `gorm:"index;not null"`
	Members     MemberSet        `gorm:"type:text;not null"`
	Invitations InvitationLedger `gorm:"-"` // 由 GroupRepository 单独读写 group_invitations 表
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
}

// NewGroup 创建一个以 admin 为唯一成员的新群组。
func NewGroup(name string, groupType GroupType, adminID uint) *Group {
	return &Group{
		Name:        name,
		Type:        groupType,
		AdminID:     adminID,
		Members:     NewMemberSet(adminID),
		Invitations: InvitationLedger{},
	}
}

// IsAdmin 严格比较调用者是否为群组管理员。
func (g *Group) IsAdmin(userID uint) bool {
	return userID != 0 && g.AdminID == userID
}

// IsMember 判断用户是否为成员。
func (g *Group) IsMember(userID uint) bool {
	return g.Members.Contains(userID)
}

// IsPublic 判断群组是否允许直接加入。
func (g *Group) IsPublic() bool {
	return g.Type == GroupTypePublic
}

// AddMember 将用户加入群组，重复加入返回 ErrAlreadyMember 且不修改成员集合。
func (g *Group) AddMember(userID uint) error {
	if !g.Members.Add(userID) {
		return ErrAlreadyMember
	}
	return nil
}

// RemoveMember 将用户移出群组。管理员不能被移除，非成员返回 false。
func (g *Group) RemoveMember(userID uint) (bool, error) {
	if g.IsAdmin(userID) {
		return false, ErrRemoveAdmin
	}
	return g.Members.Remove(userID), nil
}

// CheckInvariants 校验群组的结构性不变量。
func (g *Group) CheckInvariants() error {
	if !g.Members.Contains(g.AdminID) {
		return ErrAdminNotMember
	}
	return nil
}
