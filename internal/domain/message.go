package domain

import "time"

// Message 表示群组中的一条消息。
// 通过 GroupID 弱引用所属群组，群组删除时由级联清理批量删除。
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"index:idx_group_created,priority:1;not null" json:"groupId"`
	SenderID  uint      `gorm:"index;not null" json:"senderId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_group_created,priority:2;not null" json:"createdAt"` // 由服务端赋值，用于排序
}
