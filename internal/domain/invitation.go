package domain

import "time"

// InvitationTTL 是邀请从签发起的有效期。
const InvitationTTL = 24 * time.Hour

// Invitation 是绑定到单个目标用户的群组邀请凭证。
// 它从属于 Group，没有独立的生命周期。
type Invitation struct {
	ID           uint      `gorm:"primaryKey"`
	GroupID      uint      `gorm:"index;not null"`
	TargetUserID uint      `gorm:"index;not null"`
	Token        string    `gorm:"type:varchar(191);uniqueIndex:idx_invite_token;not null"` // 全局唯一
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName 指定邀请表名。
func (Invitation) TableName() string { return "group_invitations" }

// Expired 判断邀请在 now 时刻是否已失效 (now 严格晚于 ExpiresAt)。
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// BoundTo 判断邀请是否签发给了该用户。仅持有 token 不足以使用邀请。
func (i Invitation) BoundTo(userID uint) bool {
	return i.TargetUserID == userID
}

// InvitationLedger 是群组的有序邀请列表。
type InvitationLedger []Invitation

// Append 追加一条邀请。
func (l *InvitationLedger) Append(inv Invitation) {
	*l = append(*l, inv)
}

// Find 返回第一条 token 匹配的邀请。
func (l InvitationLedger) Find(token string) (Invitation, bool) {
	for _, inv := range l {
		if inv.Token == token {
			return inv, true
		}
	}
	return Invitation{}, false
}

// RemoveToken 移除所有 token 相同的条目，返回移除数量。
func (l *InvitationLedger) RemoveToken(token string) int {
	kept := (*l)[:0]
	removed := 0
	for _, inv := range *l {
		if inv.Token == token {
			removed++
			continue
		}
		kept = append(kept, inv)
	}
	*l = kept
	return removed
}

// PruneExpired 移除在 now 时刻已过期的条目，返回移除数量。
func (l *InvitationLedger) PruneExpired(now time.Time) int {
	kept := (*l)[:0]
	removed := 0
	for _, inv := range *l {
		if inv.Expired(now) {
			removed++
			continue
		}
		kept = append(kept, inv)
	}
	*l = kept
	return removed
}

// Len 返回邀请数量。
func (l InvitationLedger) Len() int { return len(l) }
