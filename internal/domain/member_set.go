package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MemberSet 是一个保持插入顺序且不含重复元素的用户 ID 集合。
// 唯一性由 Add 保证，调用方不应直接 append 底层切片。
type MemberSet []uint

// NewMemberSet 用给定的 ID 构造集合，重复的 ID 会被忽略。
func NewMemberSet(ids ...uint) MemberSet {
	s := make(MemberSet, 0, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Contains 判断用户是否在集合中。
func (s MemberSet) Contains(userID uint) bool {
	for _, id := range s {
		if id == userID {
			return true
		}
	}
	return false
}

// Add 追加用户，如果已存在则返回 false 且不修改集合。
func (s *MemberSet) Add(userID uint) bool {
	if s.Contains(userID) {
		return false
	}
	*s = append(*s, userID)
	return true
}

// Remove 移除用户，返回是否确实移除了元素。
func (s *MemberSet) Remove(userID uint) bool {
	for i, id := range *s {
		if id == userID {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

// Len 返回成员数量。
func (s MemberSet) Len() int { return len(s) }

// IDs 返回成员 ID 的副本。
func (s MemberSet) IDs() []uint {
	out := make([]uint, len(s))
	copy(out, s)
	return out
}

// Value 实现 driver.Valuer，集合以 JSON 数组形式存入单列。
func (s MemberSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uint(s))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal member set: %w", err)
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner。不同驱动可能返回 string 或 []byte。
func (s *MemberSet) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = MemberSet{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported member set column type %T", value)
	}
	var ids []uint
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ids); err != nil {
			return fmt.Errorf("failed to unmarshal member set: %w", err)
		}
	}
	// 经过 NewMemberSet 重新构造，脏数据中的重复 ID 会被去掉
	*s = NewMemberSet(ids...)
	return nil
}
