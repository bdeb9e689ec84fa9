package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGroup_AdminIsOnlyMember(t *testing.T) {
	g := NewGroup("Team", GroupTypePublic, 1)

	assert.Equal(t, uint(1), g.AdminID)
	assert.Equal(t, []uint{1}, g.Members.IDs())
	assert.NoError(t, g.CheckInvariants())
	assert.True(t, g.IsAdmin(1))
	assert.True(t, g.IsPublic())
}

func TestGroup_AddMember(t *testing.T) {
	g := NewGroup("Team", GroupTypePublic, 1)

	assert.NoError(t, g.AddMember(2))
	assert.ErrorIs(t, g.AddMember(2), ErrAlreadyMember)
	assert.ErrorIs(t, g.AddMember(1), ErrAlreadyMember)
	assert.Equal(t, []uint{1, 2}, g.Members.IDs(), "重复加入不应修改成员集合")
}

func TestGroup_IsAdminIsStrict(t *testing.T) {
	g := NewGroup("Team", GroupTypePrivate, 1)
	_ = g.AddMember(2)

	assert.False(t, g.IsAdmin(2), "普通成员不是管理员")
	assert.False(t, g.IsAdmin(0), "未认证调用者不是管理员")
}

func TestGroup_RemoveMember(t *testing.T) {
	g := NewGroup("Team", GroupTypePublic, 1)
	_ = g.AddMember(2)

	removed, err := g.RemoveMember(2)
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = g.RemoveMember(2)
	assert.NoError(t, err)
	assert.False(t, removed, "非成员移除是 no-op")

	_, err = g.RemoveMember(1)
	assert.ErrorIs(t, err, ErrRemoveAdmin)
	assert.NoError(t, g.CheckInvariants())
}

func TestGroup_CheckInvariants(t *testing.T) {
	g := &Group{AdminID: 5, Members: NewMemberSet(1, 2)}
	assert.ErrorIs(t, g.CheckInvariants(), ErrAdminNotMember)
}

func TestGroupType_Valid(t *testing.T) {
	assert.True(t, GroupTypePublic.Valid())
	assert.True(t, GroupTypePrivate.Valid())
	assert.False(t, GroupType("secret").Valid())
}
