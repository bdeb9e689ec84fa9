package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberSet_AddRejectsDuplicates(t *testing.T) {
	s := NewMemberSet(1, 2, 2, 3)
	assert.Equal(t, []uint{1, 2, 3}, s.IDs(), "构造时应去重并保持顺序")

	assert.True(t, s.Add(4))
	assert.False(t, s.Add(2), "重复加入应返回 false")
	assert.Equal(t, 4, s.Len())
}

func TestMemberSet_Remove(t *testing.T) {
	s := NewMemberSet(1, 2, 3)
	assert.True(t, s.Remove(2))
	assert.False(t, s.Remove(2), "再次移除应为 no-op")
	assert.Equal(t, []uint{1, 3}, s.IDs())
}

func TestMemberSet_ValueAndScan(t *testing.T) {
	s := NewMemberSet(7, 3, 9)
	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, "[7,3,9]", v)

	var fromString MemberSet
	require.NoError(t, fromString.Scan("[7,3,9]"))
	assert.Equal(t, []uint{7, 3, 9}, fromString.IDs())

	var fromBytes MemberSet
	require.NoError(t, fromBytes.Scan([]byte("[1,1,2]")))
	assert.Equal(t, []uint{1, 2}, fromBytes.IDs(), "扫描时应去掉重复 ID")

	var fromNil MemberSet
	require.NoError(t, fromNil.Scan(nil))
	assert.Equal(t, 0, fromNil.Len())

	var bad MemberSet
	assert.Error(t, bad.Scan(42))
}

func TestMemberSet_NilValue(t *testing.T) {
	var s MemberSet
	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
