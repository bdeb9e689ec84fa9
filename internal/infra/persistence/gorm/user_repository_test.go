package gormpersistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"
)

func seedUser(t *testing.T, repo *GormUserRepository, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Password: "hash", Email: username + "@example.com"}
	require.NoError(t, repo.Save(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func TestGormUserRepository_FindByEmail(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()
	alice := seedUser(t, repo, "alice")

	found, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestGormUserRepository_Save_DuplicateEmail(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	seedUser(t, repo, "alice")

	dup := &domain.User{Username: "alice2", Password: "hash", Email: "alice@example.com"}
	err := repo.Save(context.Background(), dup)
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
}

func TestGormUserRepository_FindByIDs_KeepsOrder(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	a := seedUser(t, repo, "a")
	b := seedUser(t, repo, "b")
	c := seedUser(t, repo, "c")

	users, err := repo.FindByIDs(context.Background(), []uint{c.ID, 999, a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, users, 3, "不存在的用户应被跳过")
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, []uint{users[0].ID, users[1].ID, users[2].ID})

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormUserRepository_GroupReferences(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()
	user := seedUser(t, repo, "bob")

	require.NoError(t, repo.AddGroupReference(ctx, user.ID, 10))
	require.NoError(t, repo.AddGroupReference(ctx, user.ID, 11))
	require.NoError(t, repo.AddGroupReference(ctx, user.ID, 10), "重复添加应为 no-op")

	ids, err := repo.ListGroupIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 11}, ids)

	require.NoError(t, repo.RemoveGroupReference(ctx, user.ID, 10))
	require.NoError(t, repo.RemoveGroupReference(ctx, user.ID, 10), "重复移除应为 no-op")
	require.NoError(t, repo.RemoveGroupReference(ctx, 4242, 10), "用户不存在不应报错")

	ids, err = repo.ListGroupIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{11}, ids)
}

func TestGormUserRepository_FindAll(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	a := seedUser(t, repo, "a")
	b := seedUser(t, repo, "b")

	users, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, []uint{a.ID, b.ID}, []uint{users[0].ID, users[1].ID})
}

func TestGormUserRepository_Delete_RemovesReferences(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()
	user := seedUser(t, repo, "carol")
	other := seedUser(t, repo, "dave")
	require.NoError(t, repo.AddGroupReference(ctx, user.ID, 10))
	require.NoError(t, repo.AddGroupReference(ctx, other.ID, 10))

	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err := repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	ids, err := repo.ListGroupIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	ids, err = repo.ListGroupIDs(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{10}, ids, "其他用户的引用不受影响")

	assert.ErrorIs(t, repo.Delete(ctx, user.ID), repository.ErrUserNotFound)
}
