package repository

import (
	"context"
	"testing"
	"time"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/utils"
	"dbmis/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()

	alice := &ds.User{Username: "alice", Password: "secret", Name: "Alice"}
	require.NoError(t, rep.CreateUser(ctx, alice))
	assert.NotZero(t, alice.ID)
	assert.NotEqual(t, "secret", alice.Password)
	assert.Equal(t, ds.RoleUser, alice.Role)
	assert.Equal(t, ds.StatusActive, alice.Status)

	err := rep.CreateUser(ctx, &ds.User{Username: "alice", Password: "other", Name: "Alice 2"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got, err := rep.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = rep.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = rep.Authenticate(ctx, "alice", "secret")
	require.NoError(t, err)
	_, err = rep.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = rep.Authenticate(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	bob := &ds.User{Username: "bob", Password: "pw", Name: "Bob"}
	require.NoError(t, rep.CreateUser(ctx, bob))

	_, err = rep.UpdateUser(ctx, alice.ID, UserUpdate{Username: "bob", Name: "Alice"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	email := "alice@example.com"
	updated, err := rep.UpdateUser(ctx, alice.ID, UserUpdate{
		Username:   "alice2",
		Name:       "Alice Liddell",
		Email:      &email,
		Department: "Ops",
		Status:     ds.StatusInactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "Alice Liddell", updated.Name)
	require.NotNil(t, updated.Email)
	assert.Equal(t, email, *updated.Email)
	assert.Equal(t, ds.RoleUser, updated.Role)
	assert.Equal(t, ds.StatusInactive, updated.Status)

	_, err = rep.Authenticate(ctx, "alice2", "secret")
	assert.ErrorIs(t, err, ErrUserDisabled)

	require.NoError(t, rep.ChangePassword(ctx, bob.ID, "new-pw"))
	_, err = rep.Authenticate(ctx, "bob", "new-pw")
	require.NoError(t, err)
	assert.ErrorIs(t, rep.ChangePassword(ctx, 9999, "x"), ErrNotFound)

	users, err := rep.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, rep.DeleteUser(ctx, bob.ID))
	assert.ErrorIs(t, rep.DeleteUser(ctx, bob.ID), ErrNotFound)
}

func TestLoginUser_SessionRoundTrip(t *testing.T) {
	rep, mr := newTestRepository(t)
	ctx := context.Background()
	testutil.SeedUser(t, rep.DB(), "admin", "admin", ds.RoleAdmin)

	token, user, claims, err := rep.LoginUser(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, ds.RoleAdmin, user.Role)
	require.NotNil(t, user.LastLogin)

	assert.True(t, mr.Exists("jwt:"+claims.ID))
	members, err := mr.SMembers("user_sessions:" + itoa(user.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{claims.ID}, members)

	parsed, err := rep.ParseToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", parsed.Username)

	stored, err := rep.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	require.NoError(t, rep.DeleteSession(ctx, claims))
	_, err = rep.ParseToken(ctx, token)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestLoginUser_Failures(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, rep.DB(), "carol", "pw", ds.RoleUser)

	_, _, _, err := rep.LoginUser(ctx, "carol", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, rep.DB().Model(u).Update("status", ds.StatusInactive).Error)
	_, _, _, err = rep.LoginUser(ctx, "carol", "pw")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestChangePassword_RevokesAllSessions(t *testing.T) {
	rep, mr := newTestRepository(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, rep.DB(), "dave", "pw", ds.RoleUser)

	first, _, _, err := rep.LoginUser(ctx, "dave", "pw")
	require.NoError(t, err)
	second, _, _, err := rep.LoginUser(ctx, "dave", "pw")
	require.NoError(t, err)

	require.NoError(t, rep.ChangePassword(ctx, u.ID, "pw2"))

	for _, tok := range []string{first, second} {
		_, err := rep.ParseToken(ctx, tok)
		assert.ErrorIs(t, err, utils.ErrInvalidToken)
	}
	assert.False(t, mr.Exists("user_sessions:"+itoa(u.ID)))
}

func TestSessions_WithoutRedisAreStateless(t *testing.T) {
	db := testutil.OpenSQLite(t)
	rep := New(db, WithJWT(testJWTKey, time.Hour))
	ctx := context.Background()
	testutil.SeedUser(t, db, "erin", "pw", ds.RoleUser)

	token, _, claims, err := rep.LoginUser(ctx, "erin", "pw")
	require.NoError(t, err)

	require.NoError(t, rep.DeleteSession(ctx, claims))
	_, err = rep.ParseToken(ctx, token)
	assert.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()

	created, err := rep.EnsureAdmin(ctx, "root", "toor")
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := rep.Authenticate(ctx, "root", "toor")
	require.NoError(t, err)
	assert.Equal(t, ds.RoleAdmin, admin.Role)

	created, err = rep.EnsureAdmin(ctx, "root", "changed")
	require.NoError(t, err)
	assert.False(t, created)
	_, err = rep.Authenticate(ctx, "root", "toor")
	assert.NoError(t, err, "existing admin keeps its password")

	_, err = rep.EnsureAdmin(ctx, "root", "")
	assert.Error(t, err)
}
