package service

import (
	"testing"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user := &model.User{Name: "Alex", Email: "alex@example.com", Password: "secret-pass", Role: model.Student}
	require.NoError(t, f.auth.Register(user))

	// The stored password is a hash, never the plaintext.
	stored, err := f.users.FindByEmail("alex@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-pass", stored.Password)

	dup := &model.User{Name: "Alex 2", Email: "alex@example.com", Password: "other-pass"}
	require.ErrorIs(t, f.auth.Register(dup), util.ErrConflict)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	user := &model.User{Name: "Alex", Email: "alex@example.com", Password: "secret-pass", Role: model.Coach}
	require.NoError(t, f.auth.Register(user))

	token, err := f.auth.Login("alex@example.com", "secret-pass")
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, f.cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Coach, claims.Role)

	_, err = f.auth.Login("alex@example.com", "wrong-pass")
	require.ErrorIs(t, err, util.ErrUnauthorized)

	_, err = f.auth.Login("nobody@example.com", "secret-pass")
	require.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestLoginDisabledAccount(t *testing.T) {
	f := newFixture(t)

	user := &model.User{Name: "Alex", Email: "alex@example.com", Password: "secret-pass"}
	require.NoError(t, f.auth.Register(user))
	require.NoError(t, f.db.Model(user).Update("disabled", true).Error)

	_, err := f.auth.Login("alex@example.com", "secret-pass")
	require.ErrorIs(t, err, util.ErrForbidden)
}
