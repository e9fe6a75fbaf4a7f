package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, f *fixture, email string) *model.User {
	t.Helper()
	u := &model.User{Name: strings.Split(email, "@")[0], Email: email, Password: "hash"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGrantAndRevokeRoles(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.users, newMemStorage())
	ctx := context.Background()
	admin := seedUser(t, f, "admin@example.com")
	target := seedUser(t, f, "target@example.com")

	u, err := svc.GrantRole(ctx, target.ID, model.RoleLeader)
	require.NoError(t, err)
	assert.True(t, u.Roles().Has(model.RoleLeader))

	u, err = svc.RevokeRole(ctx, admin.ID, target.ID, model.RoleLeader)
	require.NoError(t, err)
	assert.False(t, u.Roles().Has(model.RoleLeader))

	_, err = svc.RevokeRole(ctx, admin.ID, target.ID, model.RoleUser)
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.GrantRole(ctx, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.RevokeRole(ctx, admin.ID, admin.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.GrantRole(ctx, 999, model.RoleEditor)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	u, err = svc.GrantRoleByEmail(ctx, "TARGET@example.com", model.RoleEditor)
	require.NoError(t, err)
	assert.True(t, u.Roles().Has(model.RoleEditor))
}

func TestSetDisabled(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.users, newMemStorage())
	ctx := context.Background()
	admin := seedUser(t, f, "admin@example.com")
	target := seedUser(t, f, "target@example.com")

	assert.ErrorIs(t, svc.SetDisabled(ctx, admin.ID, admin.ID, true), util.ErrPermissionDenied)
	require.NoError(t, svc.SetDisabled(ctx, admin.ID, target.ID, true))
	stored, _ := f.users.FindByID(ctx, target.ID)
	assert.True(t, stored.Disabled)
	assert.ErrorIs(t, svc.SetDisabled(ctx, admin.ID, 999, true), util.ErrUserNotFound)
}

func TestUpdateAvatar(t *testing.T) {
	f := newFixture()
	storage := newMemStorage()
	svc := NewUserService(f.users, storage)
	ctx := context.Background()
	user := seedUser(t, f, "pic@example.com")

	updated, err := svc.UpdateAvatar(ctx, user.ID, "me.png", bytes.NewReader(pngBytes(t, 400, 300)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.Avatar, "/files/avatars/"))
	require.Len(t, storage.files, 1)

	for _, data := range storage.files {
		img, format, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 256, img.Bounds().Dx())
		assert.Equal(t, 256, img.Bounds().Dy())
	}

	_, err = svc.UpdateAvatar(ctx, user.ID, "me.gif", bytes.NewReader(pngBytes(t, 10, 10)))
	assert.ErrorIs(t, err, util.ErrInvalidFile)

	_, err = svc.UpdateAvatar(ctx, user.ID, "me.png", strings.NewReader("plain text, not an image"))
	assert.ErrorIs(t, err, util.ErrInvalidFile)
}
