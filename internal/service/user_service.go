package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	avatarSize     = 256
	maxAvatarBytes = 5 << 20
)

type UserService struct {
	Users   UserStore
	Storage StorageProvider
}

func NewUserService(users UserStore, storage StorageProvider) *UserService {
	return &UserService{Users: users, Storage: storage}
}

func (s *UserService) find(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.Users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

func (s *UserService) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	return s.Users.List(ctx, page, limit)
}

// GrantRole adds a role; granting "user" is a no-op since every account has it.
func (s *UserService) GrantRole(ctx context.Context, userID uint, role model.Role) (*model.User, error) {
	if _, err := s.find(ctx, userID); err != nil {
		return nil, err
	}
	if role != model.RoleUser {
		if err := s.Users.GrantRole(ctx, userID, role); err != nil {
			return nil, err
		}
	}
	return s.find(ctx, userID)
}

func (s *UserService) RevokeRole(ctx context.Context, actorID, userID uint, role model.Role) (*model.User, error) {
	if role == model.RoleUser {
		return nil, fmt.Errorf("%w: the user role cannot be revoked", util.ErrInvalidInput)
	}
	if role == model.RoleAdmin && actorID == userID {
		return nil, fmt.Errorf("%w: admins cannot revoke their own admin role", util.ErrPermissionDenied)
	}
	if _, err := s.find(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.Users.RevokeRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return s.find(ctx, userID)
}

// GrantRoleByEmail is used by the CLI to bootstrap the first admin.
func (s *UserService) GrantRoleByEmail(ctx context.Context, email string, role model.Role) (*model.User, error) {
	user, err := s.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GrantRole(ctx, user.ID, role)
}

func (s *UserService) SetDisabled(ctx context.Context, actorID, userID uint, disabled bool) error {
	if actorID == userID && disabled {
		return fmt.Errorf("%w: cannot disable your own account", util.ErrPermissionDenied)
	}
	err := s.Users.SetDisabled(ctx, userID, disabled)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	return err
}

// UpdateAvatar crops the image to a square thumbnail, stores it as JPEG and
// points the user at it.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, filename string, src io.Reader) (*model.User, error) {
	if !util.HasAllowedExtension(filename, util.AllowedImageExtensions) {
		return nil, fmt.Errorf("%w: avatar must be a jpg or png image", util.ErrInvalidFile)
	}
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(src, maxAvatarBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxAvatarBytes {
		return nil, fmt.Errorf("%w: avatar larger than %d bytes", util.ErrInvalidFile, maxAvatarBytes)
	}
	if _, err := util.SniffMimeType(bytes.NewReader(data), []string{util.MimeImage}); err != nil {
		return nil, err
	}

	thumb, err := ResizeAvatar(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%d/%s.jpg", userID, uuid.NewString())
	url, err := s.Storage.Upload(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg")
	if err != nil {
		return nil, err
	}

	user.Avatar = url
	if err := s.Users.Update(ctx, user); err != nil {
		if derr := s.Storage.Delete(ctx, key); derr != nil {
			logger.Log.Warn("failed to clean up avatar", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}
	return user, nil
}

// ResizeAvatar center-crops to a square and encodes JPEG.
func ResizeAvatar(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode image", util.ErrInvalidFile)
	}
	thumb := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
