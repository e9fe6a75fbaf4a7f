package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/internal/validator"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
	Roles []string    `json:"roles"`
}

type AuthService struct {
	Users     UserStore
	Cfg       *config.Config
	validator *validator.Validator
}

func NewAuthService(users UserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		Users:     users,
		Cfg:       cfg,
		validator: validator.New(),
	}
}

func (s *AuthService) Register(ctx context.Context, in *RegisterInput) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}

	_, err := s.Users.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{Name: in.Name, Email: in.Email, Password: string(hashed)}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if user.Disabled {
		return nil, util.ErrUserDisabled
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	if err := s.Users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Log.Warn("failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	roles := user.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return &LoginResult{Token: token, User: user, Roles: names}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}
