package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/config"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/repository"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 30 * time.Minute

type AuthService struct {
	UserRepo *repository.UserRepository
	Mail     *MailService
	Redis    *redis.Client
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, mail *MailService, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Mail:     mail,
		Redis:    rdb,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return fmt.Errorf("email already registered: %w", util.ErrConflict)
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return s.UserRepo.Create(user)
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials: %w", util.ErrUnauthorized)
	}

	if user.Disabled {
		return "", fmt.Errorf("account disabled: %w", util.ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials: %w", util.ErrUnauthorized)
	}

	s.UserRepo.UpdateLastLogin(user.ID)

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// RequestPasswordReset stores a one-shot token in Redis and mails the link.
// Always reports success so callers cannot probe which emails exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.UserRepo.FindByEmail(email)
	if err == gorm.ErrRecordNotFound {
		return nil
	} else if err != nil {
		return err
	}

	token := uuid.New().String()
	key := fmt.Sprintf("pwreset:%s", token)
	if err := s.Redis.Set(ctx, key, user.ID, resetTokenTTL).Err(); err != nil {
		return err
	}

	s.Mail.SendPasswordReset(user.Email, token)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", util.ErrValidation)
	}

	key := fmt.Sprintf("pwreset:%s", token)
	userID, err := s.Redis.Get(ctx, key).Uint64()
	if err == redis.Nil {
		return fmt.Errorf("invalid or expired reset token: %w", util.ErrUnauthorized)
	} else if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.UserRepo.UpdatePassword(uint(userID), string(hashed)); err != nil {
		return err
	}

	// Token is single use.
	s.Redis.Del(ctx, key)
	return nil
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
