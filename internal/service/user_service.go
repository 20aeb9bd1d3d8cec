package service

import (
	"context"
	"strings"

	"prokat/internal/domain"
	"prokat/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if strings.TrimSpace(user.Name) == "" {
		return nil, ErrEmptyName
	}
	if !validEmail(user.Email) {
		return nil, ErrInvalidEmail
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, name, email string) (*models.User, error) {
	if email != "" && !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	return s.repo.UpdateUser(ctx, id, name, email)
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}

// LinkTelegram привязывает чат бота к пользователю. После привязки он
// получает уведомления о бронированиях своих вещей.
func (s *UserService) LinkTelegram(ctx context.Context, id, chatID int64) error {
	if chatID <= 0 {
		return ErrInvalidChatID
	}
	return s.repo.UpdateUserChatID(ctx, id, chatID)
}
