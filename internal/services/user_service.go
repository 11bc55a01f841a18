package services

import (
	"context"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/repositories"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// UserService fronts the user directory. The verification core never calls
// it; the HTTP boundary does, after a successful check.
type UserService interface {
	Register(ctx context.Context, name, phone, password string) (*models.User, error)
	MarkVerified(ctx context.Context, phone string) error
}

type userService struct {
	repo repositories.UserRepository
}

func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Register(ctx context.Context, name, phone, password string) (*models.User, error) {
	existing, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ErrUserAlreadyExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:         name,
		PhoneNumber:  phone,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) MarkVerified(ctx context.Context, phone string) error {
	return s.repo.MarkVerified(ctx, phone)
}
