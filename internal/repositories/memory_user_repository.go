package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by phone number
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]*models.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.PhoneNumber]; exists {
		return utils.ErrUserAlreadyExists
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.PhoneNumber] = &cp
	return nil
}

func (r *memoryUserRepository) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[phone]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepository) MarkVerified(_ context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[phone]
	if !ok {
		return utils.ErrUserNotFound
	}
	now := time.Now()
	u.PhoneVerified = true
	u.VerifiedAt = &now
	return nil
}
