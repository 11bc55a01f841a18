package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// UserRepository is the user directory. The verification core never touches
// it; only the boundary layer marks a user verified after a successful check.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	// MarkVerified flags the user as phone-verified. ErrUserNotFound when
	// no user exists for the phone number.
	MarkVerified(ctx context.Context, phone string) error
}

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	q := `
        INSERT INTO users (id, name, phone_number, password_hash, phone_verified, created_at)
        VALUES ($1, $2, $3, $4, FALSE, NOW())
    `
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, q, user.ID, user.Name, user.PhoneNumber, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("%w: create user: %v", utils.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	q := `
        SELECT id, name, phone_number, password_hash, phone_verified, verified_at, created_at
        FROM users
        WHERE phone_number = $1
    `
	row := r.db.QueryRow(ctx, q, phone)

	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.PhoneNumber, &u.PasswordHash, &u.PhoneVerified, &u.VerifiedAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get user by phone: %v", utils.ErrStoreUnavailable, err)
	}
	return &u, nil
}

func (r *userRepository) MarkVerified(ctx context.Context, phone string) error {
	q := `
        UPDATE users
        SET phone_verified = TRUE, verified_at = NOW()
        WHERE phone_number = $1
    `
	tag, err := r.db.Exec(ctx, q, phone)
	if err != nil {
		return fmt.Errorf("%w: mark user verified: %v", utils.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrUserNotFound
	}
	return nil
}
