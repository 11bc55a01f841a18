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

// VerificationRepository owns pending verification records. At most one
// active record exists per destination; Put replaces any prior one.
//
// Operations on a single destination are linearizable: increments and the
// match-time delete are atomic, so concurrent issue/check calls for the same
// destination cannot lose updates or double-spend a code.
type VerificationRepository interface {
	// Put overwrites any existing record for the destination.
	Put(ctx context.Context, rec *models.PendingVerification) error
	// Get returns nil when no record exists or the record is past its
	// expiry (lazy expiry at read time).
	Get(ctx context.Context, destination string) (*models.PendingVerification, error)
	// IncrementAttempts returns the new attempt count, or ErrNotFound
	// when there is no active record.
	IncrementAttempts(ctx context.Context, destination string) (int, error)
	// Delete is idempotent and reports whether a record was actually
	// removed. Exactly one of several concurrent deleters observes true.
	Delete(ctx context.Context, destination string) (bool, error)
	// CleanupExpired eagerly removes expired records. Purely a
	// memory-reclamation aid; Get already enforces expiry.
	CleanupExpired(ctx context.Context) error
}

type verificationRepository struct {
	db DB
}

func NewVerificationRepository(db DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Put(ctx context.Context, rec *models.PendingVerification) error {
	q := `
        INSERT INTO pending_verifications
            (id, destination, code_hash, channel, issued_at, expires_at, attempts, max_attempts)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (destination) DO UPDATE
        SET id           = EXCLUDED.id,
            code_hash    = EXCLUDED.code_hash,
            channel      = EXCLUDED.channel,
            issued_at    = EXCLUDED.issued_at,
            expires_at   = EXCLUDED.expires_at,
            attempts     = EXCLUDED.attempts,
            max_attempts = EXCLUDED.max_attempts
    `
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, q,
		rec.ID, rec.Destination, rec.CodeHash, string(rec.Channel),
		rec.IssuedAt, rec.ExpiresAt, rec.Attempts, rec.MaxAttempts,
	)
	if err != nil {
		return fmt.Errorf("%w: put pending verification: %v", utils.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *verificationRepository) Get(ctx context.Context, destination string) (*models.PendingVerification, error) {
	q := `
        SELECT id, destination, code_hash, channel, issued_at, expires_at, attempts, max_attempts
        FROM pending_verifications
        WHERE destination = $1 AND expires_at > NOW()
    `
	row := r.db.QueryRow(ctx, q, destination)

	var rec models.PendingVerification
	var channel string
	err := row.Scan(
		&rec.ID,
		&rec.Destination,
		&rec.CodeHash,
		&channel,
		&rec.IssuedAt,
		&rec.ExpiresAt,
		&rec.Attempts,
		&rec.MaxAttempts,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get pending verification: %v", utils.ErrStoreUnavailable, err)
	}
	rec.Channel = models.Channel(channel)
	return &rec, nil
}

func (r *verificationRepository) IncrementAttempts(ctx context.Context, destination string) (int, error) {
	q := `
        UPDATE pending_verifications
        SET attempts = attempts + 1
        WHERE destination = $1 AND expires_at > NOW()
        RETURNING attempts
    `
	var attempts int
	err := r.db.QueryRow(ctx, q, destination).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, utils.ErrNotFound
		}
		return 0, fmt.Errorf("%w: increment attempts: %v", utils.ErrStoreUnavailable, err)
	}
	return attempts, nil
}

func (r *verificationRepository) Delete(ctx context.Context, destination string) (bool, error) {
	q := `DELETE FROM pending_verifications WHERE destination = $1`
	tag, err := r.db.Exec(ctx, q, destination)
	if err != nil {
		return false, fmt.Errorf("%w: delete pending verification: %v", utils.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *verificationRepository) CleanupExpired(ctx context.Context) error {
	q := `DELETE FROM pending_verifications WHERE expires_at < NOW()`
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("%w: cleanup pending verifications: %v", utils.ErrStoreUnavailable, err)
	}
	return nil
}
