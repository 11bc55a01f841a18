package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// memoryVerificationRepository keeps pending verifications in a map guarded
// by a single mutex, which gives the per-destination linearizability the
// store contract requires. Expiry is enforced lazily on every read;
// CleanupExpired reclaims memory for records nobody reads again.
type memoryVerificationRepository struct {
	mu      sync.Mutex
	records map[string]*models.PendingVerification
	now     func() time.Time
}

func NewMemoryVerificationRepository() VerificationRepository {
	return &memoryVerificationRepository{
		records: make(map[string]*models.PendingVerification),
		now:     time.Now,
	}
}

func (r *memoryVerificationRepository) Put(_ context.Context, rec *models.PendingVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *rec
	r.records[rec.Destination] = &cp
	return nil
}

func (r *memoryVerificationRepository) Get(_ context.Context, destination string) (*models.PendingVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[destination]
	if !ok {
		return nil, nil
	}
	if rec.Expired(r.now()) {
		delete(r.records, destination)
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *memoryVerificationRepository) IncrementAttempts(_ context.Context, destination string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[destination]
	if !ok || rec.Expired(r.now()) {
		return 0, utils.ErrNotFound
	}
	rec.Attempts++
	return rec.Attempts, nil
}

func (r *memoryVerificationRepository) Delete(_ context.Context, destination string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.records[destination]
	delete(r.records, destination)
	return ok, nil
}

func (r *memoryVerificationRepository) CleanupExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for destination, rec := range r.records {
		if rec.Expired(now) {
			delete(r.records, destination)
		}
	}
	return nil
}
