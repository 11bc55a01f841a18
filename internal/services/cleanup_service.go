package services

import (
	"context"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/repositories"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// CleanupService purges expired verification records and stale rate-limit
// counters. Correctness never depends on it; reads enforce expiry lazily.
type CleanupService interface {
	Cleanup(ctx context.Context) error
}

type cleanupService struct {
	verificationRepo repositories.VerificationRepository
	rateLimitRepo    repositories.RateLimitRepository
}

func NewCleanupService(
	verificationRepo repositories.VerificationRepository,
	rateLimitRepo repositories.RateLimitRepository,
) CleanupService {
	return &cleanupService{
		verificationRepo: verificationRepo,
		rateLimitRepo:    rateLimitRepo,
	}
}

func (s *cleanupService) Cleanup(ctx context.Context) error {
	if err := s.verificationRepo.CleanupExpired(ctx); err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup pending_verifications")
		return err
	}
	if err := s.rateLimitRepo.CleanupExpired(ctx); err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup rate_limit_attempts")
		return err
	}

	utils.Logger.Info("Expired verification records and rate-limit counters cleaned up.")
	return nil
}
