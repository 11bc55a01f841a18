package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	twilio "github.com/twilio/twilio-go"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/config"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/gateways"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/repositories"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// VerificationService orchestrates issuing and checking one-time codes.
// Per destination a record moves through pending -> verified | expired |
// exhausted; the store is the single owner of that state.
type VerificationService interface {
	// Issue validates the destination, applies rate limits, generates and
	// stores a new code (replacing any prior one), and delivers it.
	Issue(ctx context.Context, destination string, channel models.Channel, clientIP string) error
	// Check compares a candidate code against the pending record. A nil
	// return means verified; the record is consumed and can never match
	// again.
	Check(ctx context.Context, destination, candidateCode string) error
}

type verificationService struct {
	store       repositories.VerificationRepository
	gateway     gateways.DeliveryGateway
	rateLimiter RateLimiterService
	cfg         *config.Config

	// Optional, only for deep phone validation via Twilio Lookups.
	twilioClient *twilio.RestClient
}

func NewVerificationService(
	store repositories.VerificationRepository,
	gateway gateways.DeliveryGateway,
	rateLimiter RateLimiterService,
	cfg *config.Config,
	twilioClient *twilio.RestClient,
) VerificationService {
	return &verificationService{
		store:        store,
		gateway:      gateway,
		rateLimiter:  rateLimiter,
		cfg:          cfg,
		twilioClient: twilioClient,
	}
}

// ---------------------------------------------------------------------
// Issue
// ---------------------------------------------------------------------
func (s *verificationService) Issue(ctx context.Context, destination string, channel models.Channel, clientIP string) error {
	if err := s.validateDestination(ctx, destination, channel); err != nil {
		return err
	}

	if err := s.rateLimiter.CheckIssueRateLimits(ctx, clientIP, destination, channel); err != nil {
		return err
	}

	// Reissue throttle: an active record younger than the reissue interval
	// blocks a fresh send so the delivery gateway cannot be abused.
	existing, err := s.store.Get(ctx, destination)
	if err != nil {
		return err
	}
	now := time.Now()
	if existing != nil && now.Sub(existing.IssuedAt) < s.cfg.ReissueInterval {
		return utils.ErrTooManyRequests
	}

	code, err := generateVerificationCode(s.cfg.CodeLength)
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	rec := &models.PendingVerification{
		Destination: destination,
		CodeHash:    utils.HashCode(code),
		Channel:     channel,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.cfg.CodeTTL),
		Attempts:    0,
		MaxAttempts: s.cfg.MaxAttempts,
	}

	// Store before delivering. Any prior record for the destination is
	// superseded here; its code is dead from this point on. If delivery
	// then fails the record is kept, so a later reissue (after the
	// throttle window) regenerates rather than stranding the destination.
	if err := s.store.Put(ctx, rec); err != nil {
		return err
	}

	if err := s.deliver(ctx, destination, code, channel); err != nil {
		return err
	}

	utils.Logger.Infof("Issued verification code to %s over %s", destination, channel)
	return nil
}

// deliver bounds the gateway call with the configured timeout so a hung
// provider cannot block the caller.
func (s *verificationService) deliver(ctx context.Context, destination, code string, channel models.Channel) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.gateway.Deliver(ctx, destination, code, channel)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: delivery to %s timed out after %s", utils.ErrDeliveryFailure, destination, s.cfg.DeliveryTimeout)
	}
}

func (s *verificationService) validateDestination(ctx context.Context, destination string, channel models.Channel) error {
	if !channel.Valid() {
		return fmt.Errorf("%w: unknown channel %q", utils.ErrInvalidDestination, channel)
	}

	switch channel {
	case models.ChannelEmail:
		if !utils.IsValidEmailSyntax(destination) {
			return utils.ErrInvalidDestination
		}
	default: // sms, call
		ok, err := utils.ValidatePhoneNumber(ctx, destination, s.cfg.ValidatePhoneWithTwilio, s.twilioClient)
		if err != nil {
			utils.Logger.WithError(err).Warnf("Phone lookup failed for %s, falling back to shape check", destination)
			ok = utils.IsE164(destination)
		}
		if !ok {
			return utils.ErrInvalidDestination
		}
	}
	return nil
}

// ---------------------------------------------------------------------
// Check
// ---------------------------------------------------------------------
func (s *verificationService) Check(ctx context.Context, destination, candidateCode string) error {
	rec, err := s.store.Get(ctx, destination)
	if err != nil {
		return err
	}
	// Absent covers both true expiry and never-issued; callers cannot
	// distinguish the two.
	if rec == nil {
		return utils.ErrCodeExpired
	}

	if rec.Attempts >= rec.MaxAttempts {
		if _, delErr := s.store.Delete(ctx, destination); delErr != nil {
			return delErr
		}
		return utils.ErrCodeExhausted
	}

	if !utils.SecureCompare(utils.HashCode(candidateCode), rec.CodeHash) {
		attempts, incErr := s.store.IncrementAttempts(ctx, destination)
		if incErr != nil {
			if errors.Is(incErr, utils.ErrNotFound) {
				// Record vanished between Get and the increment
				// (expired or consumed by a concurrent check).
				return utils.ErrCodeExpired
			}
			return incErr
		}
		if attempts >= rec.MaxAttempts {
			if _, delErr := s.store.Delete(ctx, destination); delErr != nil {
				return delErr
			}
			utils.Logger.Warnf("Verification for %s exhausted after %d attempts", destination, attempts)
			return utils.ErrCodeExhausted
		}
		return utils.ErrCodeInvalid
	}

	// Codes are single-use: the delete decides the winner when two checks
	// race with the correct code. Only the caller that actually removed
	// the record observes Verified.
	deleted, err := s.store.Delete(ctx, destination)
	if err != nil {
		return err
	}
	if !deleted {
		return utils.ErrCodeExpired
	}

	utils.Logger.Infof("Destination %s verified", destination)
	return nil
}
