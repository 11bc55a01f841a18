package services

import (
	"context"
	"fmt"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/config"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/repositories"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// RateLimiterService provides a high-level interface for checking issuance rate limits.
type RateLimiterService interface {
	CheckIssueRateLimits(ctx context.Context, ip, destination string, channel models.Channel) error
}

type rateLimiterService struct {
	repo repositories.RateLimitRepository
	cfg  *config.Config
}

func NewRateLimiterService(repo repositories.RateLimitRepository, cfg *config.Config) RateLimiterService {
	return &rateLimiterService{repo: repo, cfg: cfg}
}

// CheckIssueRateLimits checks global, per-IP, and per-destination limits for
// code issuance. Counters are keyed by channel so SMS abuse cannot starve
// email verification and vice versa.
func (s *rateLimiterService) CheckIssueRateLimits(ctx context.Context, ip, destination string, channel models.Channel) error {
	// 1. Global limit
	globalKey := fmt.Sprintf("%s:global", channel)
	allowed, err := s.repo.IncrementAndCheck(ctx, globalKey, s.cfg.GlobalIssueLimit, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Global issue rate limit exceeded (key: %s)", globalKey)
		return utils.ErrRateLimitExceeded
	}

	// 2. Per-IP limit
	ipKey := fmt.Sprintf("%s:ip:%s", channel, ip)
	allowed, err = s.repo.IncrementAndCheck(ctx, ipKey, s.cfg.IssueLimitPerIP, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-IP issue rate limit exceeded (key: %s)", ipKey)
		return utils.ErrRateLimitExceeded
	}

	// 3. Per-destination limit
	destKey := fmt.Sprintf("%s:destination:%s", channel, destination)
	allowed, err = s.repo.IncrementAndCheck(ctx, destKey, s.cfg.IssueLimitPerDestination, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-destination issue rate limit exceeded (key: %s)", destKey)
		return utils.ErrRateLimitExceeded
	}

	return nil
}
