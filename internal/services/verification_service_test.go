package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/config"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/repositories"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// fakeGateway records delivered codes. It records the code even when
// configured to fail, which lets tests exercise the store-then-deliver
// ordering.
type fakeGateway struct {
	mu         sync.Mutex
	lastCode   string
	deliveries int
	failWith   error
	delay      time.Duration
}

func (g *fakeGateway) Deliver(_ context.Context, _, code string, _ models.Channel) error {
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deliveries++
	g.lastCode = code
	return g.failWith
}

func (g *fakeGateway) LastCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastCode
}

func testConfig() *config.Config {
	return &config.Config{
		CodeLength:      6,
		CodeTTL:         time.Minute,
		MaxAttempts:     3,
		ReissueInterval: 50 * time.Millisecond,
		DeliveryTimeout: time.Second,

		IssueLimitPerIP:          1000,
		IssueLimitPerDestination: 1000,
		GlobalIssueLimit:         100000,
		RateLimitWindow:          time.Hour,
	}
}

func newTestService(cfg *config.Config, gw *fakeGateway) (VerificationService, repositories.VerificationRepository) {
	store := repositories.NewMemoryVerificationRepository()
	limiter := NewRateLimiterService(repositories.NewMemoryRateLimitRepository(), cfg)
	svc := NewVerificationService(store, gw, limiter, cfg, nil)
	return svc, store
}

const testPhone = "+15551234567"

func TestIssueAndCheckFlow(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc, _ := newTestService(testConfig(), gw)

	require.NoError(t, svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4"))
	code := gw.LastCode()
	require.Len(t, code, 6)

	// Wrong code first, then the right one.
	err := svc.Check(ctx, testPhone, "000000")
	require.ErrorIs(t, err, utils.ErrCodeInvalid)

	require.NoError(t, svc.Check(ctx, testPhone, code))

	// One-time use: the same correct code is now dead.
	err = svc.Check(ctx, testPhone, code)
	require.ErrorIs(t, err, utils.ErrCodeExpired)
}

func TestCheckWithoutIssue(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(testConfig(), gw)

	err := svc.Check(context.Background(), testPhone, "123456")
	require.ErrorIs(t, err, utils.ErrCodeExpired)
}

func TestReissueThrottle(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc, _ := newTestService(testConfig(), gw)

	require.NoError(t, svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4"))
	firstCode := gw.LastCode()

	err := svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4")
	require.ErrorIs(t, err, utils.ErrTooManyRequests)

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4"))

	// The reissue superseded the first record; its code is invalid now.
	if firstCode != gw.LastCode() {
		err = svc.Check(ctx, testPhone, firstCode)
		require.ErrorIs(t, err, utils.ErrCodeInvalid)
	}
	require.NoError(t, svc.Check(ctx, testPhone, gw.LastCode()))
}

func TestAttemptExhaustion(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc, _ := newTestService(testConfig(), gw)

	require.NoError(t, svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4"))
	code := gw.LastCode()

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	require.ErrorIs(t, svc.Check(ctx, testPhone, wrong), utils.ErrCodeInvalid)
	require.ErrorIs(t, svc.Check(ctx, testPhone, wrong), utils.ErrCodeInvalid)
	// Third failure hits MaxAttempts.
	require.ErrorIs(t, svc.Check(ctx, testPhone, wrong), utils.ErrCodeExhausted)

	// Even the correct code is dead now.
	require.ErrorIs(t, svc.Check(ctx, testPhone, code), utils.ErrCodeExpired)
}

func TestExpiredRecordNeverMatches(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc, store := newTestService(testConfig(), gw)

	code := "482913"
	now := time.Now()
	require.NoError(t, store.Put(ctx, &models.PendingVerification{
		Destination: testPhone,
		CodeHash:    utils.HashCode(code),
		Channel:     models.ChannelSMS,
		IssuedAt:    now.Add(-20 * time.Minute),
		ExpiresAt:   now.Add(-10 * time.Minute),
		MaxAttempts: 3,
	}))

	require.ErrorIs(t, svc.Check(ctx, testPhone, code), utils.ErrCodeExpired)
}

func TestDeliveryFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{failWith: utils.ErrDeliveryFailure}
	svc, _ := newTestService(testConfig(), gw)

	err := svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4")
	require.ErrorIs(t, err, utils.ErrDeliveryFailure)

	// Store-then-deliver: the record survived the failed send, so the
	// generated code is still checkable.
	require.NoError(t, svc.Check(ctx, testPhone, gw.LastCode()))
}

func TestDeliveryTimeout(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.DeliveryTimeout = 30 * time.Millisecond
	gw := &fakeGateway{delay: 300 * time.Millisecond}

	store := repositories.NewMemoryVerificationRepository()
	limiter := NewRateLimiterService(repositories.NewMemoryRateLimitRepository(), cfg)
	svc := NewVerificationService(store, gw, limiter, cfg, nil)

	err := svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4")
	require.ErrorIs(t, err, utils.ErrDeliveryFailure)
}

func TestInvalidDestinations(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc, _ := newTestService(testConfig(), gw)

	require.ErrorIs(t, svc.Issue(ctx, "12345", models.ChannelSMS, "1.2.3.4"), utils.ErrInvalidDestination)
	require.ErrorIs(t, svc.Issue(ctx, "not-a-phone", models.ChannelCall, "1.2.3.4"), utils.ErrInvalidDestination)
	require.ErrorIs(t, svc.Issue(ctx, "not-an-email", models.ChannelEmail, "1.2.3.4"), utils.ErrInvalidDestination)
	require.ErrorIs(t, svc.Issue(ctx, testPhone, models.Channel("fax"), "1.2.3.4"), utils.ErrInvalidDestination)

	require.NoError(t, svc.Issue(ctx, "user@example.com", models.ChannelEmail, "1.2.3.4"))
}

func TestPerDestinationRateLimit(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.ReissueInterval = 0
	cfg.IssueLimitPerDestination = 2
	gw := &fakeGateway{}

	store := repositories.NewMemoryVerificationRepository()
	limiter := NewRateLimiterService(repositories.NewMemoryRateLimitRepository(), cfg)
	svc := NewVerificationService(store, gw, limiter, cfg, nil)

	require.NoError(t, svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4"))
	require.NoError(t, svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4"))
	err := svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4")
	require.ErrorIs(t, err, utils.ErrRateLimitExceeded)
}

func TestConcurrentCheckSingleWinner(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc, _ := newTestService(testConfig(), gw)

	require.NoError(t, svc.Issue(ctx, testPhone, models.ChannelSMS, "1.2.3.4"))
	code := gw.LastCode()

	const checkers = 8
	results := make(chan error, checkers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < checkers; i++ {
		go func() {
			start.Wait()
			results <- svc.Check(ctx, testPhone, code)
		}()
	}
	start.Done()

	var verified, expired int
	for i := 0; i < checkers; i++ {
		err := <-results
		switch {
		case err == nil:
			verified++
		case errors.Is(err, utils.ErrCodeExpired):
			expired++
		default:
			t.Fatalf("unexpected outcome: %v", err)
		}
	}

	// No double-spend: exactly one caller wins the code.
	require.Equal(t, 1, verified)
	require.Equal(t, checkers-1, expired)
}

// The walkthrough scenario: wrong guess, then the delivered code.
func TestVerificationScenario(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc, store := newTestService(testConfig(), gw)

	require.NoError(t, svc.Issue(ctx, "+15551234567", models.ChannelSMS, "1.2.3.4"))
	code := gw.LastCode()

	wrong := "000000"
	if wrong == code {
		wrong = "999999"
	}
	require.ErrorIs(t, svc.Check(ctx, "+15551234567", wrong), utils.ErrCodeInvalid)

	rec, err := store.Get(ctx, "+15551234567")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, 1, rec.Attempts)

	require.NoError(t, svc.Check(ctx, "+15551234567", code))

	rec, err = store.Get(ctx, "+15551234567")
	require.NoError(t, err)
	require.Nil(t, rec)
}
