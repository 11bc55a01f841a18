package gateways

import (
	"context"
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// twilioGateway delivers codes over SMS or voice call via the Twilio REST
// API. One instance handles both channels; the from number is shared.
type twilioGateway struct {
	client    *twilio.RestClient
	fromPhone string
}

func NewTwilioGateway(accountSID, authToken, fromPhone string) DeliveryGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &twilioGateway{client: client, fromPhone: fromPhone}
}

func (g *twilioGateway) Deliver(ctx context.Context, destination, code string, channel models.Channel) error {
	switch channel {
	case models.ChannelSMS:
		return g.sendSMS(ctx, destination, code)
	case models.ChannelCall:
		return g.placeCall(ctx, destination, code)
	default:
		return fmt.Errorf("%w: twilio gateway cannot deliver over %q", utils.ErrDeliveryFailure, channel)
	}
}

func (g *twilioGateway) sendSMS(_ context.Context, destination, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(destination)
	params.SetFrom(g.fromPhone)
	params.SetBody(fmt.Sprintf("Your verification code is %s", code))

	if _, err := g.client.Api.CreateMessage(params); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send verification SMS to %s via Twilio", destination)
		return fmt.Errorf("%w: twilio sms: %v", utils.ErrDeliveryFailure, err)
	}
	return nil
}

func (g *twilioGateway) placeCall(_ context.Context, destination, code string) error {
	// Space the digits out so text-to-speech reads them one by one.
	spoken := strings.Join(strings.Split(code, ""), ", ")
	twiml := fmt.Sprintf("<Response><Say>Your verification code is %s. Again, your code is %s.</Say></Response>", spoken, spoken)

	params := &twilioApi.CreateCallParams{}
	params.SetTo(destination)
	params.SetFrom(g.fromPhone)
	params.SetTwiml(twiml)

	if _, err := g.client.Api.CreateCall(params); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to place verification call to %s via Twilio", destination)
		return fmt.Errorf("%w: twilio call: %v", utils.ErrDeliveryFailure, err)
	}
	return nil
}
