package gateways

import (
	"context"
	"fmt"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// DeliveryGateway sends a verification code to a destination over a channel.
// Implementations must report failures; delivery is never assumed.
type DeliveryGateway interface {
	Deliver(ctx context.Context, destination, code string, channel models.Channel) error
}

// channelRouter dispatches Deliver calls to the gateway registered for the
// channel. This is the single DeliveryGateway the verification service sees;
// providers stay interchangeable behind it.
type channelRouter struct {
	byChannel map[models.Channel]DeliveryGateway
}

func NewChannelRouter(sms, call, email DeliveryGateway) DeliveryGateway {
	return &channelRouter{
		byChannel: map[models.Channel]DeliveryGateway{
			models.ChannelSMS:   sms,
			models.ChannelCall:  call,
			models.ChannelEmail: email,
		},
	}
}

func (r *channelRouter) Deliver(ctx context.Context, destination, code string, channel models.Channel) error {
	gw, ok := r.byChannel[channel]
	if !ok || gw == nil {
		return fmt.Errorf("%w: no gateway configured for channel %q", utils.ErrDeliveryFailure, channel)
	}
	return gw.Deliver(ctx, destination, code, channel)
}
