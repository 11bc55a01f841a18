package gateways

import (
	"context"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// devGateway logs instead of sending. Used with DELIVERY_DRY_RUN=true so the
// service can run locally without provider credentials.
type devGateway struct{}

func NewDevGateway() DeliveryGateway {
	return &devGateway{}
}

func (g *devGateway) Deliver(_ context.Context, destination, code string, channel models.Channel) error {
	utils.Logger.Infof("[dry-run] would deliver code %s to %s over %s", code, destination, channel)
	return nil
}
