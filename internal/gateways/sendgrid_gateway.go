package gateways

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

type sendgridGateway struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridGateway(apiKey, fromEmail, fromName string) DeliveryGateway {
	return &sendgridGateway{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (g *sendgridGateway) Deliver(ctx context.Context, destination, code string, channel models.Channel) error {
	if channel != models.ChannelEmail {
		return fmt.Errorf("%w: sendgrid gateway cannot deliver over %q", utils.ErrDeliveryFailure, channel)
	}

	from := mail.NewEmail(g.fromName, g.fromEmail)
	to := mail.NewEmail("", destination)
	subject := "Your verification code"
	plain := fmt.Sprintf("Your verification code is %s", code)
	html := fmt.Sprintf("<p>Your verification code is <strong>%s</strong></p>", code)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)

	resp, err := g.client.SendWithContext(ctx, msg)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send verification email to %s via SendGrid", destination)
		return fmt.Errorf("%w: sendgrid: %v", utils.ErrDeliveryFailure, err)
	}
	if resp.StatusCode >= 400 {
		utils.Logger.Errorf("SendGrid rejected verification email to %s: status %d", destination, resp.StatusCode)
		return fmt.Errorf("%w: sendgrid status %d", utils.ErrDeliveryFailure, resp.StatusCode)
	}
	return nil
}
