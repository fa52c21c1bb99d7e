package twilio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm-server/internal/dispatch"
	"crm-server/internal/observability"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const whatsappPrefix = "whatsapp:"

var ErrNoSender = errors.New("no twilio sender configured")

// messageCreator is the slice of the twilio REST client the gateway needs
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Client sends campaign messages through the Twilio Messages API. The
// campaign instance id is the sender; defaultFrom is used when it is empty.
type Client struct {
	api         messageCreator
	defaultFrom string
	logger      *observability.Logger
}

func NewClient(accountSID, authToken, defaultFrom string, logger *observability.Logger) *Client {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Client{api: rest.Api, defaultFrom: defaultFrom, logger: logger}
}

func (c *Client) SendText(ctx context.Context, instance, phone, text string) (string, error) {
	return c.send(ctx, instance, phone, text, nil)
}

func (c *Client) SendMedia(ctx context.Context, instance, phone string, media dispatch.Media, caption string) (string, error) {
	return c.send(ctx, instance, phone, caption, []string{media.URL})
}

func (c *Client) send(ctx context.Context, instance, phone, body string, mediaURLs []string) (string, error) {
	from := instance
	if from == "" {
		from = c.defaultFrom
	}
	if from == "" {
		return "", ErrNoSender
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(recipientAddress(from, phone))
	if body != "" {
		params.SetBody(body)
	}
	if len(mediaURLs) > 0 {
		params.SetMediaUrl(mediaURLs)
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "gateway", Value: "twilio"},
		observability.Field{Key: "instance_id", Value: from},
	)

	msg, err := c.api.CreateMessage(params)
	if err != nil {
		c.logger.Warn(ctx, fmt.Sprintf("twilio send failed: %v", err))
		return "", fmt.Errorf("failed to send twilio message: %w", err)
	}

	if msg == nil || msg.Sid == nil {
		return "", nil
	}
	return *msg.Sid, nil
}

// recipientAddress renders digits as E.164, on the WhatsApp channel when the sender is
func recipientAddress(from, phone string) string {
	to := "+" + strings.TrimPrefix(phone, "+")
	if strings.HasPrefix(from, whatsappPrefix) {
		return whatsappPrefix + to
	}
	return to
}
