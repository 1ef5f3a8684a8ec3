// Package twilio sends SMS through the Twilio Messages API.
package twilio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/go-storefront-api/internal/config"
)

type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Sender implements the same SendSMS contract as the SNS sender.
type Sender struct {
	api  messageAPI
	from string
}

func NewSender(cfg *config.Config) (*Sender, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFrom == "" {
		return nil, errors.New("twilio: TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM are required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &Sender{api: client.Api, from: cfg.TwilioFrom}, nil
}

type result struct {
	msg *twilioApi.ApiV2010Message
	err error
}

// SendSMS creates one message. The Twilio client is not context aware, so
// the call runs in its own goroutine and ctx bounds how long we wait.
func (s *Sender) SendSMS(ctx context.Context, to, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(message)

	done := make(chan result, 1)
	go func() {
		msg, err := s.api.CreateMessage(params)
		done <- result{msg: msg, err: err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("twilio create message: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("twilio create message: %w", r.err)
		}
		return checkMessage(r.msg)
	}
}

func checkMessage(msg *twilioApi.ApiV2010Message) error {
	if msg == nil || msg.Sid == nil || *msg.Sid == "" {
		return errors.New("twilio create message: response carried no sid")
	}
	if msg.Status != nil {
		switch strings.ToLower(*msg.Status) {
		case "failed", "undelivered", "canceled":
			return fmt.Errorf("twilio create message: status %s", *msg.Status)
		}
	}
	return nil
}
