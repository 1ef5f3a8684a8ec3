package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Mailer is satisfied by the SMTP mailer.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

const emailSubject = "Your Verification Code"

const emailBody = `Hello,

Your verification code is: %s

This code will expire in 10 minutes.

If you didn't request this code, please ignore this email.

Thank you,
Your Store Team
`

// EmailChannel sends codes by email. When disabled it only logs the code
// and reports success, which keeps local development usable without SMTP.
type EmailChannel struct {
	mailer  Mailer
	enabled bool
	timeout time.Duration
	log     *zap.Logger
}

func NewEmailChannel(mailer Mailer, enabled bool, timeout time.Duration, log *zap.Logger) *EmailChannel {
	return &EmailChannel{mailer: mailer, enabled: enabled && mailer != nil, timeout: timeout, log: log}
}

func (c *EmailChannel) Send(ctx context.Context, destination, code string) bool {
	if !c.enabled {
		c.log.Warn("email delivery disabled; code logged instead",
			zap.String("email", destination), zap.String("code", code))
		return true
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.mailer.SendEmail(ctx, destination, emailSubject, fmt.Sprintf(emailBody, code)); err != nil {
		c.log.Error("failed to send verification email", zap.String("email", destination), zap.Error(err))
		c.log.Warn("verification code for undelivered email",
			zap.String("email", destination), zap.String("code", code))
		return false
	}
	c.log.Info("verification email sent", zap.String("email", destination))
	return true
}
