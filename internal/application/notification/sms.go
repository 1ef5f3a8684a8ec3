package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SMSSender is satisfied by the SNS and Twilio senders.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

const smsBody = "Your verification code is: %s. This code expires in 10 minutes."

// SMSChannel sends codes by SMS. The code is always logged before any
// delivery attempt; when disabled that log line is the only delivery.
type SMSChannel struct {
	sender      SMSSender
	enabled     bool
	countryCode string
	timeout     time.Duration
	log         *zap.Logger
}

func NewSMSChannel(sender SMSSender, enabled bool, countryCode string, timeout time.Duration, log *zap.Logger) *SMSChannel {
	return &SMSChannel{
		sender:      sender,
		enabled:     enabled && sender != nil,
		countryCode: countryCode,
		timeout:     timeout,
		log:         log,
	}
}

func (c *SMSChannel) Send(ctx context.Context, destination, code string) bool {
	c.log.Info("verification code for phone", zap.String("phone", destination), zap.String("code", code))
	if !c.enabled {
		c.log.Warn("sms delivery disabled; using log fallback", zap.String("phone", destination))
		return true
	}

	to := NormalizePhone(destination, c.countryCode)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.sender.SendSMS(ctx, to, fmt.Sprintf(smsBody, code)); err != nil {
		c.log.Error("failed to send verification sms", zap.String("phone", to), zap.Error(err))
		return false
	}
	c.log.Info("verification sms sent", zap.String("phone", to))
	return true
}

// NormalizePhone rewrites a regional number into +<countryCode> form:
// a leading 0 is replaced by the country code, and a number without a
// leading + gets the country code prepended. Numbers starting with + are
// returned unchanged.
func NormalizePhone(phone, countryCode string) string {
	phone = strings.TrimSpace(phone)
	switch {
	case strings.HasPrefix(phone, "+"):
		return phone
	case strings.HasPrefix(phone, "0"):
		return "+" + countryCode + phone[1:]
	default:
		return "+" + countryCode + phone
	}
}
