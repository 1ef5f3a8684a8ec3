// Package notification delivers one-time codes over email and SMS.
package notification

import (
	"context"
	"fmt"

	"github.com/go-storefront-api/internal/domain"
)

// Channel delivers a code to one destination. Send never returns an error:
// on failure it logs the code as a last resort and reports false.
type Channel interface {
	Send(ctx context.Context, destination, code string) bool
}

// Dispatcher routes a code to the channel matching the verification method.
type Dispatcher interface {
	Send(ctx context.Context, ch domain.Channel, destination, code string) error
}

type dispatcher struct {
	channels map[domain.Channel]Channel
}

func NewDispatcher(email, sms Channel) Dispatcher {
	return &dispatcher{channels: map[domain.Channel]Channel{
		domain.ChannelEmail: email,
		domain.ChannelPhone: sms,
	}}
}

func (d *dispatcher) Send(ctx context.Context, ch domain.Channel, destination, code string) error {
	c, ok := d.channels[ch]
	if !ok || c == nil {
		return fmt.Errorf("unknown channel %q: %w", ch, domain.ErrBadRequest)
	}
	if !c.Send(ctx, destination, code) {
		return fmt.Errorf("send via %s: %w", ch, domain.ErrDispatch)
	}
	return nil
}
