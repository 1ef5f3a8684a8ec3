package twilio

import (
	"context"
	"errors"
	"testing"
	"time"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-storefront-api/internal/config"
)

type fakeMessages struct {
	msg   *twilioApi.ApiV2010Message
	err   error
	delay time.Duration
	got   *twilioApi.CreateMessageParams
}

func (f *fakeMessages) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.got = p
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.msg, f.err
}

func strPtr(s string) *string { return &s }

func TestSendSMS_Success(t *testing.T) {
	api := &fakeMessages{msg: &twilioApi.ApiV2010Message{Sid: strPtr("SM1"), Status: strPtr("queued")}}
	s := &Sender{api: api, from: "+15550001111"}

	require.NoError(t, s.SendSMS(context.Background(), "+254712345678", "code 123456"))
	require.NotNil(t, api.got)
	assert.Equal(t, "+254712345678", *api.got.To)
	assert.Equal(t, "+15550001111", *api.got.From)
	assert.Equal(t, "code 123456", *api.got.Body)
}

func TestSendSMS_MalformedResponse(t *testing.T) {
	cases := map[string]*twilioApi.ApiV2010Message{
		"nil message": nil,
		"missing sid": {Status: strPtr("queued")},
		"failed":      {Sid: strPtr("SM1"), Status: strPtr("failed")},
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			s := &Sender{api: &fakeMessages{msg: msg}, from: "+1"}
			assert.Error(t, s.SendSMS(context.Background(), "+254712345678", "x"))
		})
	}
}

func TestSendSMS_APIError(t *testing.T) {
	s := &Sender{api: &fakeMessages{err: errors.New("401 unauthorized")}, from: "+1"}
	assert.ErrorContains(t, s.SendSMS(context.Background(), "+254712345678", "x"), "401")
}

func TestSendSMS_Timeout(t *testing.T) {
	api := &fakeMessages{msg: &twilioApi.ApiV2010Message{Sid: strPtr("SM1")}, delay: 500 * time.Millisecond}
	s := &Sender{api: api, from: "+1"}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.SendSMS(ctx, "+254712345678", "x"), context.DeadlineExceeded)
}

func TestNewSender_RequiresCredentials(t *testing.T) {
	_, err := NewSender(&config.Config{TwilioAccountSID: "AC1"})
	assert.Error(t, err)

	s, err := NewSender(&config.Config{TwilioAccountSID: "AC1", TwilioAuthToken: "tok", TwilioFrom: "+1"})
	require.NoError(t, err)
	assert.NotNil(t, s)
}
