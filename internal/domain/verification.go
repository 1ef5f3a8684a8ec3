package domain

// Channel is the delivery mechanism for a one-time code.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// VerificationSession is the ephemeral record kept in the verification store.
// It is serialised as JSON under a key of the form "guest_verify:<channel>:<identity>"
// or "account_verify:<account_id>:<channel>".
type VerificationSession struct {
	Code     string `json:"code"`
	Attempts int    `json:"attempts"`
	Verified bool   `json:"verified"`
}
