package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrKey(t *testing.T) {
	k := strKey(fieldKey, "guest_verify:email:a@b.com")
	require.Len(t, k, 1)
	s, ok := k[fieldKey].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "guest_verify:email:a@b.com", s.Value)
}

func TestExpiryEpoch_RoundsUp(t *testing.T) {
	now := time.Unix(1000, 500)
	assert.Equal(t, int64(1601), expiryEpoch(now, 600*time.Second))
	assert.Equal(t, int64(1600), expiryEpoch(time.Unix(1000, 0), 600*time.Second))
}

func TestExpired(t *testing.T) {
	now := time.Unix(2000, 0)
	assert.False(t, expired(now, 2001))
	assert.True(t, expired(now, 2000))
	assert.True(t, expired(now, 1999))
	assert.False(t, expired(now, 0), "items without an expiry never expire")
}
