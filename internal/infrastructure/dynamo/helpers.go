package dynamo

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// expiryEpoch converts a TTL into the epoch-seconds value DynamoDB's TTL
// sweeper expects. Partial seconds round up so an item never expires early.
func expiryEpoch(now time.Time, ttl time.Duration) int64 {
	exp := now.Add(ttl)
	sec := exp.Unix()
	if exp.Nanosecond() > 0 {
		sec++
	}
	return sec
}

// expired reports whether an item with the given expires_at is past due.
// DynamoDB deletes expired items lazily, so reads must filter them.
func expired(now time.Time, expiresAt int64) bool {
	return expiresAt > 0 && now.Unix() >= expiresAt
}
