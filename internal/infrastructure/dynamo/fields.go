package dynamo

// Attribute names of the verification session table.
const (
	fieldKey       = "key"
	fieldValue     = "value"
	fieldExpiresAt = "expires_at" // epoch seconds; the table's TTL attribute
)
