package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	RateKeyPrefix = "contact_rate:"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Reserved submission keys; everything else is forwarded as metadata.
const (
	FieldName      = "name"
	FieldEmail     = "email"
	FieldMessage   = "message"
	FieldHoneypot  = "_hp"
	FieldTimestamp = "_ts"
	FieldSignature = "_sig"
)

const (
	MessageSignaturePrefixLen = 200
)

const (
	APIKeyHeader = "X-Api-Key"
)

const (
	SubmissionEventType = "submission.received"
)
