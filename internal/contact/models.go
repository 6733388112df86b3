package contact

import (
	"strings"

	"formgate/internal/constants"
)

// Submission is the untrusted inbound payload, flattened to string fields.
// Reserved keys carry control data; everything else is tenant metadata.
type Submission map[string]string

func (s Submission) Name() string      { return s[constants.FieldName] }
func (s Submission) Email() string     { return s[constants.FieldEmail] }
func (s Submission) Message() string   { return s[constants.FieldMessage] }
func (s Submission) Timestamp() string { return s[constants.FieldTimestamp] }
func (s Submission) Signature() string { return s[constants.FieldSignature] }

// Metadata returns every non-reserved, non-empty field. Reserved keys are
// excluded case-insensitively.
func (s Submission) Metadata() map[string]string {
	meta := make(map[string]string)
	for k, v := range s {
		if v == "" || isReservedKey(k) {
			continue
		}
		meta[k] = v
	}
	return meta
}

func isReservedKey(key string) bool {
	switch strings.ToLower(key) {
	case constants.FieldName, constants.FieldEmail, constants.FieldMessage,
		constants.FieldHoneypot, constants.FieldTimestamp, constants.FieldSignature:
		return true
	}
	return false
}

// Outcome identifies which pipeline stage decided the request. Exactly one
// outcome is produced per request.
type Outcome int

const (
	OutcomeUnknownSite Outcome = iota
	OutcomeRateLimited
	OutcomeHoneypotSilent
	OutcomeOriginRejected
	OutcomeValidationFailed
	OutcomeSignatureInvalid
	OutcomeSuccess
	OutcomeServerError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnknownSite:
		return "unknown_site"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeHoneypotSilent:
		return "honeypot"
	case OutcomeOriginRejected:
		return "origin_rejected"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeSignatureInvalid:
		return "signature_invalid"
	case OutcomeSuccess:
		return "success"
	case OutcomeServerError:
		return "server_error"
	}
	return "unknown"
}

// Result is the pipeline's decision plus the data the handler needs to
// render the response.
type Result struct {
	Outcome  Outcome
	Redirect string
	Missing  map[string]bool
}
