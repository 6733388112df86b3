package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"formgate/internal/constants"
	"formgate/pkg/metrics"
)

// Verifier checks the HMAC proof a form client attaches to each submission.
// The client and server derive the same canonical string from the visible
// fields, so any tampering in transit invalidates the signature.
type Verifier struct {
	replayWindow time.Duration
	now          func() time.Time
}

func NewVerifier(replayWindowSeconds int64) *Verifier {
	return &Verifier{
		replayWindow: time.Duration(replayWindowSeconds) * time.Second,
		now:          time.Now,
	}
}

// Verify validates the timestamp freshness and the HMAC-SHA256 signature.
// Enforcement is opt-in per tenant: an empty secret passes trivially. The
// timestamp is unix seconds and must fall within the replay window on
// either side of server time. The signature must be lowercase hex.
func (v *Verifier) Verify(secret, siteID, ts, email, name, message string, metadata map[string]string, sig string) bool {
	if secret == "" {
		metrics.SignatureChecksTotal.WithLabelValues("skipped").Inc()
		return true
	}
	if ts == "" || sig == "" {
		metrics.SignatureChecksTotal.WithLabelValues("missing").Inc()
		return false
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		metrics.SignatureChecksTotal.WithLabelValues("invalid_timestamp").Inc()
		return false
	}

	drift := v.now().Unix() - unix
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(v.replayWindow.Seconds()) {
		metrics.SignatureChecksTotal.WithLabelValues("expired").Inc()
		return false
	}

	expected := Compute(secret, siteID, ts, email, name, message, metadata)
	if !constantTimeEqual(expected, sig) {
		metrics.SignatureChecksTotal.WithLabelValues("mismatch").Inc()
		return false
	}

	metrics.SignatureChecksTotal.WithLabelValues("valid").Inc()
	return true
}

// Compute derives the lowercase hex HMAC-SHA256 over the canonical string
//
//	siteId|ts|email|name|messagePrefix|metadataString
//
// where messagePrefix is the first 200 characters of the message and
// metadataString joins "key:value" pairs with "|", keys sorted ascending.
// The prefix counts characters, not bytes, so multibyte messages
// canonicalize the same way for every signer.
func Compute(secret, siteID, ts, email, name, message string, metadata map[string]string) string {
	prefix := message
	if runes := []rune(message); len(runes) > constants.MessageSignaturePrefixLen {
		prefix = string(runes[:constants.MessageSignaturePrefixLen])
	}

	parts := []string{siteID, ts, email, name, prefix, canonicalMetadata(metadata)}
	payload := strings.Join(parts, "|")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func canonicalMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return ""
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+":"+metadata[k])
	}
	return strings.Join(pairs, "|")
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
