package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "s3cret"

func frozenVerifier(at time.Time) *Verifier {
	v := NewVerifier(600)
	v.now = func() time.Time { return at }
	return v
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := strconv.FormatInt(now.Unix(), 10)
	meta := map[string]string{"company": "Acme", "phone": "555-0100"}

	sig := Compute(testSecret, "acme", ts, "a@b.com", "Ada", "hello there", meta)

	v := frozenVerifier(now)
	assert.True(t, v.Verify(testSecret, "acme", ts, "a@b.com", "Ada", "hello there", meta, sig))
}

func TestVerifyRejectsUppercaseHex(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := strconv.FormatInt(now.Unix(), 10)

	sig := Compute(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil)

	v := frozenVerifier(now)
	assert.False(t, v.Verify(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil, strings.ToUpper(sig)))
}

func TestVerifyAcceptsIndependentlySignedMultibyteMessage(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := strconv.FormatInt(now.Unix(), 10)

	// 150 characters but 300 bytes; fits entirely within the 200-character
	// prefix, so an external signer covers the whole message.
	msg := strings.Repeat("é", 150)

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte("acme|" + ts + "|a@b.com|Ada|" + msg + "|"))
	sig := hex.EncodeToString(mac.Sum(nil))

	v := frozenVerifier(now)
	assert.True(t, v.Verify(testSecret, "acme", ts, "a@b.com", "Ada", msg, nil, sig))
}

func TestVerifyRejectsTamperedFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := strconv.FormatInt(now.Unix(), 10)

	sig := Compute(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil)

	v := frozenVerifier(now)
	assert.False(t, v.Verify(testSecret, "acme", ts, "evil@b.com", "Ada", "hi", nil, sig))
	assert.False(t, v.Verify(testSecret, "acme", ts, "a@b.com", "Eve", "hi", nil, sig))
	assert.False(t, v.Verify(testSecret, "acme", ts, "a@b.com", "Ada", "bye", nil, sig))
	assert.False(t, v.Verify("wrong", "acme", ts, "a@b.com", "Ada", "hi", nil, sig))
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-11 * time.Minute)
	ts := strconv.FormatInt(old.Unix(), 10)

	sig := Compute(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil)

	v := frozenVerifier(now)
	assert.False(t, v.Verify(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil, sig))
}

func TestVerifyRejectsFutureTimestampBeyondWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(11 * time.Minute)
	ts := strconv.FormatInt(future.Unix(), 10)

	sig := Compute(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil)

	v := frozenVerifier(now)
	assert.False(t, v.Verify(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil, sig))
}

func TestVerifyAcceptsSlightClockSkew(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ahead := now.Add(5 * time.Minute)
	ts := strconv.FormatInt(ahead.Unix(), 10)

	sig := Compute(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil)

	v := frozenVerifier(now)
	assert.True(t, v.Verify(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil, sig))
}

func TestVerifyRejectsMissingInputs(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := strconv.FormatInt(now.Unix(), 10)
	v := frozenVerifier(now)

	assert.False(t, v.Verify(testSecret, "acme", "", "a@b.com", "Ada", "hi", nil, "deadbeef"))
	assert.False(t, v.Verify(testSecret, "acme", ts, "a@b.com", "Ada", "hi", nil, ""))
	assert.False(t, v.Verify(testSecret, "acme", "not-a-number", "a@b.com", "Ada", "hi", nil, "deadbeef"))
}

func TestVerifyPassesWhenNoSecretConfigured(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := frozenVerifier(now)

	assert.True(t, v.Verify("", "acme", "", "a@b.com", "Ada", "hi", nil, ""))
}

func TestComputeOnlyCoversMessagePrefix(t *testing.T) {
	ts := "1700000000"
	long := strings.Repeat("x", 300)

	sigA := Compute(testSecret, "acme", ts, "a@b.com", "Ada", long, nil)
	sigB := Compute(testSecret, "acme", ts, "a@b.com", "Ada", long+"tail", nil)
	sigC := Compute(testSecret, "acme", ts, "a@b.com", "Ada", long[:150], nil)

	assert.Equal(t, sigA, sigB)
	assert.NotEqual(t, sigA, sigC)
}

func TestComputeTruncatesMessageByCharacters(t *testing.T) {
	ts := "1700000000"
	base := strings.Repeat("é", 200)

	sigA := Compute(testSecret, "acme", ts, "a@b.com", "Ada", base, nil)
	sigB := Compute(testSecret, "acme", ts, "a@b.com", "Ada", base+"tail", nil)
	sigC := Compute(testSecret, "acme", ts, "a@b.com", "Ada", base[:len(base)-2], nil)

	assert.Equal(t, sigA, sigB)
	assert.NotEqual(t, sigA, sigC)
}

func TestComputeSortsMetadataKeys(t *testing.T) {
	ts := "1700000000"

	sigA := Compute(testSecret, "acme", ts, "a@b.com", "Ada", "hi",
		map[string]string{"b": "2", "a": "1"})
	sigB := Compute(testSecret, "acme", ts, "a@b.com", "Ada", "hi",
		map[string]string{"a": "1", "b": "2"})

	assert.Equal(t, sigA, sigB)
}
