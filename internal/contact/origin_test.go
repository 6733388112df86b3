package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginAllowedNoHeader(t *testing.T) {
	assert.True(t, OriginAllowed("", []string{"https://acme.com"}))
}

func TestOriginAllowedEmptyAllowList(t *testing.T) {
	assert.True(t, OriginAllowed("https://anywhere.com", nil))
}

func TestOriginAllowedExactMatch(t *testing.T) {
	allowed := []string{"https://acme.com", "https://www.acme.com"}

	assert.True(t, OriginAllowed("https://acme.com", allowed))
	assert.True(t, OriginAllowed("https://www.acme.com", allowed))
	assert.False(t, OriginAllowed("https://evil.com", allowed))
}

func TestOriginAllowedCaseInsensitiveAndTrimmed(t *testing.T) {
	allowed := []string{" https://Acme.com "}

	assert.True(t, OriginAllowed("https://acme.com", allowed))
	assert.True(t, OriginAllowed("HTTPS://ACME.COM", allowed))
}

func TestOriginAllowedRejectsPrefixMatch(t *testing.T) {
	allowed := []string{"https://acme.com"}

	assert.False(t, OriginAllowed("https://acme.com.evil.com", allowed))
}
