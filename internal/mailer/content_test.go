package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildContentSubject(t *testing.T) {
	content := BuildContent("acme", "Ada", "ada@example.com", "hello", nil)

	assert.Equal(t, "New contact (acme) from Ada", content.Subject)
}

func TestBuildContentTextBody(t *testing.T) {
	content := BuildContent("acme", "Ada", "ada@example.com", "hello there",
		map[string]string{"phone_number": "555-0100", "budget": "10k"})

	assert.Contains(t, content.TextBody, "From: Ada <ada@example.com>")
	assert.Contains(t, content.TextBody, "hello there")
	assert.Contains(t, content.TextBody, "Additional Information")
	assert.Contains(t, content.TextBody, "Phone Number: 555-0100")
	assert.Contains(t, content.TextBody, "Budget: 10k")
}

func TestBuildContentOmitsMetadataBlockWhenEmpty(t *testing.T) {
	content := BuildContent("acme", "Ada", "ada@example.com", "hi", nil)

	assert.NotContains(t, content.TextBody, "Additional Information")
	assert.NotContains(t, content.HTMLBody, "Additional Information")
}

func TestBuildContentEscapesHTML(t *testing.T) {
	content := BuildContent("acme", "<script>", "a@b.com", "<b>bold</b>",
		map[string]string{"note": "<img>"})

	assert.NotContains(t, content.HTMLBody, "<script>")
	assert.NotContains(t, content.HTMLBody, "<b>bold</b>")
	assert.NotContains(t, content.HTMLBody, "<img>")
	assert.Contains(t, content.HTMLBody, "&lt;script&gt;")
}

func TestFormatFieldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"phone_number", "Phone Number"},
		{"budget", "Budget"},
		{"company-name", "Company Name"},
		{"subject", "Subject"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFieldName(tt.in), tt.in)
	}
}
