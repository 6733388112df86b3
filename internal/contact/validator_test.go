package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckRequiredAllPresent(t *testing.T) {
	ok, missing := CheckRequired(Submission{
		"name":    "Ada",
		"email":   "a@b.com",
		"message": "hi",
	})

	assert.True(t, ok)
	assert.False(t, missing["name"])
	assert.False(t, missing["email"])
	assert.False(t, missing["message"])
}

func TestCheckRequiredMissingName(t *testing.T) {
	ok, missing := CheckRequired(Submission{
		"email":   "a@b.com",
		"message": "hi",
	})

	assert.False(t, ok)
	assert.True(t, missing["name"])
	assert.False(t, missing["email"])
	assert.False(t, missing["message"])
}

func TestCheckRequiredWhitespaceCountsAsMissing(t *testing.T) {
	ok, missing := CheckRequired(Submission{
		"name":    "  ",
		"email":   "a@b.com",
		"message": "\t\n",
	})

	assert.False(t, ok)
	assert.True(t, missing["name"])
	assert.True(t, missing["message"])
}

func TestHoneypotTriggered(t *testing.T) {
	assert.False(t, HoneypotTriggered(Submission{"name": "Ada"}))
	assert.False(t, HoneypotTriggered(Submission{"_hp": ""}))
	assert.True(t, HoneypotTriggered(Submission{"_hp": "gotcha"}))
}

func TestMetadataExcludesReservedKeysCaseInsensitively(t *testing.T) {
	sub := Submission{
		"name":    "Ada",
		"Email":   "a@b.com",
		"MESSAGE": "hi",
		"_hp":     "",
		"_TS":     "123",
		"_sig":    "abc",
		"phone":   "555-0100",
		"budget":  "10k",
		"empty":   "",
	}

	meta := sub.Metadata()

	assert.Equal(t, map[string]string{
		"phone":  "555-0100",
		"budget": "10k",
	}, meta)
}
