package contact

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBodyJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ada","email":"a@b.com","message":"hi","phone":"555"}`))
	r.Header.Set("Content-Type", "application/json")

	sub, err := ParseBody(r, 65536)
	require.NoError(t, err)

	assert.Equal(t, "Ada", sub.Name())
	assert.Equal(t, "a@b.com", sub.Email())
	assert.Equal(t, "hi", sub.Message())
	assert.Equal(t, "555", sub["phone"])
}

func TestParseBodyJSONStringifiesValues(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ada","count":3,"ratio":1.5,"agree":true,"note":null}`))
	r.Header.Set("Content-Type", "application/json")

	sub, err := ParseBody(r, 65536)
	require.NoError(t, err)

	assert.Equal(t, "3", sub["count"])
	assert.Equal(t, "1.5", sub["ratio"])
	assert.Equal(t, "true", sub["agree"])
	assert.Equal(t, "", sub["note"])
}

func TestParseBodyForm(t *testing.T) {
	body := "name=Ada&email=a%40b.com&message=hello+there&_hp="
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	sub, err := ParseBody(r, 65536)
	require.NoError(t, err)

	assert.Equal(t, "Ada", sub.Name())
	assert.Equal(t, "a@b.com", sub.Email())
	assert.Equal(t, "hello there", sub.Message())
	assert.Equal(t, "", sub["_hp"])
}

func TestParseBodyInvalidJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	r.Header.Set("Content-Type", "application/json")

	_, err := ParseBody(r, 65536)
	assert.Error(t, err)
}

func TestParseBodyRespectsSizeLimit(t *testing.T) {
	big := `{"name":"` + strings.Repeat("x", 1000) + `"}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(big))
	r.Header.Set("Content-Type", "application/json")

	// Truncated read produces invalid JSON.
	_, err := ParseBody(r, 64)
	assert.Error(t, err)
}
