package contact

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ParseBody reads the request body as either URL-encoded form data or a flat
// JSON object and flattens it into a Submission. Non-string JSON values are
// stringified. The reader is capped at maxBytes.
func ParseBody(r *http.Request, maxBytes int64) (Submission, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		return parseJSON(body)
	}
	return parseForm(body)
}

func parseJSON(body []byte) (Submission, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON body: %w", err)
	}

	sub := make(Submission, len(raw))
	for k, v := range raw {
		sub[k] = stringifyValue(v)
	}
	return sub, nil
}

func parseForm(body []byte) (Submission, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse form body: %w", err)
	}

	sub := make(Submission, len(values))
	for k, v := range values {
		if len(v) > 0 {
			sub[k] = v[0]
		}
	}
	return sub, nil
}

func stringifyValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
