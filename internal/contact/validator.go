package contact

import (
	"strings"

	"formgate/internal/constants"
)

var requiredFields = []string{
	constants.FieldName,
	constants.FieldEmail,
	constants.FieldMessage,
}

// CheckRequired reports per-field presence so the caller can render
// field-level errors. A whitespace-only value counts as missing.
func CheckRequired(sub Submission) (bool, map[string]bool) {
	missing := make(map[string]bool, len(requiredFields))
	ok := true
	for _, field := range requiredFields {
		absent := strings.TrimSpace(sub[field]) == ""
		missing[field] = absent
		if absent {
			ok = false
		}
	}
	return ok, missing
}

// HoneypotTriggered reports whether the hidden trap field was filled in.
// Real users never see it; bots auto-filling every input do.
func HoneypotTriggered(sub Submission) bool {
	return sub[constants.FieldHoneypot] != ""
}
