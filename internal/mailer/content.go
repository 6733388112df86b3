package mailer

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// Content holds the rendered parts of a submission notification.
type Content struct {
	Subject  string
	TextBody string
	HTMLBody string
}

// BuildContent renders the notification email for one submission.
func BuildContent(siteID, name, email, message string, metadata map[string]string) Content {
	return Content{
		Subject:  fmt.Sprintf("New contact (%s) from %s", siteID, name),
		TextBody: buildTextBody(name, email, message, metadata),
		HTMLBody: buildHTMLBody(name, email, message, metadata),
	}
}

func buildTextBody(name, email, message string, metadata map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\n\n", name, email)
	b.WriteString(message)
	b.WriteString("\n")

	if len(metadata) > 0 {
		b.WriteString("\nAdditional Information\n")
		for _, k := range sortedKeys(metadata) {
			fmt.Fprintf(&b, "%s: %s\n", FormatFieldName(k), metadata[k])
		}
	}

	return b.String()
}

func buildHTMLBody(name, email, message string, metadata map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>From: %s &lt;%s&gt;</p>\n", html.EscapeString(name), html.EscapeString(email))
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(message))

	if len(metadata) > 0 {
		b.WriteString("<h3>Additional Information</h3>\n<ul>\n")
		for _, k := range sortedKeys(metadata) {
			fmt.Fprintf(&b, "<li><strong>%s:</strong> %s</li>\n",
				html.EscapeString(FormatFieldName(k)), html.EscapeString(metadata[k]))
		}
		b.WriteString("</ul>\n")
	}

	return b.String()
}

// FormatFieldName prettifies a metadata key for display, so "phone_number"
// renders as "Phone Number".
func FormatFieldName(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
