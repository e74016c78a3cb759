package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts HTML to plain text using a proper HTML parser.
// Handles entities, strips tags, and collapses the result to a single line.
func ToText(s string) string {
	return strings.Join(strings.Fields(html2text.HTML2Text(s)), " ")
}

// LooksLikeHTML reports whether body appears to be an HTML document or
// fragment rather than plain text or JSON.
func LooksLikeHTML(body string) bool {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || trimmed[0] != '<' {
		return false
	}
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "<!doctype html") ||
		strings.HasPrefix(lower, "<html") ||
		strings.Contains(lower, "</")
}
