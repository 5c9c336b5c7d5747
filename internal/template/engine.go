// Package template renders {{variable}} placeholders against a variable map.
// Rendering is fail-open: it can never fail a dispatch. Known variables are
// substituted, unknown placeholders render empty, and malformed placeholder
// syntax is passed through untouched.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Render substitutes {{name}} tags in tmpl from vars. A nil vars map is valid
// and strips every placeholder.
func Render(tmpl string, vars map[string]interface{}) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}

	return tagPattern.ReplaceAllStringFunc(tmpl, func(tag string) string {
		name := tagPattern.FindStringSubmatch(tag)[1]
		v, ok := vars[name]
		if !ok || v == nil {
			return ""
		}
		return formatValue(v)
	})
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		// JSON numbers arrive as float64; render integers without a fraction
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// HTMLToText strips tags and collapses whitespace, used to derive a plain-text
// body when a template declares only HTML.
func HTMLToText(html string) string {
	text := htmlTagPattern.ReplaceAllString(html, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
