package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicyOnce sync.Once
	richTextPolicy     *bluemonday.Policy
)

func Text(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}

func TextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	value := Text(*input)
	return &value
}

func StringSlice(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	out := make([]string, 0, len(values))
	for _, item := range values {
		escaped := Text(item)
		if escaped == "" {
			continue
		}
		out = append(out, escaped)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// RichText strips any markup beyond a minimal formatting subset. Used
// for event descriptions and broadcast bodies authored in the console.
func RichText(input string) string {
	value := strings.TrimSpace(input)
	if value == "" {
		return ""
	}
	return getRichTextPolicy().Sanitize(value)
}

func getRichTextPolicy() *bluemonday.Policy {
	richTextPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements("p", "pre", "code", "blockquote")
		richTextPolicy = policy
	})

	return richTextPolicy
}
