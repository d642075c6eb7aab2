package logger

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	redacted = "[REDACTED]"
	// maxValueLen caps string values, e.g. raw backend replies logged on a
	// parse failure.
	maxValueLen = 512
)

var sensitiveKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"authorization": true,
	"bearer":        true,
	"body":          true,
	"content":       true,
	"image_data":    true,
	"input":         true,
	"output":        true,
	"password":      true,
	"pixels":        true,
	"prompt":        true,
	"sample":        true,
	"secret":        true,
	"session":       true,
	"token":         true,
}

var sensitiveKeySubstrings = []string{
	"key",
	"token",
	"secret",
	"password",
	"authorization",
	"bearer",
	"api",
	"prompt",
	"content",
	"body",
	"input",
	"output",
	"text",
	"base64",
}

var sensitiveValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsk-[A-Za-z0-9_-]{10,}\b`),
	regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{10,}\b`),
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*\b`),
	regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?token|secret)\b\s*[:=]\s*\S+`),
	regexp.MustCompile(`data:image/[a-z0-9.+-]+;base64,`),
}

// RedactAttr is a slog.ReplaceAttr function. It hides credentials and user
// content (text samples, image data) and shortens overlong string values.
// Group attributes are redacted member by member.
func RedactAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		out := make([]any, 0, len(members))
		sub := append(groups[:len(groups):len(groups)], a.Key)
		for _, m := range members {
			out = append(out, RedactAttr(sub, m))
		}
		return slog.Group(a.Key, out...)
	}
	if isSensitiveKey(a.Key) || isSensitiveValue(a.Value) {
		return slog.String(a.Key, redacted)
	}
	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); len(s) > maxValueLen {
			return slog.String(a.Key, truncate(s, maxValueLen))
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] {
		return true
	}
	for _, sub := range sensitiveKeySubstrings {
		if strings.Contains(key, sub) {
			return true
		}
	}
	return false
}

func isSensitiveValue(v slog.Value) bool {
	var value string
	if v.Kind() == slog.KindString {
		value = v.String()
	} else {
		value = fmt.Sprint(v.Any())
	}
	if value == "" {
		return false
	}
	for _, re := range sensitiveValuePatterns {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n bytes on a rune boundary and notes the
// original length.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return fmt.Sprintf("%s…(%d bytes)", s[:n], len(s))
}
