package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// UserAgentBot identifies plain (non-browser) HTTP requests.
const UserAgentBot = "GoInsight/1.0"

// CleanHTML strips markup, decodes entities and collapses whitespace.
// Caption text often arrives double-escaped (&amp;#39;), so entities are
// decoded once more after tokenizing.
func CleanHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			sb.Write(z.Text())
			sb.WriteByte(' ')
		}
	}
	out := html.UnescapeString(sb.String())
	return strings.Join(strings.Fields(out), " ")
}

// HeadTruncate keeps the first limit runes of s. It reports whether
// anything was cut. limit <= 0 disables truncation.
func HeadTruncate(s string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	return strutil.TruncateWith(s, limit, ""), true
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
