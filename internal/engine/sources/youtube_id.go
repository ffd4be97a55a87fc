package sources

import (
	"regexp"
	"strings"
)

// Video ID extraction. Pure string matching, no I/O.

const idChars = `[a-zA-Z0-9_-]{11}`

var (
	bareIDRE = regexp.MustCompile(`^` + idChars + `$`)

	// Checked in order; the first capture group is the ID. The trailing group
	// rejects IDs longer than 11 characters.
	videoIDREs = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|(?:^|[/.])youtube(?:-nocookie)?\.com/)watch/?\?(?:[^#]*&)?v=(` + idChars + `)(?:[^a-zA-Z0-9_-]|$)`),
		regexp.MustCompile(`(?:^|//|\.)youtu\.be/(` + idChars + `)(?:[^a-zA-Z0-9_-]|$)`),
		regexp.MustCompile(`youtube(?:-nocookie)?\.com/(?:embed|shorts|live|v|e)/(` + idChars + `)(?:[^a-zA-Z0-9_-]|$)`),
	}
)

// ExtractVideoID returns the canonical 11-character video ID from a bare ID,
// a watch?v= URL, a youtu.be short link, or an embed/shorts/live path.
// ok is false when nothing recognizable is found.
func ExtractVideoID(input string) (id string, ok bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}
	if bareIDRE.MatchString(s) {
		return s, true
	}
	for _, re := range videoIDREs {
		if m := re.FindStringSubmatch(s); len(m) >= 2 {
			return m[1], true
		}
	}
	return "", false
}

// EmbedURL returns the player URL for a video ID.
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}
