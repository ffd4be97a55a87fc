// Package toolutil provides shared helper functions for go_insight MCP tools.
package toolutil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_insight/internal/engine"
)

// maxSessionRunes caps the opaque session token.
const maxSessionRunes = 128

// SessionKey normalises an opaque session token: trimmed and capped.
// Empty means anonymous.
func SessionKey(s string) string {
	return engine.TruncateRunes(strings.TrimSpace(s), maxSessionRunes, "")
}

// ToolError renders err as the {kind, message} JSON the MCP client sees.
// The underlying cause is logged, never returned.
func ToolError(tool string, err error) error {
	if err == nil {
		return nil
	}
	if engine.KindOf(err) == engine.KindInternal && engine.IsTimeout(err) {
		err = engine.Upstream(err, "request")
	}
	p := engine.PayloadOf(err)
	slog.Warn(tool+" failed", slog.String("kind", string(p.Kind)), slog.Any("error", err))

	data, mErr := json.Marshal(p)
	if mErr != nil {
		return errors.New(p.Message)
	}
	return errors.New(string(data))
}
