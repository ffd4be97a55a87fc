package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("summarize: %w", &Error{Kind: KindNoTranscript, Message: "No transcript available for this video."})

	assert.True(t, errors.Is(err, ErrNoTranscript))
	assert.False(t, errors.Is(err, ErrUpstreamTimeout))
	assert.Equal(t, KindNoTranscript, KindOf(err))
}

func TestErrorMessage(t *testing.T) {
	err := FetchFailed(502, "Bad Gateway")
	assert.Equal(t, "fetch failed: Bad Gateway (status 502)", err.Error())

	cause := errors.New("dial tcp: refused")
	wrapped := NewError(KindUpstreamUnavailable, "transcript source unavailable", cause)
	assert.Equal(t, "transcript source unavailable: dial tcp: refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestUpstreamClassifies(t *testing.T) {
	t.Run("deadline", func(t *testing.T) {
		err := Upstream(fmt.Errorf("get: %w", context.DeadlineExceeded), "proxy")
		assert.Equal(t, KindUpstreamTimeout, KindOf(err))
	})
	t.Run("transport", func(t *testing.T) {
		err := Upstream(errors.New("connection reset"), "proxy")
		assert.Equal(t, KindUpstreamUnavailable, KindOf(err))
	})
	t.Run("kind passes through", func(t *testing.T) {
		orig := FetchFailed(404, "Not Found")
		err := Upstream(orig, "proxy")
		assert.Same(t, orig, err)
	})
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Upstream(nil, "proxy"))
	})
}

func TestPayloadOf(t *testing.T) {
	p := PayloadOf(fmt.Errorf("outer: %w", NewError(KindGenerationUnavailable, "summary generation failed", errors.New("429"))))
	require.Equal(t, KindGenerationUnavailable, p.Kind)
	assert.Equal(t, "summary generation failed", p.Message)
	assert.NotEqual(t, string(p.Kind), p.Message)

	p = PayloadOf(errors.New("boom"))
	assert.Equal(t, KindInternal, p.Kind)
	assert.Equal(t, "internal error", p.Message)
}
