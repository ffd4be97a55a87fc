package insight

import (
	"context"
	"errors"
	"testing"

	"github.com/anatolykoptev/go_insight/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskUngroundedIngestsExactlyOnce(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	src := mustVideo(t, "https://youtu.be/"+testVideoID)

	assert.Equal(t, Ungrounded, p.conv.State(ctx, "s1", src))

	first, err := p.conv.Ask(ctx, "s1", src, "What is this about?")
	require.NoError(t, err)
	assert.True(t, first.ImplicitIngest)
	assert.Equal(t, "digest #1", first.Digest)
	assert.Equal(t, 1, p.gen.digests())
	assert.Equal(t, 1, p.provider.calls())
	assert.Equal(t, Grounded, p.conv.State(ctx, "s1", src))

	second, err := p.conv.Ask(ctx, "s1", src, "And then?")
	require.NoError(t, err)
	assert.False(t, second.ImplicitIngest)
	assert.Empty(t, second.Digest)
	assert.Equal(t, 1, p.gen.digests(), "no additional ingest")
	assert.Equal(t, 1, p.provider.calls())
	assert.Equal(t, 2, p.gen.answers())
	assert.Equal(t, Grounded, p.conv.State(ctx, "s1", src))
}

func TestAskAnswersFromDigestAndQuestion(t *testing.T) {
	p := newPipeline(t)
	src := mustWeb(t, "read", "https://example.com")

	ans, err := p.conv.Ask(context.Background(), "", src, "Who runs it?")
	require.NoError(t, err)
	require.Len(t, p.gen.answerPrompts, 1)
	assert.Contains(t, p.gen.answerPrompts[0], "digest #1")
	assert.Contains(t, p.gen.answerPrompts[0], "Who runs it?")
	assert.NotContains(t, p.gen.answerPrompts[0], "Example Domain", "raw content is not resent")
	assert.Equal(t, "**answer** #1", ans.Text, "answer returned verbatim")
	assert.Equal(t, []int{300, 1024}, p.gen.maxTokens)
}

func TestAskKeepsAnswerWhitespace(t *testing.T) {
	p := newPipeline(t)
	p.gen.answerFn = func(int, string) (string, error) { return "\n- **one**\n- two\n", nil }

	ans, err := p.conv.Ask(context.Background(), "", mustWeb(t, "read", "https://example.com"), "list?")
	require.NoError(t, err)
	assert.Equal(t, "\n- **one**\n- two\n", ans.Text)
}

func TestIngestReplacesDigest(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	src := mustVideo(t, testVideoID)

	_, err := p.conv.Ingest(ctx, "s1", src, "")
	require.NoError(t, err)
	_, err = p.conv.Ingest(ctx, "s1", src, "")
	require.NoError(t, err)

	assert.Equal(t, 1, p.store.Len(), "exactly one digest for the source")
	cc, ok := p.conv.Context(ctx, "s1", src)
	require.True(t, ok)
	assert.Equal(t, "digest #2", cc.Digest)
	assert.Equal(t, "youtube:"+testVideoID, cc.SourceRef)
}

func TestSourceChangeUngroundsNamedSession(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	a := mustVideo(t, testVideoID)
	b := mustWeb(t, "read", "https://example.com")

	_, err := p.conv.Ask(ctx, "s1", a, "q1")
	require.NoError(t, err)
	_, err = p.conv.Ask(ctx, "s1", b, "q2")
	require.NoError(t, err)

	assert.Equal(t, Ungrounded, p.conv.State(ctx, "s1", a))
	assert.Equal(t, Grounded, p.conv.State(ctx, "s1", b))

	ans, err := p.conv.Ask(ctx, "s1", a, "q3")
	require.NoError(t, err)
	assert.True(t, ans.ImplicitIngest)
	assert.Equal(t, 3, p.gen.digests())
}

func TestSessionsAreIsolated(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	src := mustVideo(t, testVideoID)

	_, err := p.conv.Ingest(ctx, "alice", src, "")
	require.NoError(t, err)
	assert.Equal(t, Grounded, p.conv.State(ctx, "alice", src))
	assert.Equal(t, Ungrounded, p.conv.State(ctx, "bob", src))
}

func TestAnonymousSessionKeepsOneContextPerSource(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	a := mustVideo(t, testVideoID)
	b := mustWeb(t, "search", "golang generics")

	_, err := p.conv.Ingest(ctx, "", a, "")
	require.NoError(t, err)
	_, err = p.conv.Ingest(ctx, "", b, "")
	require.NoError(t, err)

	assert.Equal(t, Grounded, p.conv.State(ctx, "", a))
	assert.Equal(t, Grounded, p.conv.State(ctx, "", b))
	assert.Equal(t, 2, p.store.Len())
}

func TestAskFailures(t *testing.T) {
	t.Run("empty question before any IO", func(t *testing.T) {
		p := newPipeline(t)
		_, err := p.conv.Ask(context.Background(), "s1", mustVideo(t, testVideoID), "  ")
		assert.Equal(t, engine.KindInvalidInput, engine.KindOf(err))
		assert.Zero(t, p.provider.calls())
		assert.Zero(t, p.gen.digests())
	})

	t.Run("answer generation error", func(t *testing.T) {
		p := newPipeline(t)
		p.gen.answerFn = func(int, string) (string, error) { return "", errors.New("quota") }
		_, err := p.conv.Ask(context.Background(), "s1", mustVideo(t, testVideoID), "q")
		assert.True(t, errors.Is(err, engine.ErrAnswerGenerationFailed))
		assert.NotEmpty(t, engine.PayloadOf(err).Message)
	})

	t.Run("empty answer", func(t *testing.T) {
		p := newPipeline(t)
		p.gen.answerFn = func(int, string) (string, error) { return "", nil }
		_, err := p.conv.Ask(context.Background(), "s1", mustVideo(t, testVideoID), "q")
		assert.Equal(t, engine.KindAnswerGenerationFailed, engine.KindOf(err))
	})

	t.Run("digest failure propagates", func(t *testing.T) {
		p := newPipeline(t)
		p.gen.digestFn = func(int, string) (string, error) { return "", errors.New("down") }
		_, err := p.conv.Ask(context.Background(), "s1", mustVideo(t, testVideoID), "q")
		assert.Equal(t, engine.KindGenerationUnavailable, engine.KindOf(err))
		assert.Zero(t, p.gen.answers())
		assert.Equal(t, Ungrounded, p.conv.State(context.Background(), "s1", mustVideo(t, testVideoID)))
	})

	t.Run("no transcript", func(t *testing.T) {
		p := newPipeline(t)
		p.provider.segs = nil
		_, err := p.conv.Ask(context.Background(), "s1", mustVideo(t, testVideoID), "q")
		assert.Equal(t, engine.KindNoTranscript, engine.KindOf(err))
	})
}
