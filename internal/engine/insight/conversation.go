package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_insight/internal/engine"
)

// State is the grounding state of a session with respect to one source.
type State int

const (
	Ungrounded State = iota // no digest held for the source
	Grounded                // digest held; questions are answered from it
)

func (s State) String() string {
	if s == Grounded {
		return "grounded"
	}
	return "ungrounded"
}

// ContextStore is a replace-on-write keyed map of conversation contexts.
// *engine.ContextStore implements it.
type ContextStore interface {
	Get(ctx context.Context, key string) (engine.ConversationContext, bool)
	Put(ctx context.Context, key string, value engine.ConversationContext) error
}

// Conversation is the grounded Q&A engine.
//
// A named session holds one context at a time: ingesting a different source
// replaces it, so asking about the old source again starts Ungrounded. The
// anonymous session ("") keeps one context per source instead, so unrelated
// callers never evict each other.
type Conversation struct {
	Store           ContextStore
	Loader          MaterialLoader
	Builder         *DigestBuilder
	Generator       engine.TextGenerator
	AnswerMaxTokens int
}

// Ingested is the result of one ingest transition.
type Ingested struct {
	Context engine.ConversationContext
	Doc     *engine.TranscriptDocument // video sources only
}

// Answer is the result of Ask. Text is the generator output verbatim.
type Answer struct {
	SourceRef string `json:"source_ref"`
	Question  string `json:"question"`
	Text      string `json:"answer"`
	// ImplicitIngest is set when the session was Ungrounded and the digest
	// was built as part of this call.
	ImplicitIngest bool   `json:"implicit_ingest"`
	Digest         string `json:"digest,omitempty"` // set with ImplicitIngest
}

func (c *Conversation) slotKey(session string, src Source) string {
	if session == "" {
		return engine.ContextKey("", src.Ref())
	}
	return engine.ContextKey(session, "")
}

// Context returns the digest held for src, if any.
func (c *Conversation) Context(ctx context.Context, session string, src Source) (engine.ConversationContext, bool) {
	cc, ok := c.Store.Get(ctx, c.slotKey(session, src))
	if !ok || cc.SourceRef != src.Ref() || cc.Digest == "" {
		return engine.ConversationContext{}, false
	}
	return cc, true
}

// State reports whether the session is grounded on src.
func (c *Conversation) State(ctx context.Context, session string, src Source) State {
	if _, ok := c.Context(ctx, session, src); ok {
		return Grounded
	}
	return Ungrounded
}

// Ingest loads src, builds its digest and stores it, replacing whatever the
// slot held. Ungrounded -> Grounded, or Grounded -> Grounded with a new digest.
func (c *Conversation) Ingest(ctx context.Context, session string, src Source, hint string) (Ingested, error) {
	m, err := c.Loader.Load(ctx, src)
	if err != nil {
		return Ingested{}, err
	}
	d, err := c.Builder.BuildDigest(ctx, m.Raw, hint, src.Kind)
	if err != nil {
		return Ingested{}, err
	}

	cc := engine.ConversationContext{
		SourceRef: src.Ref(),
		Digest:    d.Text,
		Truncated: d.Truncated,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Store.Put(ctx, c.slotKey(session, src), cc); err != nil {
		// The digest is still returned; the next Ask re-ingests.
		slog.Warn("conversation: store put failed", slog.String("source", cc.SourceRef), slog.Any("error", err))
	}
	return Ingested{Context: cc, Doc: m.Doc}, nil
}

// Ask answers question about src. While Ungrounded it ingests first
// (exactly once), then answers from {digest, question}. While Grounded it
// answers directly and performs no ingest.
func (c *Conversation) Ask(ctx context.Context, session string, src Source, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, engine.InvalidInput("a question is required")
	}

	ans := Answer{SourceRef: src.Ref(), Question: question}
	cc, ok := c.Context(ctx, session, src)
	if !ok {
		ing, err := c.Ingest(ctx, session, src, "")
		if err != nil {
			return Answer{}, err
		}
		engine.IncrImplicitIngests()
		cc = ing.Context
		ans.ImplicitIngest = true
		ans.Digest = cc.Digest
	}

	text, err := c.Generator.Generate(ctx, answerSystem, fmt.Sprintf(answerPrompt, cc.Digest, question), c.AnswerMaxTokens)
	if err != nil {
		if engine.IsTimeout(err) {
			return Answer{}, engine.NewError(engine.KindUpstreamTimeout, "answer generation timed out", err)
		}
		return Answer{}, engine.NewError(engine.KindAnswerGenerationFailed, "could not generate an answer", err)
	}
	if strings.TrimSpace(text) == "" {
		return Answer{}, engine.NewError(engine.KindAnswerGenerationFailed, "could not generate an answer", engine.ErrEmptyCompletion)
	}

	engine.IncrAnswers()
	ans.Text = text
	return ans, nil
}
