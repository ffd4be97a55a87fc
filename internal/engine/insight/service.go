package insight

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_insight/internal/engine"
	"github.com/anatolykoptev/go_insight/internal/engine/history"
	"github.com/anatolykoptev/go_insight/internal/engine/sources"
)

// Intent is one of SummarizeIntent, AskIntent or SearchIntent.
type Intent interface {
	intentName() string
}

// SummarizeIntent ingests a source. Keyword, when set, also runs a
// transcript search over the same document (video sources only).
type SummarizeIntent struct {
	Source  Source
	Keyword string
	Focus   string
}

// AskIntent answers a question about a source.
type AskIntent struct {
	Source   Source
	Question string
}

// SearchIntent searches a video transcript for a keyword.
type SearchIntent struct {
	Source  Source
	Keyword string
}

func (SummarizeIntent) intentName() string { return history.IntentSummarize }
func (AskIntent) intentName() string       { return history.IntentAsk }
func (SearchIntent) intentName() string    { return history.IntentSearch }

// SummaryResult is the payload of a summarize intent.
type SummaryResult struct {
	SourceRef          string      `json:"source_ref"`
	Kind               string      `json:"kind"`
	VideoID            string      `json:"video_id,omitempty"`
	EmbedURL           string      `json:"embed_url,omitempty"`
	Digest             string      `json:"digest"`
	Truncated          bool        `json:"truncated,omitempty"`
	Keyword            string      `json:"keyword,omitempty"`
	Matches            []MatchView `json:"matches,omitempty"`
	SuggestedQuestions []string    `json:"suggested_questions"`
}

// SearchResult is the payload of a search intent.
type SearchResult struct {
	SourceRef string      `json:"source_ref"`
	VideoID   string      `json:"video_id"`
	Keyword   string      `json:"keyword"`
	Matches   []MatchView `json:"matches"`
	Total     int         `json:"total"`
}

// Outcome holds exactly one non-nil payload, matching the dispatched intent.
type Outcome struct {
	Summary *SummaryResult
	Answer  *Answer
	Search  *SearchResult
}

// Service is the intent submission surface.
type Service struct {
	Conversation *Conversation
	Transcripts  *TranscriptSource
	History      history.Store // optional
	WatchURL     string
}

// Dispatch runs one intent for session. session may be empty.
func (s *Service) Dispatch(ctx context.Context, session string, in Intent) (Outcome, error) {
	switch in := in.(type) {
	case SummarizeIntent:
		r, err := s.Summarize(ctx, session, in)
		return Outcome{Summary: r}, err
	case AskIntent:
		r, err := s.Ask(ctx, session, in)
		return Outcome{Answer: r}, err
	case SearchIntent:
		r, err := s.Search(ctx, in)
		return Outcome{Search: r}, err
	}
	return Outcome{}, engine.InvalidInput("unsupported intent %T", in)
}

// Summarize (re)ingests the source and returns its digest.
func (s *Service) Summarize(ctx context.Context, session string, in SummarizeIntent) (*SummaryResult, error) {
	if err := validSource(in.Source); err != nil {
		return nil, err
	}
	ing, err := s.Conversation.Ingest(ctx, session, in.Source, in.Focus)
	if err != nil {
		return nil, err
	}

	res := &SummaryResult{
		SourceRef: ing.Context.SourceRef,
		Kind:      string(in.Source.Kind),
		Digest:    ing.Context.Digest,
		Truncated: ing.Context.Truncated,
	}
	if in.Source.Kind == engine.SourceVideo {
		res.VideoID = in.Source.Input
		res.EmbedURL = sources.EmbedURL(in.Source.Input)
		res.SuggestedQuestions = videoSuggestions
		if in.Keyword != "" && ing.Doc != nil {
			engine.IncrTranscriptSearches()
			res.Keyword = in.Keyword
			res.Matches = ViewMatches(s.WatchURL, ing.Doc.VideoID, SearchTranscript(ing.Doc, in.Keyword))
		}
	} else {
		res.SuggestedQuestions = webSuggestions
	}

	s.record(ctx, session, in, in.Source, "", res.Digest)
	return res, nil
}

// Ask answers a question, ingesting the source first when ungrounded.
// Callers must not retry it blindly: history may already be written.
func (s *Service) Ask(ctx context.Context, session string, in AskIntent) (*Answer, error) {
	if err := validSource(in.Source); err != nil {
		return nil, err
	}
	ans, err := s.Conversation.Ask(ctx, session, in.Source, in.Question)
	if err != nil {
		return nil, err
	}
	s.record(ctx, session, in, in.Source, ans.Question, ans.Text)
	return &ans, nil
}

// Search fetches the transcript and returns keyword matches in playback order.
func (s *Service) Search(ctx context.Context, in SearchIntent) (*SearchResult, error) {
	if err := validSource(in.Source); err != nil {
		return nil, err
	}
	if in.Source.Kind != engine.SourceVideo {
		return nil, engine.InvalidInput("search is only available for video transcripts")
	}
	if in.Keyword == "" {
		return nil, engine.InvalidInput("a search keyword is required")
	}

	doc, err := s.Transcripts.FetchTranscript(ctx, in.Source.Input)
	if err != nil {
		return nil, err
	}
	engine.IncrTranscriptSearches()
	matches := ViewMatches(s.WatchURL, doc.VideoID, SearchTranscript(doc, in.Keyword))
	return &SearchResult{
		SourceRef: in.Source.Ref(),
		VideoID:   doc.VideoID,
		Keyword:   in.Keyword,
		Matches:   matches,
		Total:     len(matches),
	}, nil
}

func validSource(src Source) error {
	if src.Input == "" {
		return engine.InvalidInput("a source is required")
	}
	if src.Kind == engine.SourceWeb {
		if _, err := engine.ParseMode(string(src.Mode)); err != nil {
			return err
		}
	}
	return nil
}

// historyTimeout bounds a history write so a slow database cannot hold a
// finished result back for long.
const historyTimeout = 3 * time.Second

// record writes an interaction. Failures are logged and counted only.
func (s *Service) record(ctx context.Context, session string, in Intent, src Source, question, output string) {
	if s.History == nil || session == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	err := s.History.Record(ctx, history.Interaction{
		Session:    session,
		Intent:     in.intentName(),
		SourceKind: string(src.Kind),
		SourceRef:  src.Ref(),
		Question:   question,
		Output:     output,
	})
	if err != nil {
		engine.IncrHistoryErrors()
		slog.Warn("history: record failed",
			slog.String("intent", in.intentName()),
			slog.String("source", src.Ref()),
			slog.Any("error", err))
	}
}
