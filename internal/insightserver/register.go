package insightserver

import (
	"context"

	"github.com/anatolykoptev/go_insight/internal/engine"
	"github.com/anatolykoptev/go_insight/internal/engine/history"
	"github.com/anatolykoptev/go_insight/internal/engine/insight"
	"github.com/anatolykoptev/go_insight/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Deps are the collaborators the tools run against.
type Deps struct {
	Service *insight.Service
	History history.Store // nil disables interaction_history
}

// RegisterTools registers all tools on the given MCP server:
// video_summarize, video_ask, transcript_search, web_summarize, web_ask,
// interaction_history.
func RegisterTools(server *mcp.Server, d Deps) {
	registerVideoSummarize(server, d)
	registerVideoAsk(server, d)
	registerTranscriptSearch(server, d)
	registerWebSummarize(server, d)
	registerWebAsk(server, d)
	registerHistory(server, d)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 6

func registerVideoSummarize(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_summarize",
		Description: "Summarize a YouTube video from its transcript. Returns a digest (title, key points, takeaways, keywords), the embed URL and suggested follow-up questions. With keyword, also returns transcript lines containing it with m:ss timestamps and deep links. With session, later video_ask calls answer from this digest.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoSummarizeInput) (*mcp.CallToolResult, *insight.SummaryResult, error) {
		src, err := insight.VideoSource(input.Video)
		if err != nil {
			return nil, nil, toolutil.ToolError("video_summarize", err)
		}
		session := toolutil.SessionKey(input.Session)
		intent := insight.SummarizeIntent{Source: src, Keyword: input.Keyword, Focus: input.Focus}

		res, err := engine.RetryDo(ctx, engine.ReadRetryConfig, func() (*insight.SummaryResult, error) {
			return d.Service.Summarize(ctx, session, intent)
		})
		if err != nil {
			return nil, nil, toolutil.ToolError("video_summarize", err)
		}
		return nil, res, nil
	})
}

func registerVideoAsk(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_ask",
		Description: "Ask a question about a YouTube video. The first question for a video builds its digest from the transcript, later questions in the same session answer from that digest directly. The answer is returned verbatim (markdown included).",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoAskInput) (*mcp.CallToolResult, *insight.Answer, error) {
		src, err := insight.VideoSource(input.Video)
		if err != nil {
			return nil, nil, toolutil.ToolError("video_ask", err)
		}
		ans, err := d.Service.Ask(ctx, toolutil.SessionKey(input.Session), insight.AskIntent{Source: src, Question: input.Question})
		if err != nil {
			return nil, nil, toolutil.ToolError("video_ask", err)
		}
		return nil, ans, nil
	})
}

func registerTranscriptSearch(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_search",
		Description: "Find transcript lines of a YouTube video that contain a keyword (case-insensitive literal match). Returns lines in playback order with timestamp seconds, m:ss and a deep link that starts playback there.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranscriptSearchInput) (*mcp.CallToolResult, *insight.SearchResult, error) {
		src, err := insight.VideoSource(input.Video)
		if err != nil {
			return nil, nil, toolutil.ToolError("transcript_search", err)
		}
		intent := insight.SearchIntent{Source: src, Keyword: input.Keyword}

		res, err := engine.RetryDo(ctx, engine.ReadRetryConfig, func() (*insight.SearchResult, error) {
			return d.Service.Search(ctx, intent)
		})
		if err != nil {
			return nil, nil, toolutil.ToolError("transcript_search", err)
		}
		return nil, res, nil
	})
}

func registerWebSummarize(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "web_summarize",
		Description: "Summarize a web page (mode=read, input is a URL) or web search results (mode=search, input is a query) fetched through a content-extraction proxy. Returns a 2 line summary with key insights and suggested follow-up questions.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input WebSummarizeInput) (*mcp.CallToolResult, *insight.SummaryResult, error) {
		src, err := insight.WebSource(input.Mode, input.Input)
		if err != nil {
			return nil, nil, toolutil.ToolError("web_summarize", err)
		}
		session := toolutil.SessionKey(input.Session)
		intent := insight.SummarizeIntent{Source: src, Focus: input.Focus}

		res, err := engine.RetryDo(ctx, engine.ReadRetryConfig, func() (*insight.SummaryResult, error) {
			return d.Service.Summarize(ctx, session, intent)
		})
		if err != nil {
			return nil, nil, toolutil.ToolError("web_summarize", err)
		}
		return nil, res, nil
	})
}

func registerWebAsk(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "web_ask",
		Description: "Ask a question about a web page (mode=read) or search results (mode=search). The first question builds the digest, later questions in the same session answer from it.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input WebAskInput) (*mcp.CallToolResult, *insight.Answer, error) {
		src, err := insight.WebSource(input.Mode, input.Input)
		if err != nil {
			return nil, nil, toolutil.ToolError("web_ask", err)
		}
		ans, err := d.Service.Ask(ctx, toolutil.SessionKey(input.Session), insight.AskIntent{Source: src, Question: input.Question})
		if err != nil {
			return nil, nil, toolutil.ToolError("web_ask", err)
		}
		return nil, ans, nil
	})
}

func registerHistory(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "interaction_history",
		Description: "List recent summaries and answers recorded for a session, newest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, *HistoryOutput, error) {
		session := toolutil.SessionKey(input.Session)
		if session == "" {
			return nil, nil, toolutil.ToolError("interaction_history", engine.InvalidInput("session is required"))
		}
		if d.History == nil {
			return nil, nil, toolutil.ToolError("interaction_history",
				engine.NewError(engine.KindUpstreamUnavailable, "interaction history is not configured", nil))
		}
		rows, err := d.History.List(ctx, session, input.Limit)
		if err != nil {
			return nil, nil, toolutil.ToolError("interaction_history", engine.Upstream(err, "history store"))
		}
		return nil, &HistoryOutput{Session: session, Interactions: historyEntries(rows), Total: len(rows)}, nil
	})
}
