package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_insight/internal/engine"
)

// YouTube transcript fetching.
// Primary:  watch page → ytInitialPlayerResponse → caption track → timedtext XML
// Fallback: ANDROID Innertube /player → captionTracks → timedtext XML
//
// The fallback is a different endpoint, not a retry; neither path retries.

// errNoCaptions marks a definitive "this video has no usable captions" answer
// from YouTube, as opposed to a transport failure.
var errNoCaptions = errors.New("no captions")

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// YouTube fetches timed caption segments for a video ID.
type YouTube struct {
	Client    *http.Client
	Browser   engine.PageFetcher // optional, used for the watch page
	WatchURL  string
	PlayerURL string
	Langs     []string
}

// NewYouTube builds a provider from engine.Cfg.
func NewYouTube() *YouTube {
	y := &YouTube{
		Client:    engine.Cfg.HTTPClient,
		WatchURL:  engine.Cfg.WatchURL,
		PlayerURL: ytInnertubeURL,
		Langs:     engine.Cfg.TranscriptLangs,
	}
	if engine.Cfg.BrowserClient != nil {
		y.Browser = engine.BrowserPages{Client: engine.Cfg.BrowserClient}
	}
	return y
}

// Fetch returns caption segments in playback order.
// Errors are *engine.Error: no_transcript when YouTube reports no captions
// (or they are empty), upstream_timeout / upstream_unavailable otherwise.
func (y *YouTube) Fetch(ctx context.Context, videoID string) ([]engine.TimedSegment, error) {
	engine.IncrTranscriptRequests()

	segs, scrapeErr := y.fetchViaPageScrape(ctx, videoID)
	if scrapeErr == nil {
		return segs, nil
	}
	slog.Warn("youtube: page scrape failed, trying player",
		slog.String("id", videoID), slog.Any("err", scrapeErr))

	segs, playerErr := y.fetchViaPlayer(ctx, videoID)
	if playerErr == nil {
		return segs, nil
	}
	engine.IncrTranscriptErrors()

	if errors.Is(scrapeErr, errNoCaptions) || errors.Is(playerErr, errNoCaptions) {
		return nil, engine.NewError(engine.KindNoTranscript, "No transcript available for this video.", errors.Join(scrapeErr, playerErr))
	}
	return nil, engine.Upstream(errors.Join(scrapeErr, playerErr), "transcript source")
}

// fetchViaPageScrape scrapes the watch page HTML and extracts the caption
// track URL from ytInitialPlayerResponse. Works from any IP.
func (y *YouTube) fetchViaPageScrape(ctx context.Context, videoID string) ([]engine.TimedSegment, error) {
	body, err := y.getWatchPage(ctx, y.WatchURL+"?v="+videoID)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return y.segmentsFromPlayer(ctx, playerResp)
}

// getWatchPage prefers the fingerprinted browser client when configured.
func (y *YouTube) getWatchPage(ctx context.Context, watchURL string) ([]byte, error) {
	if y.Browser != nil {
		return y.browserGet(ctx, watchURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.RandomUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
}

type pageResult struct {
	data   []byte
	status int
	err    error
}

// browserGet runs the browser fetch under ctx. The browser client has its
// own fixed timeout and no ctx, so an abandoned fetch finishes in the
// background and its result is dropped.
func (y *YouTube) browserGet(ctx context.Context, watchURL string) ([]byte, error) {
	headers := engine.ChromeHeaders()
	headers["accept-language"] = "en-US,en;q=0.9"

	done := make(chan pageResult, 1)
	go func() {
		data, status, err := y.Browser.FetchPage(watchURL, headers)
		done <- pageResult{data: data, status: status, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if r.status != http.StatusOK {
			return nil, fmt.Errorf("HTTP %d", r.status)
		}
		return r.data, nil
	}
}

// fetchViaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func (y *YouTube) fetchViaPlayer(ctx context.Context, videoID string) ([]engine.TimedSegment, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.PlayerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ytAndroidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("android innertube: HTTP %d", resp.StatusCode)
	}

	var playerResp innertubePlayerResp
	if err := json.NewDecoder(resp.Body).Decode(&playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return y.segmentsFromPlayer(ctx, playerResp)
}

// segmentsFromPlayer picks a caption track from a player response and fetches it.
func (y *YouTube) segmentsFromPlayer(ctx context.Context, playerResp innertubePlayerResp) ([]engine.TimedSegment, error) {
	if playerResp.Captions == nil {
		if playerResp.PlayabilityStatus != nil && playerResp.PlayabilityStatus.Status == "LOGIN_REQUIRED" {
			// Bot check: says nothing about captions.
			return nil, fmt.Errorf("playability: %s", playerResp.PlayabilityStatus.Reason)
		}
		if playerResp.PlayabilityStatus != nil && playerResp.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", errNoCaptions, playerResp.PlayabilityStatus.Reason)
		}
		return nil, fmt.Errorf("%w: transcripts disabled", errNoCaptions)
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no caption tracks", errNoCaptions)
	}
	track, ok := pickBestTrack(tracks, y.Langs)
	if !ok {
		return nil, errors.New("all caption tracks require PoToken")
	}

	segs, err := y.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: empty caption track", errNoCaptions)
	}
	return segs, nil
}

// fetchTimedText fetches and parses a timedtext XML caption URL.
func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]engine.TimedSegment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)
	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	return parseTimedText(body)
}
