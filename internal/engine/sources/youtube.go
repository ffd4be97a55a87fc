package sources

// YouTube implementation is split across three files by responsibility:
//   youtube_id.go        : video ID extraction from URLs and bare IDs
//   youtube_innertube.go : Innertube API types, constants, and caption XML parsing
//   youtube_transcript.go: transcript fetching (watch page scrape + ANDROID player fallback)
