package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth types and functions for engine consumers.
type BrowserClient = stealth.BrowserClient

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }
func IsRetryableStatus(code int) bool  { return stealth.IsRetryableStatus(code) }

// PageFetcher performs a GET with browser-like headers.
type PageFetcher interface {
	FetchPage(url string, headers map[string]string) (body []byte, status int, err error)
}

// BrowserPages adapts a BrowserClient to PageFetcher.
type BrowserPages struct {
	Client *BrowserClient
}

func (p BrowserPages) FetchPage(url string, headers map[string]string) ([]byte, int, error) {
	data, _, status, err := p.Client.Do("GET", url, headers, nil)
	return data, status, err
}
