// Package resources finds external learning references for a topic: one
// YouTube video (scraped from search results) and one Wikipedia page link.
package resources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"aitutor/internal/model"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

var videoIDRegex = regexp.MustCompile(`"videoId":"([^"]{11})"`)

// Finder locates external references with a bounded HTTP client.
type Finder struct {
	client *http.Client
}

// NewFinder returns a Finder with a 5-second request timeout.
func NewFinder() *Finder {
	return &Finder{client: &http.Client{Timeout: 5 * time.Second}}
}

// searchURL builds the YouTube video-search URL for "<topic> tutorial".
// The sp parameter restricts results to videos.
func searchURL(topic string) string {
	query := strings.ReplaceAll(topic+" tutorial", " ", "+")
	return "https://www.youtube.com/results?search_query=" + query + "&sp=EgIQAQ%3D%3D"
}

// YouTubeLink returns a single video link for the topic. It scrapes the
// search results page and picks the second video, skipping the first which
// is frequently an ad or channel promo. Any failure falls back to the search
// URL itself. title may be empty, in which case a generic one is used.
func (f *Finder) YouTubeLink(ctx context.Context, topic, title string) model.Link {
	search := searchURL(topic)

	videoID, err := f.secondVideoID(ctx, search)
	if err != nil {
		slog.Debug("youtube scrape failed, using search URL", "topic", topic, "error", err)
		if title == "" {
			title = topic + " - Complete Tutorial"
		}
		return model.Link{Title: title, URL: search}
	}

	if title == "" {
		title = topic + " - Tutorial"
	}
	return model.Link{Title: title, URL: "https://www.youtube.com/watch?v=" + videoID}
}

func (f *Finder) secondVideoID(ctx context.Context, search string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, search, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube search: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	ids := videoIDRegex.FindAllStringSubmatch(string(body), 2)
	if len(ids) < 2 {
		return "", fmt.Errorf("youtube search: found %d video ids", len(ids))
	}
	return ids[1][1], nil
}

// WikipediaLink builds a direct article link for the topic as queried.
// Spaces become underscores; characters outside letters, digits, underscore,
// and hyphen are dropped. Wikipedia article URLs are case-sensitive, so the
// original capitalization is preserved.
func WikipediaLink(topic string) model.Link {
	slug := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	var sb strings.Builder
	for _, r := range slug {
		if r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return model.Link{
		Title: topic + " - Wikipedia",
		URL:   "https://en.wikipedia.org/wiki/" + sb.String(),
	}
}

// FilterWikipedia keeps only wikipedia.org links, capped at one entry.
func FilterWikipedia(links []model.Link) []model.Link {
	for _, l := range links {
		if strings.Contains(l.URL, "wikipedia.org") {
			return []model.Link{l}
		}
	}
	return nil
}
