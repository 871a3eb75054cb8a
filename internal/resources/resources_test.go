package resources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aitutor/internal/model"
)

func TestWikipediaLink(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		wantURL string
	}{
		{"simple", "Machine Learning", "https://en.wikipedia.org/wiki/Machine_Learning"},
		{"punctuation stripped", "What is AI?", "https://en.wikipedia.org/wiki/What_is_AI"},
		{"hyphen kept", "t-sne", "https://en.wikipedia.org/wiki/t-sne"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WikipediaLink(tt.topic)
			if got.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", got.URL, tt.wantURL)
			}
			if !strings.HasSuffix(got.Title, " - Wikipedia") {
				t.Errorf("title = %q", got.Title)
			}
		})
	}
}

func TestFilterWikipedia(t *testing.T) {
	links := []model.Link{
		{Title: "blog", URL: "https://example.com/ml"},
		{Title: "wiki", URL: "https://en.wikipedia.org/wiki/ML"},
		{Title: "wiki2", URL: "https://en.wikipedia.org/wiki/AI"},
	}
	got := FilterWikipedia(links)
	if len(got) != 1 || got[0].Title != "wiki" {
		t.Errorf("FilterWikipedia() = %v, want single wikipedia link", got)
	}
	if got := FilterWikipedia(links[:1]); got != nil {
		t.Errorf("expected nil for no wikipedia links, got %v", got)
	}
}

func TestYouTubeLink(t *testing.T) {
	t.Run("picks second video", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"videoId":"AAAAAAAAAAA"} {"videoId":"BBBBBBBBBBB"} {"videoId":"CCCCCCCCCCC"}`))
		}))
		defer srv.Close()

		f := NewFinder()
		id, err := f.secondVideoID(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("secondVideoID() error = %v", err)
		}
		if id != "BBBBBBBBBBB" {
			t.Errorf("video id = %q, want second result", id)
		}
	})

	t.Run("one video falls back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"videoId":"AAAAAAAAAAA"}`))
		}))
		defer srv.Close()

		f := NewFinder()
		if _, err := f.secondVideoID(context.Background(), srv.URL); err == nil {
			t.Fatal("expected error when fewer than two videos found")
		}
	})

	t.Run("unreachable search falls back to search URL", func(t *testing.T) {
		f := &Finder{client: &http.Client{Transport: failingTransport{}}}
		link := f.YouTubeLink(context.Background(), "deep learning", "")
		if !strings.Contains(link.URL, "search_query=deep+learning+tutorial") {
			t.Errorf("fallback URL = %q, want search URL", link.URL)
		}
		if link.Title != "deep learning - Complete Tutorial" {
			t.Errorf("fallback title = %q", link.Title)
		}
	})
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, http.ErrHandlerTimeout
}
