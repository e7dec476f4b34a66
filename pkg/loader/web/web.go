package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/meridianlabs/brandgraph/pkg/loader"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// WebLoader loads content from web URLs and extracts readable text.
// For HTML pages, it uses readability to extract the main content and
// remembers the page title so sources can carry a display name.
type WebLoader struct {
	fallback loader.FileLoader

	cache   map[string][]byte
	titles  map[string]string
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewWebLoader creates a new web loader without a fallback loader.
func NewWebLoader() *WebLoader {
	return &WebLoader{
		cache:  make(map[string][]byte),
		titles: make(map[string]string),
	}
}

// NewWebLoaderWithLoader creates a web loader with a fallback for non-HTML content.
func NewWebLoaderWithLoader(loader loader.FileLoader) *WebLoader {
	return &WebLoader{
		fallback: loader,
		cache:    make(map[string][]byte),
		titles:   make(map[string]string),
	}
}

// GetFileText fetches a URL and extracts readable text content.
// For HTML pages, it uses readability to extract the main article content.
func (l *WebLoader) GetFileText(ctx context.Context, file loader.SourceFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/html") {
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read response body: %w", err)
			}

			pageURL, err := url.Parse(file.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to parse url: %w", err)
			}

			title := extractTitle(body)

			article, err := readability.FromReader(bytes.NewReader(body), pageURL)
			if err != nil {
				return nil, fmt.Errorf("failed to parse html: %w", err)
			}
			var builder strings.Builder
			if err := article.RenderText(&builder); err != nil {
				return nil, fmt.Errorf("failed to render article text: %w", err)
			}

			result := []byte(builder.String())

			l.cacheMu.Lock()
			l.cache[key] = result
			if title != "" {
				l.titles[key] = title
			}
			l.cacheMu.Unlock()

			return result, nil
		}

		if l.fallback != nil {
			return l.fallback.GetFileText(ctx, file)
		}

		result, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = result
		l.cacheMu.Unlock()

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// Title returns the page title captured while loading the given source,
// or an empty string when the source has not been loaded or had no title.
func (l *WebLoader) Title(file loader.SourceFile) string {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()
	return l.titles[loader.CacheKey(file)]
}

// extractTitle walks the HTML token stream and returns the text of the
// first <title> element.
func extractTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" {
				return ""
			}
		}
	}
}
