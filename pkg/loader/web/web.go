package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/sync/singleflight"
)

// Article is the readable content extracted from a web page.
type Article struct {
	Title string
	Text  string
}

// WebLoader fetches article URLs and extracts their readable text.
// Results are cached and concurrent fetches of the same URL are
// collapsed into one request.
type WebLoader struct {
	client *http.Client

	cache   map[string]Article
	cacheMu sync.RWMutex
	group   singleflight.Group
}

func NewWebLoader() *WebLoader {
	return &WebLoader{
		client: http.DefaultClient,
		cache:  make(map[string]Article),
	}
}

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// FetchArticle downloads the page at articleURL and returns its title
// and main text. HTML pages go through readability; other content types
// are returned as-is with an empty title.
func (l *WebLoader) FetchArticle(ctx context.Context, articleURL string) (Article, error) {
	l.cacheMu.RLock()
	if cached, ok := l.cache[articleURL]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(articleURL, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[articleURL]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
		if err != nil {
			return Article{}, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := l.client.Do(req)
		if err != nil {
			return Article{}, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return Article{}, fmt.Errorf("failed to fetch url: status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Article{}, err
		}

		article := Article{}
		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/html") {
			pageURL, err := url.Parse(articleURL)
			if err != nil {
				return Article{}, fmt.Errorf("failed to parse url: %w", err)
			}
			parsed, err := readability.FromReader(bytes.NewReader(body), pageURL)
			if err != nil {
				return Article{}, fmt.Errorf("failed to parse html: %w", err)
			}
			var builder strings.Builder
			if err := parsed.RenderText(&builder); err != nil {
				return Article{}, fmt.Errorf("failed to render article text: %w", err)
			}
			article.Text = builder.String()
			article.Title = pageTitle(body)
		} else {
			article.Text = string(body)
		}

		l.cacheMu.Lock()
		l.cache[articleURL] = article
		l.cacheMu.Unlock()

		return article, nil
	})
	if err != nil {
		return Article{}, err
	}

	return result.(Article), nil
}

func pageTitle(body []byte) string {
	match := titleRe.FindSubmatch(body)
	if match == nil {
		return ""
	}
	title := string(match[1])
	title = strings.ReplaceAll(title, "\n", " ")
	return strings.TrimSpace(title)
}
