// Package extract turns a web page into plain study text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/learnable-ai/companion/internal/logger"
	"go.uber.org/zap"
)

// ErrNoContent is returned when a page has no readable article.
var ErrNoContent = errors.New("no readable content")

var youtubePattern = regexp.MustCompile(
	`^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/(watch\?v=|embed/|v/|.+\?v=)?([^&=%\?]{11})`)

// IsYouTubeURL reports whether raw points at a YouTube video.
func IsYouTubeURL(raw string) bool {
	return youtubePattern.MatchString(strings.TrimSpace(raw))
}

const maxPageBytes = 10 << 20

// Fetcher downloads pages and extracts their main article.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher. A nil client gets a 30 second timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Text fetches rawURL and returns the article body as whitespace-collapsed text.
func (f *Fetcher) Text(ctx context.Context, rawURL string) (string, error) {
	const funcName = "Fetcher.Text"

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid url %q", rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", parsed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch %s, status code: %d", parsed, resp.StatusCode)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(io.LimitReader(resp.Body, maxPageBytes), parsed)
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", fmt.Errorf("failed to parse article html: %w", err)
	}
	doc.Find("script,style,noscript").Remove()

	var blocks []string
	doc.Find("h1,h2,h3,h4,p,li,pre,blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("li,blockquote").Length() > 0 {
			return
		}
		if t := collapse(s.Text()); t != "" {
			blocks = append(blocks, t)
		}
	})
	text := strings.Join(blocks, "\n")
	if text == "" {
		text = collapse(doc.Text())
	}
	if title := collapse(article.Title); title != "" && !strings.HasPrefix(text, title) {
		text = strings.TrimSpace(title + "\n" + text)
	}
	if text == "" {
		return "", fmt.Errorf("%s: %w", parsed, ErrNoContent)
	}

	logger.Debug("article extracted",
		zap.String("function", funcName),
		zap.String("url", parsed.String()),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
