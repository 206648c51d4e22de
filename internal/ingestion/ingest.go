package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// MinContentLength is the extracted length below which a page is assumed to be rendered by scripts
const MinContentLength = 500

// Document is an extracted job posting
type Document struct {
	URL         string   `json:"url,omitempty"`
	Platform    Platform `json:"platform,omitempty"`
	Text        string   `json:"text"`
	UsedBrowser bool     `json:"usedBrowser"`
}

// FetchJobDescription downloads a posting and extracts its description text.
// With opts.UseBrowser set, a page whose static HTML yields too little text is rendered
// in a headless browser; if that fails the static text is kept.
func FetchJobDescription(ctx context.Context, pageURL string, opts Options) (*Document, error) {
	opts = opts.withDefaults()
	log := opts.Logger.With(slog.String("url", pageURL))

	platform := DetectPlatform(pageURL)
	html, err := fetchHTML(ctx, pageURL, opts)
	if err != nil {
		return nil, err
	}

	text, err := ExtractJobText(html, platform)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "content extraction failed", Cause: err}
	}
	log.Debug("job page extracted", slog.String("platform", string(platform)), slog.Int("chars", utf8.RuneCountInString(text)))

	doc := &Document{URL: pageURL, Platform: platform, Text: text}
	if opts.UseBrowser && utf8.RuneCountInString(text) < MinContentLength {
		log.Info("static page too short, rendering in browser", slog.Int("chars", utf8.RuneCountInString(text)))
		rendered, err := opts.Render(ctx, pageURL)
		if err != nil {
			log.Warn("browser rendering failed, keeping static text", slog.Any("error", err))
		} else if browserText, err := ExtractJobText(rendered, platform); err == nil && len(browserText) > len(text) {
			doc.Text = browserText
			doc.UsedBrowser = true
		}
	}

	if strings.TrimSpace(doc.Text) == "" {
		return nil, &Error{URL: pageURL, Message: "no job description text found"}
	}
	return doc, nil
}

// ReadJobDescription reads a job description from a local text or markdown file
func ReadJobDescription(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job description %s: %w", path, err)
	}
	text := CleanText(string(content))
	if text == "" {
		return nil, fmt.Errorf("job description %s is empty", path)
	}
	return &Document{Text: text}, nil
}
