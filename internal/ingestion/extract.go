package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRun    = regexp.MustCompile(`[ \t]+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	imageSyntax = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkSyntax  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// ExtractJobText removes page noise, selects the description container and converts it to
// markdown-style text. If conversion fails the container's plain text is used instead.
func ExtractJobText(html string, platform Platform) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(strings.Join(noiseSelectors(platform), ", ")).Remove()

	var content *goquery.Selection
	for _, selector := range contentSelectors(platform) {
		if sel := doc.Find(selector); sel.Length() > 0 && strings.TrimSpace(sel.First().Text()) != "" {
			content = sel.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	fragment, err := goquery.OuterHtml(content)
	if err == nil {
		if md, convErr := htmltomarkdown.ConvertString(fragment); convErr == nil && strings.TrimSpace(md) != "" {
			return CleanText(stripMarkdownLinks(md)), nil
		}
	}
	return CleanText(content.Text()), nil
}

// stripMarkdownLinks keeps link text and drops images, which carry nothing for analysis
func stripMarkdownLinks(md string) string {
	md = imageSyntax.ReplaceAllString(md, "")
	return linkSyntax.ReplaceAllString(md, "$1")
}

// CleanText normalizes line endings and whitespace while keeping headings and list markers
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		indent := ""
		if isListItem(trimmed) {
			indent = leadingIndent(line)
		}
		lines[i] = indent + spaceRun.ReplaceAllString(trimmed, " ")
	}

	result := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func isListItem(line string) bool {
	for _, marker := range []string{"- ", "* ", "• ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}

func leadingIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
