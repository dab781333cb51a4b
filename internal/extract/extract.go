// Package extract turns structured and markup inputs into the plain text
// segments the tokenizer consumes.
package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// HTMLOptions controls HTML extraction.
type HTMLOptions struct {
	Selector   string   // optional CSS selector; overrides IncludeAll
	IncludeAll bool     // convert the whole page instead of the readable article
	BaseURL    *url.URL // optional page URL for readability
}

// HTMLText extracts readable text from HTML.
//
// With a selector, the text of every matching element is returned in document
// order. With IncludeAll, the whole page is converted. Otherwise go-readability
// picks the main article content. Markdown is used as the intermediate form
// so headings and list items stay separated.
func HTMLText(content io.Reader, opts HTMLOptions) (string, error) {
	if opts.Selector != "" {
		return selectedText(content, opts.Selector)
	}
	if opts.IncludeAll {
		return allText(content)
	}
	return mainContent(content, opts.BaseURL)
}

// mainContent uses go-readability to extract the main article content
func mainContent(content io.Reader, baseURL *url.URL) (string, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(content, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}

	text, err := toMarkdown(article.Content)
	if err != nil {
		return "", err
	}
	// readability drops the title from the article body
	if title := strings.TrimSpace(article.Title); title != "" {
		text = title + "\n\n" + text
	}
	return text, nil
}

// selectedText collects the text of elements matching a CSS selector
func selectedText(content io.Reader, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("no elements found matching selector: %s", selector)
	}

	var parts []string
	selection.Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n"), nil
}

// allText converts the entire page without filtering
func allText(content io.Reader) (string, error) {
	htmlBytes, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML content: %w", err)
	}
	return toMarkdown(string(htmlBytes))
}

// toMarkdown converts HTML to Markdown, dropping scripts, styles and images.
func toMarkdown(htmlString string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Remove("script", "style", "noscript", "img")

	markdown, err := converter.ConvertString(htmlString)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	cleaned := strings.TrimSpace(markdown)
	cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	return cleaned, nil
}
